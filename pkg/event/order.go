package event

import "time"

const (
	OrderItemsTopic         = "orders.items"
	EventOrderItemCreated   = "order.item.created"
	EventOrderItemCancelled = "order.item.cancelled"

	OrderLifecycleTopic   = "orders.lifecycle"
	EventOrderSent        = "order.sent"
	EventOrderReady       = "order.ready"
	EventOrderClosed      = "order.closed"
	EventOrderPrioritized = "order.prioritized"
)

// OrderItemEvent represents a line-item event published to NATS.
// The KDS consumes these to keep its ticket projection current between polls.
type OrderItemEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	ItemID     string    `json:"item_id"`
	Seq        int64     `json:"seq"`
	ProductID  string    `json:"product_id"`
	Notes      string    `json:"notes,omitempty"`
	Station    string    `json:"station,omitempty"`

	// Denormalized data for KDS display
	ProductName string `json:"product_name,omitempty"`
	TableName   string `json:"table_name,omitempty"`
	OrderFolio  string `json:"order_folio,omitempty"`

	// Cancellation audit fields, set for order.item.cancelled
	Reason      string `json:"reason,omitempty"`
	CancelledBy string `json:"cancelled_by,omitempty"`
}

// OrderLifecycleEvent signals a macro-state transition of an order. The KDS
// uses order.sent to pick tickets up and order.closed to drop them; the
// back-office alert feed consumes order.ready.
type OrderLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	OrderFolio string    `json:"order_folio"`
	Status     string    `json:"status"`
	TableName  string    `json:"table_name,omitempty"`
}
