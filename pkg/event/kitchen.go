package event

import "time"

const (
	KitchenTicketsTopic         = "kitchen.tickets"
	EventKitchenItemToggled     = "kitchen.item.toggled"
	EventKitchenTicketCompleted = "kitchen.ticket.completed"
)

// KitchenItemToggledEvent reports a station flipping the binary preparation
// status of a single line item. The POS applies it to the authoritative item.
type KitchenItemToggledEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	ItemID     string    `json:"item_id"`
	Station    string    `json:"station"`
	Prepared   bool      `json:"prepared"`
}

// KitchenTicketCompletedEvent reports a station marking a whole ticket done,
// which drives the order-level sent_to_kitchen -> ready transition.
type KitchenTicketCompletedEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	Station    string    `json:"station"`
}
