package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const (
	StatusOpen   = "open"
	StatusSent   = "sent_to_kitchen"
	StatusReady  = "ready"
	StatusClosed = "closed"
)

// TakeawayTableName is shown when an order has no table reference.
const TakeawayTableName = "Takeaway"

var (
	ErrEmptyOrder  = errors.New("order has no active items")
	ErrOrderClosed = errors.New("order is closed")
	ErrNotSent     = errors.New("order has not been sent to kitchen")
	ErrOrderReady  = errors.New("order is already ready")
)

// Order is the append-only aggregate one terminal composes and the kitchen
// consumes. Macro-state moves open -> sent_to_kitchen -> ready -> closed and
// never backwards; the closing snapshot (totals, discounts) is immutable.
type Order struct {
	ID         uuid.UUID  `json:"id" bson:"_id"`
	Folio      string     `json:"folio" bson:"folio"`
	TableID    *uuid.UUID `json:"table_id,omitempty" bson:"table_id,omitempty"`
	TableName  string     `json:"table_name" bson:"table_name"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	Status     string     `json:"status" bson:"status"`
	Priority   bool       `json:"priority" bson:"priority"`

	// NextSeq is the per-order line item counter. The store increments it
	// atomically on every append; values are never reused, so seq order is
	// append order.
	NextSeq int64 `json:"-" bson:"next_seq"`

	// Snapshot taken when the order closes.
	Subtotal       float64           `json:"subtotal,omitempty" bson:"subtotal,omitempty"`
	PromoDiscount  float64           `json:"promo_discount,omitempty" bson:"promo_discount,omitempty"`
	CouponDiscount float64           `json:"coupon_discount,omitempty" bson:"coupon_discount,omitempty"`
	Total          float64           `json:"total,omitempty" bson:"total,omitempty"`
	Discounts      []AppliedDiscount `json:"discounts,omitempty" bson:"discounts,omitempty"`
	PaymentMethod  string            `json:"payment_method,omitempty" bson:"payment_method,omitempty"`
	ClosedAt       *time.Time        `json:"closed_at,omitempty" bson:"closed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy string    `json:"updated_by" bson:"updated_by"`
}

func NewOrder() *Order {
	return &Order{
		ID:        aqm.GenerateNewID(),
		Folio:     newFolio(time.Now()),
		TableName: TakeawayTableName,
		Status:    StatusOpen,
	}
}

func newFolio(t time.Time) string {
	return fmt.Sprintf("ORD-%s", t.Format("20060102150405"))
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = aqm.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = time.Now()
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

// Takeaway reports whether the order has no table reference.
func (o *Order) Takeaway() bool {
	return o.TableID == nil
}

// Open reports whether the order still accepts line items. Appending after
// send is allowed; the kitchen picks up late items on its next refresh.
func (o *Order) AcceptsItems() bool {
	return o.Status == StatusOpen || o.Status == StatusSent
}

// Send moves the order to sent_to_kitchen. Re-sending an already-sent order
// is a no-op so retries never duplicate kitchen tickets. The caller is
// responsible for checking the order has at least one active item.
func (o *Order) Send() error {
	switch o.Status {
	case StatusOpen:
		o.Status = StatusSent
		o.UpdatedAt = time.Now()
		return nil
	case StatusSent:
		return nil
	case StatusReady:
		return ErrOrderReady
	case StatusClosed:
		return ErrOrderClosed
	default:
		return fmt.Errorf("cannot send order in status %q", o.Status)
	}
}

// MarkReady moves the order from sent_to_kitchen to ready. The transition is
// driven by the station marking the whole ticket complete, independently of
// per-item preparation toggles.
func (o *Order) MarkReady() error {
	switch o.Status {
	case StatusSent:
		o.Status = StatusReady
		o.UpdatedAt = time.Now()
		return nil
	case StatusReady:
		return nil
	case StatusClosed:
		return ErrOrderClosed
	default:
		return ErrNotSent
	}
}

// Close settles the order with the given payment snapshot. Only orders in
// sent_to_kitchen or ready can close; an order never sent fails with
// ErrNotSent rather than silently succeeding.
func (o *Order) Close(method string, quote Quote) error {
	switch o.Status {
	case StatusSent, StatusReady:
	case StatusClosed:
		return ErrOrderClosed
	default:
		return ErrNotSent
	}

	now := time.Now()
	o.Status = StatusClosed
	o.PaymentMethod = method
	o.Subtotal = quote.Subtotal
	o.PromoDiscount = quote.PromoDiscount
	o.CouponDiscount = quote.CouponDiscount
	o.Total = quote.Total
	o.Discounts = quote.Applied
	o.ClosedAt = &now
	o.UpdatedAt = now
	return nil
}

// Prioritize flags the order so station displays sort it first.
func (o *Order) Prioritize() {
	o.Priority = true
	o.UpdatedAt = time.Now()
}
