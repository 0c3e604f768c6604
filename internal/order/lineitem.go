package order

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// LineItem is a single unit of a product on an order. Repeated additions of
// the same product create new rows rather than bumping a quantity; grouping
// for display and pricing happens at read time.
type LineItem struct {
	ID      uuid.UUID `json:"id" bson:"_id"`
	OrderID uuid.UUID `json:"order_id" bson:"order_id"`

	// Seq is assigned by the store from the parent order's counter. It is
	// unique and strictly increasing within the order, so the highest seq in
	// a group is always the most recently appended unit.
	Seq int64 `json:"seq" bson:"seq"`

	ProductID   uuid.UUID `json:"product_id" bson:"product_id"`
	ProductName string    `json:"product_name" bson:"product_name"`
	UnitPrice   float64   `json:"unit_price" bson:"unit_price"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty"`
	Station     string    `json:"station" bson:"station"`

	// Prepared is the station-side binary status, toggled from the KDS.
	Prepared bool `json:"prepared" bson:"prepared"`

	Cancelled    bool       `json:"cancelled" bson:"cancelled"`
	CancelReason string     `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	CancelledBy  string     `json:"cancelled_by,omitempty" bson:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func NewLineItem(orderID, productID uuid.UUID) *LineItem {
	return &LineItem{
		ID:        aqm.GenerateNewID(),
		OrderID:   orderID,
		ProductID: productID,
	}
}

func (li *LineItem) GetID() uuid.UUID {
	return li.ID
}

func (li *LineItem) SetID(id uuid.UUID) {
	li.ID = id
}

func (li *LineItem) ResourceType() string {
	return "order-item"
}

func (li *LineItem) EnsureID() {
	if li.ID == uuid.Nil {
		li.ID = aqm.GenerateNewID()
	}
}

func (li *LineItem) BeforeCreate() {
	li.EnsureID()
	li.CreatedAt = time.Now()
	li.UpdatedAt = time.Now()
}

func (li *LineItem) BeforeUpdate() {
	li.UpdatedAt = time.Now()
}

// Active reports whether the item still counts toward display, pricing and
// kitchen tickets.
func (li *LineItem) Active() bool {
	return !li.Cancelled
}

// Cancel records the audited cancellation. Cancelled rows are kept for the
// audit trail; they just stop counting.
func (li *LineItem) Cancel(reason, actor string) {
	now := time.Now()
	li.Cancelled = true
	li.CancelReason = reason
	li.CancelledBy = actor
	li.CancelledAt = &now
	li.UpdatedAt = now
}

// SetPrepared applies the station-reported preparation status. Applying the
// same state twice is a no-op, so replayed toggle events converge.
func (li *LineItem) SetPrepared(prepared bool) {
	if li.Prepared == prepared {
		return
	}
	li.Prepared = prepared
	li.UpdatedAt = time.Now()
}
