package order

import (
	"errors"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const PaymentMethodCash = "cash"

var ErrInsufficientCash = errors.New("cash received is less than the total")

// Change returns the change due for a cash payment, never negative.
func Change(total, cash float64) float64 {
	if cash <= total {
		return 0
	}
	return cash - total
}

// CanFinalize reports whether the received cash covers the total. Exact
// payment finalizes with zero change.
func CanFinalize(total, cash float64) bool {
	return cash >= total
}

// Payment is the settlement record written when an order closes.
type Payment struct {
	ID          uuid.UUID `json:"id" bson:"_id"`
	OrderID     uuid.UUID `json:"order_id" bson:"order_id"`
	Method      string    `json:"method" bson:"method"`
	Total       float64   `json:"total" bson:"total"`
	Received    float64   `json:"received" bson:"received"`
	Change      float64   `json:"change" bson:"change"`
	ProcessedBy string    `json:"processed_by" bson:"processed_by"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

func NewPayment(orderID uuid.UUID, total, received float64, processedBy string) *Payment {
	return &Payment{
		ID:          aqm.GenerateNewID(),
		OrderID:     orderID,
		Method:      PaymentMethodCash,
		Total:       total,
		Received:    received,
		Change:      Change(total, received),
		ProcessedBy: processedBy,
		CreatedAt:   time.Now(),
	}
}

func (p *Payment) GetID() uuid.UUID {
	return p.ID
}

func (p *Payment) SetID(id uuid.UUID) {
	p.ID = id
}

func (p *Payment) ResourceType() string {
	return "payment"
}
