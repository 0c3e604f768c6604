package order

import (
	"errors"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

var (
	ErrEmptyGroup     = errors.New("group has no active items")
	ErrReasonRequired = errors.New("cancellation reason is required")
	ErrUnknownReason  = errors.New("cancellation reason is not in the catalog")
	ErrNotAllowed     = errors.New("role is not allowed to cancel items")
)

// CancellationReason is one entry of the managed catalog. Free-text reasons
// are rejected; every cancellation must reference a catalog entry by label.
type CancellationReason struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Label     string    `json:"label" bson:"label"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func NewCancellationReason(label string) *CancellationReason {
	return &CancellationReason{
		ID:        aqm.GenerateNewID(),
		Label:     label,
		CreatedAt: time.Now(),
	}
}

func (cr *CancellationReason) GetID() uuid.UUID {
	return cr.ID
}

func (cr *CancellationReason) SetID(id uuid.UUID) {
	cr.ID = id
}

func (cr *CancellationReason) ResourceType() string {
	return "cancellation-reason"
}

// DefaultReasons seeds the catalog on first boot.
func DefaultReasons() []*CancellationReason {
	labels := []string{
		"Customer changed their mind",
		"Wrong item rung up",
		"Kitchen out of stock",
		"Quality issue",
	}
	reasons := make([]*CancellationReason, 0, len(labels))
	for _, l := range labels {
		reasons = append(reasons, NewCancellationReason(l))
	}
	return reasons
}

// ValidateReason checks the reason label against the managed catalog.
func ValidateReason(label string, catalog []*CancellationReason) error {
	if label == "" {
		return ErrReasonRequired
	}
	for _, r := range catalog {
		if r.Label == label {
			return nil
		}
	}
	return ErrUnknownReason
}
