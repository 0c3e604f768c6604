package order

import (
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const (
	PromoTwoForOne   = "two_for_one"
	PromoPercentage  = "percentage"
	CouponFixed      = "fixed"
	CouponPercentage = "percentage"
)

// Promotion is a time-windowed automatic discount. Only two_for_one
// promotions change prices today; percentage promotions are catalog metadata
// the menu surfaces but the engine does not yet apply.
type Promotion struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Type      string    `json:"type" bson:"type"`
	Value     float64   `json:"value,omitempty" bson:"value,omitempty"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (p *Promotion) GetID() uuid.UUID {
	return p.ID
}

func (p *Promotion) SetID(id uuid.UUID) {
	p.ID = id
}

func (p *Promotion) ResourceType() string {
	return "promotion"
}

func (p *Promotion) EnsureID() {
	if p.ID == uuid.Nil {
		p.ID = aqm.GenerateNewID()
	}
}

// InWindow reports whether the promotion applies at the given instant.
func (p *Promotion) InWindow(now time.Time) bool {
	return p.Active && !now.Before(p.StartDate) && !now.After(p.EndDate)
}

// Coupon is a manually entered code. Fixed coupons subtract their value
// outright; percentage coupons subtract a share of the full subtotal before
// promotions, so coupon and promotion discounts stack independently.
type Coupon struct {
	Code      string     `json:"code" bson:"_id"`
	Type      string     `json:"type" bson:"type"`
	Value     float64    `json:"value" bson:"value"`
	Active    bool       `json:"active" bson:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

// Redeemable reports whether the coupon can still be applied.
func (c *Coupon) Redeemable(now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	return true
}

// AppliedDiscount is one line of the discount breakdown snapshotted on the
// closed order.
type AppliedDiscount struct {
	Label       string     `json:"label" bson:"label"`
	PromotionID *uuid.UUID `json:"promotion_id,omitempty" bson:"promotion_id,omitempty"`
	CouponCode  string     `json:"coupon_code,omitempty" bson:"coupon_code,omitempty"`
	Amount      float64    `json:"amount" bson:"amount"`
}

// Quote is the priced view of an order at one instant. It is recomputed from
// scratch on every read so cancellations and appends are always reflected.
type Quote struct {
	Subtotal       float64           `json:"subtotal"`
	PromoDiscount  float64           `json:"promo_discount"`
	CouponDiscount float64           `json:"coupon_discount"`
	Total          float64           `json:"total"`
	Applied        []AppliedDiscount `json:"applied"`
}

// Price computes the quote for the grouped lines. Two-for-one applies per
// group, floor(quantity/2) free units at the group's unit price. The coupon,
// if any, is applied on top of the same full subtotal. The final total is
// clamped at zero; discounts never produce a negative amount due.
func Price(groups []GroupedLine, promos []*Promotion, coupon *Coupon, now time.Time) Quote {
	var q Quote
	for _, g := range groups {
		q.Subtotal += float64(g.Quantity) * g.UnitPrice
	}

	for _, p := range promos {
		if p.Type != PromoTwoForOne || !p.InWindow(now) {
			continue
		}
		for _, g := range groups {
			free := g.Quantity / 2
			if free == 0 {
				continue
			}
			amount := float64(free) * g.UnitPrice
			q.PromoDiscount += amount
			id := p.ID
			q.Applied = append(q.Applied, AppliedDiscount{
				Label:       fmt.Sprintf("%s on %s (x%d)", p.Name, g.ProductName, free),
				PromotionID: &id,
				Amount:      amount,
			})
		}
		break
	}

	if coupon != nil && coupon.Redeemable(now) {
		var amount float64
		switch coupon.Type {
		case CouponFixed:
			amount = coupon.Value
		case CouponPercentage:
			amount = q.Subtotal * coupon.Value / 100
		}
		if amount > 0 {
			q.CouponDiscount = amount
			q.Applied = append(q.Applied, AppliedDiscount{
				Label:      fmt.Sprintf("Coupon %s", coupon.Code),
				CouponCode: coupon.Code,
				Amount:     amount,
			})
		}
	}

	q.Total = q.Subtotal - q.PromoDiscount - q.CouponDiscount
	if q.Total < 0 {
		q.Total = 0
	}
	return q
}
