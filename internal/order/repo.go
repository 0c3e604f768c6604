package order

import (
	"context"

	"github.com/google/uuid"
)

type OrderRepo interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	ListOpen(ctx context.Context) ([]*Order, error)
}

type LineItemRepo interface {
	// Create persists the item after assigning it the next seq from the
	// parent order's counter.
	Create(ctx context.Context, li *LineItem) error
	Get(ctx context.Context, id uuid.UUID) (*LineItem, error)
	Update(ctx context.Context, li *LineItem) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*LineItem, error)
}

type PromotionRepo interface {
	List(ctx context.Context) ([]*Promotion, error)
	Create(ctx context.Context, p *Promotion) error
}

type CouponRepo interface {
	// Get returns nil without error when the code does not exist.
	Get(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) error
}

type ReasonRepo interface {
	List(ctx context.Context) ([]*CancellationReason, error)
	Create(ctx context.Context, r *CancellationReason) error
	Count(ctx context.Context) (int64, error)
}

type PaymentRepo interface {
	Create(ctx context.Context, p *Payment) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)
}
