package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Gabriel44svg/Dopple-bar/internal/order"
)

type CouponRepo struct {
	collection *mongo.Collection
}

func NewCouponRepo(db *mongo.Database) *CouponRepo {
	return &CouponRepo{
		collection: db.Collection("coupons"),
	}
}

func (r *CouponRepo) Create(ctx context.Context, c *order.Coupon) error {
	if c == nil {
		return fmt.Errorf("coupon is nil")
	}

	if _, err := r.collection.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("cannot create coupon: %w", err)
	}

	return nil
}

func (r *CouponRepo) Get(ctx context.Context, code string) (*order.Coupon, error) {
	var c order.Coupon
	err := r.collection.FindOne(ctx, bson.M{"_id": code}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get coupon: %w", err)
	}
	return &c, nil
}
