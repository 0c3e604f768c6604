package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Gabriel44svg/Dopple-bar/internal/order"
)

type PromotionRepo struct {
	collection *mongo.Collection
}

func NewPromotionRepo(db *mongo.Database) *PromotionRepo {
	return &PromotionRepo{
		collection: db.Collection("promotions"),
	}
}

func (r *PromotionRepo) Create(ctx context.Context, p *order.Promotion) error {
	if p == nil {
		return fmt.Errorf("promotion is nil")
	}

	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("cannot create promotion: %w", err)
	}

	return nil
}

func (r *PromotionRepo) List(ctx context.Context) ([]*order.Promotion, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list promotions: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*order.Promotion
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode promotions: %w", err)
	}

	return result, nil
}
