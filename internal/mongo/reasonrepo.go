package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Gabriel44svg/Dopple-bar/internal/order"
)

type ReasonRepo struct {
	collection *mongo.Collection
}

func NewReasonRepo(db *mongo.Database) *ReasonRepo {
	return &ReasonRepo{
		collection: db.Collection("cancellation_reasons"),
	}
}

func (r *ReasonRepo) Create(ctx context.Context, reason *order.CancellationReason) error {
	if reason == nil {
		return fmt.Errorf("cancellation reason is nil")
	}

	if _, err := r.collection.InsertOne(ctx, reason); err != nil {
		return fmt.Errorf("cannot create cancellation reason: %w", err)
	}

	return nil
}

func (r *ReasonRepo) List(ctx context.Context) ([]*order.CancellationReason, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list cancellation reasons: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*order.CancellationReason
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode cancellation reasons: %w", err)
	}

	return result, nil
}

func (r *ReasonRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("cannot count cancellation reasons: %w", err)
	}
	return n, nil
}
