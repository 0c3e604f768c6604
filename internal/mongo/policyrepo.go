package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Gabriel44svg/Dopple-bar/internal/authz"
)

type PolicyRepo struct {
	collection *mongo.Collection
}

func NewPolicyRepo(db *mongo.Database) *PolicyRepo {
	return &PolicyRepo{
		collection: db.Collection("role_policies"),
	}
}

func (r *PolicyRepo) Get(ctx context.Context, role string) (*authz.Policy, error) {
	var p authz.Policy
	err := r.collection.FindOne(ctx, bson.M{"_id": role}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get role policy: %w", err)
	}
	return &p, nil
}

func (r *PolicyRepo) List(ctx context.Context) ([]*authz.Policy, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("cannot list role policies: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*authz.Policy
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode role policies: %w", err)
	}

	return result, nil
}

func (r *PolicyRepo) Save(ctx context.Context, p *authz.Policy) error {
	if p == nil {
		return fmt.Errorf("role policy is nil")
	}

	filter := bson.M{"_id": p.Role}
	update := bson.M{"$set": p}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("cannot save role policy: %w", err)
	}

	return nil
}

func (r *PolicyRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("cannot count role policies: %w", err)
	}
	return n, nil
}
