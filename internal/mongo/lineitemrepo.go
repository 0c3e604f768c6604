package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Gabriel44svg/Dopple-bar/internal/order"
)

type LineItemRepo struct {
	collection *mongo.Collection
	orders     *mongo.Collection
}

func NewLineItemRepo(db *mongo.Database) *LineItemRepo {
	return &LineItemRepo{
		collection: db.Collection("order_items"),
		orders:     db.Collection("orders"),
	}
}

// Create assigns the item the next seq from the parent order's counter and
// persists it. The counter bump is a single atomic FindOneAndUpdate, so two
// terminals appending concurrently can never get the same seq.
func (r *LineItemRepo) Create(ctx context.Context, li *order.LineItem) error {
	if li == nil {
		return fmt.Errorf("line item is nil")
	}

	seq, err := r.nextSeq(ctx, li.OrderID)
	if err != nil {
		return err
	}
	li.Seq = seq

	if _, err := r.collection.InsertOne(ctx, li); err != nil {
		return fmt.Errorf("cannot create line item: %w", err)
	}

	return nil
}

func (r *LineItemRepo) nextSeq(ctx context.Context, orderID uuid.UUID) (int64, error) {
	filter := bson.M{"_id": orderID}
	update := bson.M{"$inc": bson.M{"next_seq": int64(1)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc struct {
		NextSeq int64 `bson:"next_seq"`
	}
	if err := r.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, fmt.Errorf("order not found")
		}
		return 0, fmt.Errorf("cannot allocate item seq: %w", err)
	}

	return doc.NextSeq, nil
}

func (r *LineItemRepo) Get(ctx context.Context, id uuid.UUID) (*order.LineItem, error) {
	var li order.LineItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&li)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get line item: %w", err)
	}
	return &li, nil
}

func (r *LineItemRepo) Update(ctx context.Context, li *order.LineItem) error {
	if li == nil {
		return fmt.Errorf("line item is nil")
	}

	filter := bson.M{"_id": li.ID}
	update := bson.M{"$set": li}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update line item: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("line item not found")
	}

	return nil
}

func (r *LineItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*order.LineItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list line items by order: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*order.LineItem
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode line items: %w", err)
	}

	return result, nil
}
