package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akhil189709/dermaBackend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrCartNotFound = errors.New("cart not found")

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoCartRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// CreateEmpty lazily persists an empty cart for the user. The upsert with
// $setOnInsert makes two racing first-reads collapse to a single document,
// and a read against an existing cart modifies nothing.
func (m *mongoCartRepository) CreateEmpty(ctx context.Context, userID string) (*domain.Cart, error) {
	now := time.Now()

	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"items":      []domain.CartItem{},
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var cart domain.Cart
	if err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart); err != nil {
		return nil, fmt.Errorf("failed to create empty cart: %w", err)
	}

	return &cart, nil
}

// UpsertItem overwrites the quantity of an existing line item, or appends a
// new one at the tail so prior insertion order is preserved.
func (m *mongoCartRepository) UpsertItem(ctx context.Context, userID string, item domain.CartItem) error {
	now := time.Now()
	item.AddedAt = now

	filter := bson.M{"user_id": userID}

	var existing domain.Cart
	err := m.collection.FindOne(ctx, filter).Decode(&existing)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// No cart yet, create it with the single item.
			cart := &domain.Cart{
				UserID:    userID,
				Items:     []domain.CartItem{item},
				CreatedAt: now,
				UpdatedAt: now,
			}

			if _, err = m.collection.InsertOne(ctx, cart); err != nil {
				return fmt.Errorf("failed to create cart with item: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing cart: %w", err)
	}

	itemExists := false
	for _, existingItem := range existing.Items {
		if existingItem.ProductID == item.ProductID {
			itemExists = true
			break
		}
	}

	if itemExists {
		// Full overwrite of the quantity, not an increment.
		update := bson.M{
			"$set": bson.M{
				"items.$[elem].quantity": item.Quantity,
				"items.$[elem].added_at": now,
				"updated_at":             now,
			},
		}
		arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{
				bson.M{"elem.product_id": item.ProductID},
			},
		})

		if _, err = m.collection.UpdateOne(ctx, filter, update, arrayFilters); err != nil {
			return fmt.Errorf("failed to update existing item: %w", err)
		}
	} else {
		update := bson.M{
			"$push": bson.M{"items": item},
			"$set":  bson.M{"updated_at": now},
		}

		if _, err = m.collection.UpdateOne(ctx, filter, update); err != nil {
			return fmt.Errorf("failed to add new item: %w", err)
		}
	}

	return nil
}

// RemoveItem pulls every line item matching the product id. At most one
// should exist given the upsert invariant, but $pull removes all matches.
func (m *mongoCartRepository) RemoveItem(ctx context.Context, userID string, productID string) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{"product_id": productID},
		},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoCartRepository) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := m.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
