package repository

import (
	"context"
	"fmt"

	"github.com/akhil189709/dermaBackend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewMongoProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{
		collection: db.Collection("products"),
	}
}

// ReplaceAll wipes the catalog and inserts the given generation. Callers get
// delete-all-then-insert-all semantics; the two steps are not wrapped in a
// transaction, so a concurrent reader may observe the gap between them.
func (m *mongoProductRepository) ReplaceAll(ctx context.Context, products []domain.Product) error {
	if _, err := m.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}

	docs := make([]interface{}, len(products))
	for i := range products {
		docs[i] = products[i]
	}

	if _, err := m.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert products: %w", err)
	}

	return nil
}

func (m *mongoProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	cursor, err := m.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

// FindByIDs is the single batched lookup behind cart enrichment; one $in
// query instead of a lookup per line item.
func (m *mongoProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}
	cursor, err := m.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query products by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var products []domain.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}
