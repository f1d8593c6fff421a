package repository

import (
	"context"

	"github.com/akhil189709/dermaBackend/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	CreateEmpty(ctx context.Context, userID string) (*domain.Cart, error)
	UpsertItem(ctx context.Context, userID string, item domain.CartItem) error
	RemoveItem(ctx context.Context, userID string, productID string) error
}

// ProductRepository covers the catalog: a destructive replace-all seed,
// a full listing, and the batched lookup the enrichment join depends on.
type ProductRepository interface {
	ReplaceAll(ctx context.Context, products []domain.Product) error
	List(ctx context.Context) ([]domain.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Product, error)
}
