package service

import (
	"context"
	"time"

	"github.com/akhil189709/dermaBackend/internal/domain"
	"github.com/akhil189709/dermaBackend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

// Seed wipes the catalog and inserts a fresh generation of the fixed demo
// products. Destructive; every call assigns new identifiers, so previously
// stored cart references dangle afterwards.
func (s *CatalogService) Seed(ctx context.Context) error {
	return s.products.ReplaceAll(ctx, seedProducts(time.Now()))
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

func seedProducts(now time.Time) []domain.Product {
	facewashPrice := 2499.99
	creamPrice := 799.50

	return []domain.Product{
		{
			ID:        primitive.NewObjectID(),
			Name:      "facewash",
			Price:     &facewashPrice,
			Images:    []string{"../images/facewash1.jpg"},
			CreatedAt: now,
		},
		{
			ID:        primitive.NewObjectID(),
			Name:      "anti-aging-cream",
			Price:     &creamPrice,
			Images:    []string{"../images/Anti-aging1.jpg"},
			CreatedAt: now,
		},
		{
			// Not yet priced, the storefront shows it as coming soon.
			ID:        primitive.NewObjectID(),
			Name:      "Classic Wrist Watch",
			Images:    []string{"../images/comingSoon.jpg"},
			CreatedAt: now,
		},
	}
}
