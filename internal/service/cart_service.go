package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/akhil189709/dermaBackend/internal/cache"
	"github.com/akhil189709/dermaBackend/internal/domain"
	"github.com/akhil189709/dermaBackend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"
)

// Sentinel display values for a line item whose product id no longer
// resolves against the catalog. A dangling reference is a data-quality
// condition, never a request failure.
const unknownProductName = "Unknown Product"

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	cache    cache.CartCache
	sfg      singleflight.Group // Prevents cache stampede
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, cartCache cache.CartCache) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		cache:    cartCache,
	}
}

// GetCart returns the enriched projection of the user's cart, lazily
// creating and persisting an empty cart on first access. Only the bare cart
// is cached; the catalog join runs on every read.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.EnrichedCart, error) {
	cart, err := s.fetchCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.enrich(ctx, cart.Items)
	if err != nil {
		return nil, err
	}

	return &domain.EnrichedCart{
		UserID: cart.UserID,
		Items:  items,
	}, nil
}

// UpsertItem overwrites the quantity of an existing line item or appends a
// new one, then returns the persisted bare cart.
func (s *CartService) UpsertItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	item := domain.CartItem{
		ProductID: productID,
		Quantity:  quantity,
	}

	if err := s.carts.UpsertItem(ctx, userID, item); err != nil {
		log.Printf("repo upsert item error: %v", err)
		return nil, err
	}

	invalidateCache(s, userID)

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem drops every line item matching the product id. A missing cart
// is a no-op and yields a nil cart, not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	err := s.carts.RemoveItem(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, nil
		}
		log.Printf("repo remove item error: %v", err)
		return nil, err
	}

	invalidateCache(s, userID)

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) fetchCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Singleflight collapses concurrent reads for the same user so a cold
	// cache does not fan N identical lookups out to the store.
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // degrade to the store
		}

		cart, errGet := s.carts.GetCart(ctx, userID)
		if errGet != nil {
			if !errors.Is(errGet, repository.ErrCartNotFound) {
				return nil, errGet
			}
			// First access for this user: the one write the read path
			// ever performs.
			cart, errGet = s.carts.CreateEmpty(ctx, userID)
			if errGet != nil {
				return nil, errGet
			}
		}

		// Fill the cache before returning; doing it async could land after
		// a later write's invalidation and pin a stale cart.
		if errSet := s.cache.Set(ctx, userID, cart); errSet != nil {
			log.Printf("cache set error: %v", errSet)
		}

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// enrich joins line items against the catalog with a single batched lookup.
// Items whose product id does not decode or does not resolve fall back to
// the sentinel display values.
func (s *CartService) enrich(ctx context.Context, items []domain.CartItem) ([]domain.EnrichedItem, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true

		id, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			continue // undecodable reference, enriches to the sentinel
		}
		ids = append(ids, id)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID.Hex()] = p
	}

	enriched := make([]domain.EnrichedItem, len(items))
	for i, item := range items {
		enriched[i] = domain.EnrichedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Name:      unknownProductName,
			Price:     0,
			Images:    []string{},
		}

		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}

		enriched[i].Name = p.Name
		if p.Price != nil {
			enriched[i].Price = *p.Price
		}
		if p.Images != nil {
			enriched[i].Images = p.Images
		}
	}

	return enriched, nil
}

func invalidateCache(s *CartService, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
