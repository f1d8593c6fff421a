package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akhil189709/dermaBackend/internal/cache"
	"github.com/akhil189709/dermaBackend/internal/domain"
	"github.com/akhil189709/dermaBackend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockCartRepository struct {
	m           sync.RWMutex
	cart        *domain.Cart
	err         error
	createCalls int
}

func (m *mockCartRepository) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, repository.ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockCartRepository) CreateEmpty(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.createCalls++
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		m.cart = &domain.Cart{
			UserID:    userID,
			Items:     []domain.CartItem{},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
	}
	return m.cart, nil
}

func (m *mockCartRepository) UpsertItem(_ context.Context, userID string, item domain.CartItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		m.cart = &domain.Cart{UserID: userID}
	}
	for i := range m.cart.Items {
		if m.cart.Items[i].ProductID == item.ProductID {
			m.cart.Items[i].Quantity = item.Quantity
			return nil
		}
	}
	m.cart.Items = append(m.cart.Items, item)
	return nil
}

func (m *mockCartRepository) RemoveItem(_ context.Context, _ string, productID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.cart == nil {
		return repository.ErrCartNotFound
	}
	kept := m.cart.Items[:0]
	for _, item := range m.cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	m.cart.Items = kept
	return nil
}

func (m *mockCartRepository) countCreates() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.createCalls
}

type mockProductRepository struct {
	products []domain.Product
	err      error
	lastIDs  []primitive.ObjectID
}

func (m *mockProductRepository) ReplaceAll(_ context.Context, products []domain.Product) error {
	if m.err != nil {
		return m.err
	}
	m.products = products
	return nil
}

func (m *mockProductRepository) List(context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockProductRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.lastIDs = ids
	var found []domain.Product
	for _, p := range m.products {
		for _, id := range ids {
			if p.ID == id {
				found = append(found, p)
			}
		}
	}
	return found, nil
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return m.err
}

func (m *mockCache) getCart() *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.cart
}

func priceOf(v float64) *float64 { return &v }

func TestGetCart_LazyCreatesOnce(t *testing.T) {
	mockRepo := &mockCartRepository{}
	mockC := &mockCache{}

	sut := NewCartService(mockRepo, &mockProductRepository{}, mockC)

	ret, err := sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", ret.UserID)
	assert.Empty(t, ret.Items)
	assert.Equal(t, 1, mockRepo.countCreates())

	// Second read finds the persisted cart and performs no creation.
	_, err = sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, mockRepo.countCreates())
}

func TestGetCart_CacheHitSkipsStore(t *testing.T) {
	cached := &domain.Cart{
		UserID: "123",
		Items:  []domain.CartItem{{ProductID: "abc", Quantity: 2}},
	}
	mockRepo := &mockCartRepository{err: assert.AnError} // store would fail if touched
	mockC := &mockCache{cart: cached}

	sut := NewCartService(mockRepo, &mockProductRepository{}, mockC)
	ret, err := sut.GetCart(context.Background(), "123")
	require.NoError(t, err)
	assert.Len(t, ret.Items, 1)
	assert.Equal(t, 2, ret.Items[0].Quantity)
}

func TestGetCart_EnrichmentJoinsCatalog(t *testing.T) {
	productID := primitive.NewObjectID()
	products := &mockProductRepository{
		products: []domain.Product{
			{ID: productID, Name: "facewash", Price: priceOf(2499.99), Images: []string{"../images/facewash1.jpg"}},
		},
	}
	mockRepo := &mockCartRepository{
		cart: &domain.Cart{
			UserID: "u1",
			Items:  []domain.CartItem{{ProductID: productID.Hex(), Quantity: 2}},
		},
	}

	sut := NewCartService(mockRepo, products, &mockCache{})
	ret, err := sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, "facewash", ret.Items[0].Name)
	assert.Equal(t, 2499.99, ret.Items[0].Price)
	assert.Equal(t, []string{"../images/facewash1.jpg"}, ret.Items[0].Images)
}

func TestGetCart_DanglingReferenceGetsSentinel(t *testing.T) {
	mockRepo := &mockCartRepository{
		cart: &domain.Cart{
			UserID: "u1",
			Items: []domain.CartItem{
				{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}, // not in catalog
				{ProductID: "not-even-hex", Quantity: 3},
			},
		},
	}

	sut := NewCartService(mockRepo, &mockProductRepository{}, &mockCache{})
	ret, err := sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, ret.Items, 2)
	for _, item := range ret.Items {
		assert.Equal(t, "Unknown Product", item.Name)
		assert.Equal(t, float64(0), item.Price)
		assert.Equal(t, []string{}, item.Images)
	}
}

func TestGetCart_NilPriceProjectsAsZero(t *testing.T) {
	productID := primitive.NewObjectID()
	products := &mockProductRepository{
		products: []domain.Product{
			{ID: productID, Name: "Classic Wrist Watch", Images: []string{"../images/comingSoon.jpg"}},
		},
	}
	mockRepo := &mockCartRepository{
		cart: &domain.Cart{
			UserID: "u1",
			Items:  []domain.CartItem{{ProductID: productID.Hex(), Quantity: 1}},
		},
	}

	sut := NewCartService(mockRepo, products, &mockCache{})
	ret, err := sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, "Classic Wrist Watch", ret.Items[0].Name)
	assert.Equal(t, float64(0), ret.Items[0].Price)
}

func TestGetCart_BatchedLookupDeduplicates(t *testing.T) {
	productID := primitive.NewObjectID()
	products := &mockProductRepository{
		products: []domain.Product{{ID: productID, Name: "facewash", Price: priceOf(1)}},
	}
	mockRepo := &mockCartRepository{
		cart: &domain.Cart{
			UserID: "u1",
			Items: []domain.CartItem{
				{ProductID: productID.Hex(), Quantity: 1},
				{ProductID: productID.Hex(), Quantity: 2},
			},
		},
	}

	sut := NewCartService(mockRepo, products, &mockCache{})
	_, err := sut.GetCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, products.lastIDs, 1)
}

func TestUpsertItem_OverwritesQuantity(t *testing.T) {
	mockRepo := &mockCartRepository{}
	mockC := &mockCache{}
	sut := NewCartService(mockRepo, &mockProductRepository{}, mockC)

	cart, err := sut.UpsertItem(context.Background(), "u1", "p1", 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)

	cart, err = sut.UpsertItem(context.Background(), "u1", "p1", 5)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestUpsertItem_AppendsInOrder(t *testing.T) {
	mockRepo := &mockCartRepository{}
	sut := NewCartService(mockRepo, &mockProductRepository{}, &mockCache{})

	_, err := sut.UpsertItem(context.Background(), "u1", "p1", 1)
	require.NoError(t, err)
	cart, err := sut.UpsertItem(context.Background(), "u1", "p2", 4)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, "p1", cart.Items[0].ProductID)
	assert.Equal(t, "p2", cart.Items[1].ProductID)
}

func TestUpsertItem_InvalidatesCache(t *testing.T) {
	stale := &domain.Cart{UserID: "u1", Items: []domain.CartItem{{ProductID: "p1", Quantity: 1}}}
	mockC := &mockCache{cart: stale}
	mockRepo := &mockCartRepository{cart: stale}

	sut := NewCartService(mockRepo, &mockProductRepository{}, mockC)
	_, err := sut.UpsertItem(context.Background(), "u1", "p1", 9)
	require.NoError(t, err)
	assert.Nil(t, mockC.getCart())
}

func TestRemoveItem_NoCartIsNoOp(t *testing.T) {
	mockRepo := &mockCartRepository{}
	sut := NewCartService(mockRepo, &mockProductRepository{}, &mockCache{})

	cart, err := sut.RemoveItem(context.Background(), "nobody", "p1")
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestRemoveItem_AbsentProductLeavesCartUnchanged(t *testing.T) {
	mockRepo := &mockCartRepository{
		cart: &domain.Cart{
			UserID: "u1",
			Items:  []domain.CartItem{{ProductID: "p1", Quantity: 2}},
		},
	}
	sut := NewCartService(mockRepo, &mockProductRepository{}, &mockCache{})

	cart, err := sut.RemoveItem(context.Background(), "u1", "missing")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ProductID)
}

func TestRemoveItem_OnlyItemLeavesEmptyCart(t *testing.T) {
	mockRepo := &mockCartRepository{
		cart: &domain.Cart{
			UserID: "u1",
			Items:  []domain.CartItem{{ProductID: "p1", Quantity: 2}},
		},
	}
	sut := NewCartService(mockRepo, &mockProductRepository{}, &mockCache{})

	cart, err := sut.RemoveItem(context.Background(), "u1", "p1")
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Empty(t, cart.Items)
}
