package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/akhil189709/dermaBackend/internal/domain"
)

// CartService is what the HTTP layer needs from the cart logic; the handler
// defines it so tests can substitute a mock.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.EnrichedCart, error)
	UpsertItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error)
}

const (
	minQuantity = 1
	maxQuantity = 99
)

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type UpsertItemRequestDTO struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type RemoveItemRequestDTO struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

// GetCart lazily creates the cart on first access. A missing userId is
// rejected rather than treated as the empty identifier.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "userId query parameter is required")
		return
	}

	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpsertItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "userId is required")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}
	if req.Quantity < minQuantity || req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	cart, err := h.carts.UpsertItem(ctx, req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// RemoveItem answers a JSON null when the user never had a cart; that is a
// no-op, not an error.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RemoveItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "userId is required")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "productId is required")
		return
	}

	cart, err := h.carts.RemoveItem(ctx, req.UserID, req.ProductID)
	if err != nil {
		respondServerError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}
