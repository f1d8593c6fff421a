package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/akhil189709/dermaBackend/internal/domain"
)

type CatalogService interface {
	Seed(ctx context.Context) error
	List(ctx context.Context) ([]domain.Product, error)
}

type CatalogHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogService, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

// SeedProducts drops and repopulates the catalog. Destructive; new product
// identifiers are assigned on every call.
func (h *CatalogHandler) SeedProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.catalog.Seed(ctx); err != nil {
		respondServerError(w, err)
		return
	}

	respondText(w, http.StatusOK, "Products seeded")
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		respondServerError(w, err)
		return
	}

	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}
