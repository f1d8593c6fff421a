package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the storefront routes with the shared middleware stack.
func NewRouter(carts CartService, catalog CatalogService, allowedOrigins []string, requestTimeout time.Duration) http.Handler {
	cartHandler := NewCartHandler(carts, requestTimeout)
	catalogHandler := NewCatalogHandler(catalog, requestTimeout)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDHeader)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/seed-products", catalogHandler.SeedProducts)
		r.Get("/products", catalogHandler.ListProducts)
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/", cartHandler.UpsertItem)
			r.Delete("/", cartHandler.RemoveItem)
		})
	})

	return r
}
