package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config carries the wrapper's own settings; gateway credentials live in
// the Client.
type Config struct {
	RedirectBaseURL  string
	CallbackUsername string
	CallbackPassword string
}

type Handler struct {
	client  Client
	pub     Publisher // nil when callback eventing is disabled
	cfg     Config
	timeout time.Duration
}

func NewHandler(client Client, pub Publisher, cfg Config, timeout time.Duration) *Handler {
	return &Handler{
		client:  client,
		pub:     pub,
		cfg:     cfg,
		timeout: timeout,
	}
}

type CreateOrderRequestDTO struct {
	Amount decimal.Decimal `json:"amount"`
}

type CreateOrderResponseDTO struct {
	Success         bool   `json:"success"`
	RedirectURL     string `json:"redirectUrl"`
	MerchantOrderID string `json:"merchantOrderId"`
}

type CreateSDKOrderResponseDTO struct {
	Success         bool   `json:"success"`
	Token           string `json:"token"`
	MerchantOrderID string `json:"merchantOrderId"`
}

type OrderStatusResponseDTO struct {
	OrderID string `json:"orderId"`
	State   string `json:"state"`
}

// CreateOrder starts a redirect checkout: mint a merchant order id, hand the
// amount to the gateway, return its hosted-checkout URL.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := h.decodeOrderRequest(w, r)
	if !ok {
		return
	}

	merchantOrderID := uuid.NewString()
	resp, err := h.client.Pay(ctx, PayRequest{
		MerchantOrderID: merchantOrderID,
		Amount:          toMinorUnits(req.Amount),
		RedirectURL:     h.redirectURL(merchantOrderID),
	})
	if err != nil {
		log.Printf("create order error: %v", err)
		respondError(w, http.StatusInternalServerError, "payment initiation failed")
		return
	}

	respondJSON(w, http.StatusOK, CreateOrderResponseDTO{
		Success:         true,
		RedirectURL:     resp.RedirectURL,
		MerchantOrderID: merchantOrderID,
	})
}

// CreateSDKOrder is the in-app variant: same order setup, but the response
// is a token the mobile SDK exchanges instead of a redirect URL.
func (h *Handler) CreateSDKOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := h.decodeOrderRequest(w, r)
	if !ok {
		return
	}

	merchantOrderID := uuid.NewString()
	resp, err := h.client.CreateSDKOrder(ctx, PayRequest{
		MerchantOrderID: merchantOrderID,
		Amount:          toMinorUnits(req.Amount),
		RedirectURL:     h.redirectURL(merchantOrderID),
	})
	if err != nil {
		log.Printf("sdk order error: %v", err)
		respondError(w, http.StatusInternalServerError, "sdk order creation failed")
		return
	}

	respondJSON(w, http.StatusOK, CreateSDKOrderResponseDTO{
		Success:         true,
		Token:           resp.Token,
		MerchantOrderID: merchantOrderID,
	})
}

func (h *Handler) OrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		respondError(w, http.StatusBadRequest, "orderId is required")
		return
	}

	resp, err := h.client.OrderStatus(ctx, orderID)
	if err != nil {
		log.Printf("order status error: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to check order status")
		return
	}

	respondJSON(w, http.StatusOK, OrderStatusResponseDTO{
		OrderID: orderID,
		State:   resp.State,
	})
}

// Callback verifies the gateway's X-Verify signature before trusting the
// body. Verified events are published for order processing; a publish
// failure is logged, not surfaced to the gateway, which would only retry.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondText(w, http.StatusBadRequest, "Invalid callback")
		return
	}

	event, err := h.client.ValidateCallback(
		h.cfg.CallbackUsername,
		h.cfg.CallbackPassword,
		r.Header.Get("X-Verify"),
		body,
	)
	if err != nil {
		log.Printf("invalid callback: %v", err)
		respondText(w, http.StatusBadRequest, "Invalid callback")
		return
	}

	log.Printf("gateway callback verified: %s", event.Event)

	if h.pub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()
		if err := h.pub.Publish(ctx, event); err != nil {
			log.Printf("failed to publish callback event: %v", err)
		}
	}

	respondText(w, http.StatusOK, "Callback verified")
}

func (h *Handler) decodeOrderRequest(w http.ResponseWriter, r *http.Request) (CreateOrderRequestDTO, bool) {
	var req CreateOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return req, false
	}

	if !req.Amount.IsPositive() {
		respondError(w, http.StatusBadRequest, "amount must be positive")
		return req, false
	}

	return req, true
}

func (h *Handler) redirectURL(merchantOrderID string) string {
	return fmt.Sprintf("%s?orderId=%s", h.cfg.RedirectBaseURL, merchantOrderID)
}

// toMinorUnits converts a major-unit decimal amount (e.g. rupees) to the
// integer minor units the gateway bills in. Sub-minor-unit fractions round
// half up.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
