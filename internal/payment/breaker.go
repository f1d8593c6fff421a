package payment

import (
	"context"
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerClient shields the wrapper from a misbehaving gateway: after a run
// of consecutive failures the breaker opens and calls fail fast until the
// half-open probe succeeds. Callback validation is local computation and
// bypasses the breaker.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker[any]
}

func NewBreakerClient(inner Client) *BreakerClient {
	settings := gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &BreakerClient{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[any](settings),
	}
}

func (b *BreakerClient) Pay(ctx context.Context, req PayRequest) (*PayResponse, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.Pay(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*PayResponse), nil
}

func (b *BreakerClient) CreateSDKOrder(ctx context.Context, req PayRequest) (*SDKOrderResponse, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.CreateSDKOrder(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*SDKOrderResponse), nil
}

func (b *BreakerClient) OrderStatus(ctx context.Context, orderID string) (*OrderStatusResponse, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.inner.OrderStatus(ctx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*OrderStatusResponse), nil
}

func (b *BreakerClient) ValidateCallback(username, password, signature string, body []byte) (*CallbackEvent, error) {
	return b.inner.ValidateCallback(username, password, signature, body)
}
