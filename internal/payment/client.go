package payment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrInvalidCallback = errors.New("invalid callback signature")

// PayRequest carries an amount in minor currency units, the convention the
// gateway expects on the wire.
type PayRequest struct {
	MerchantOrderID string `json:"merchantOrderId"`
	Amount          int64  `json:"amount"`
	RedirectURL     string `json:"redirectUrl"`
}

type PayResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

type SDKOrderResponse struct {
	Token string `json:"token"`
}

type OrderStatusResponse struct {
	State string `json:"state"`
}

// CallbackEvent is the verified payload the gateway posts back after a
// checkout completes or fails.
type CallbackEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Client is the vendor gateway surface the wrapper consumes. The gateway is
// an external collaborator; nothing beyond this interface is modeled.
type Client interface {
	Pay(ctx context.Context, req PayRequest) (*PayResponse, error)
	CreateSDKOrder(ctx context.Context, req PayRequest) (*SDKOrderResponse, error)
	OrderStatus(ctx context.Context, orderID string) (*OrderStatusResponse, error)
	ValidateCallback(username, password, signature string, body []byte) (*CallbackEvent, error)
}

// RESTClient talks to the gateway's checkout REST API.
type RESTClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

func NewRESTClient(baseURL, clientID, clientSecret string) *RESTClient {
	return &RESTClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *RESTClient) Pay(ctx context.Context, req PayRequest) (*PayResponse, error) {
	var resp PayResponse
	if err := c.post(ctx, "/checkout/v2/pay", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RESTClient) CreateSDKOrder(ctx context.Context, req PayRequest) (*SDKOrderResponse, error) {
	var resp SDKOrderResponse
	if err := c.post(ctx, "/checkout/v2/sdk/order", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *RESTClient) OrderStatus(ctx context.Context, orderID string) (*OrderStatusResponse, error) {
	path := fmt.Sprintf("/checkout/v2/order/%s/status", url.PathEscape(orderID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	c.setAuthHeaders(httpReq)

	var resp OrderStatusResponse
	if err := c.do(httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ValidateCallback checks the X-Verify signature the gateway sends: the hex
// SHA-256 of "username:password" for the configured callback credentials.
// The comparison is constant-time.
func (c *RESTClient) ValidateCallback(username, password, signature string, body []byte) (*CallbackEvent, error) {
	sum := sha256.Sum256([]byte(username + ":" + password))
	expected := hex.EncodeToString(sum[:])

	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(signature))) != 1 {
		return nil, ErrInvalidCallback
	}

	var event CallbackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode callback body: %w", err)
	}

	return &event, nil
}

func (c *RESTClient) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(httpReq)

	return c.do(httpReq, out)
}

func (c *RESTClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body for the log, never for the caller.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gateway response: %w", err)
	}
	return nil
}

func (c *RESTClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("X-Client-Id", c.clientID)
	req.Header.Set("X-Client-Secret", c.clientSecret)
}
