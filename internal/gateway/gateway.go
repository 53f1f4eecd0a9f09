// internal/gateway/gateway.go
//
// HTTP client for the remote order service. One GET per stage returns that
// stage's current membership; one PUT per transition edge applies a
// server-acknowledged status change. The core never talks HTTP directly; it
// sees []order.Order and errors.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nlicea/orderdeck/internal/order"
)

const (
	// DefaultTimeout bounds a single gateway round trip.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxBodyBytes limits response payloads to 4 MB.
	DefaultMaxBodyBytes int64 = 4 << 20
)

// TokenSource supplies the bearer token attached to requests. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// Settings captures runtime configuration for the gateway client.
type Settings struct {
	BaseURL      string
	ImageBaseURL string
	Placeholder  string
	Timeout      time.Duration
	MaxBodyBytes int64
}

func (s *Settings) normalize() {
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	s.ImageBaseURL = strings.TrimRight(strings.TrimSpace(s.ImageBaseURL), "/")
	if s.ImageBaseURL == "" {
		s.ImageBaseURL = s.BaseURL
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Client talks to the remote order service.
type Client struct {
	settings Settings
	http     *http.Client
	tokens   TokenSource
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTokenSource attaches bearer tokens from the given source.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		if ts != nil {
			c.tokens = ts
		}
	}
}

// New prepares a gateway client for the configured order service.
func New(settings Settings, opts ...Option) (*Client, error) {
	settings.normalize()
	if settings.BaseURL == "" {
		return nil, fmt.Errorf("gateway: base URL is required")
	}
	c := &Client{
		settings: settings,
		http:     &http.Client{Timeout: settings.Timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// stagePaths maps each display bucket to the endpoint returning its current
// server-side membership. Pending orders come from the order-details view;
// confirmed orders feed the To Ship list directly.
var stagePaths = map[order.Stage]string{
	order.StagePending:   "/order-details/orders",
	order.StageToShip:    "/orders/confirmed/orders",
	order.StageShipped:   "/orders/shipped/orders",
	order.StageRejected:  "/orders/rejected/orders",
	order.StageDelivered: "/orders/delivered/orders",
	order.StageCompleted: "/orders/completed/orders",
}

// transitionPaths maps each acknowledged target stage to its endpoint.
// Confirmed and Rejected share the confirm endpoint; the body's status label
// tells them apart. The Delivered route is capitalized on the server while
// the rest are lowercase; the casing is part of the contract.
var transitionPaths = map[order.Stage]string{
	order.StageConfirmed: "/vms/orders/%s/confirm",
	order.StageRejected:  "/vms/orders/%s/confirm",
	order.StageShipped:   "/vms/orders/%s/toship",
	order.StageDelivered: "/vms/orders/%s/Delivered",
	order.StageCompleted: "/vms/orders/%s/complete",
}

// FetchStage returns the orders the server currently holds in the stage.
func (c *Client) FetchStage(ctx context.Context, stage order.Stage) ([]order.Order, error) {
	path, ok := stagePaths[stage.Bucket()]
	if !ok {
		return nil, fmt.Errorf("gateway: no fetch endpoint for stage %s", stage)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.settings.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: build fetch request: %w", err)
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: fetch %s: %w", stage, err)
	}
	defer resp.Body.Close()
	body := io.LimitReader(resp.Body, c.settings.MaxBodyBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.statusError(resp.StatusCode, body)
	}
	var dtos []OrderDTO
	if err := json.NewDecoder(body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("gateway: decode %s response: %w", stage, err)
	}
	orders := make([]order.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, dto.toOrder(c.settings.ImageBaseURL, c.settings.Placeholder))
	}
	return orders, nil
}

// ApplyTransition asks the server to move the order into the target stage.
// The server is the source of truth: callers mutate local state only after
// this returns nil.
func (c *Client) ApplyTransition(ctx context.Context, orderID string, target order.Stage) error {
	path, ok := transitionPaths[target]
	if !ok {
		return fmt.Errorf("gateway: no transition endpoint for stage %s", target)
	}
	payload, err := json.Marshal(statusUpdate{OrderStatus: string(target)})
	if err != nil {
		return fmt.Errorf("gateway: encode transition payload: %w", err)
	}
	url := c.settings.BaseURL + fmt.Sprintf(path, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gateway: build transition request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: transition %s to %s: %w", orderID, target, err)
	}
	defer resp.Body.Close()
	body := io.LimitReader(resp.Body, c.settings.MaxBodyBytes)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, body)
	}
	// Response body (the updated DTO) is drained but unused; the store
	// already knows the full order.
	_, _ = io.Copy(io.Discard, body)
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := strings.TrimSpace(c.tokens.Token()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) statusError(status int, body io.Reader) error {
	detail, _ := io.ReadAll(io.LimitReader(body, 512))
	return &StatusError{Status: status, Detail: strings.TrimSpace(string(detail))}
}

// StatusError reports a non-success HTTP response from the order service.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("gateway: server returned %d", e.Status)
	}
	return fmt.Sprintf("gateway: server returned %d: %s", e.Status, e.Detail)
}

type statusUpdate struct {
	OrderStatus string `json:"orderStatus"`
}
