// Package catalog wraps the product endpoints of the order service. These
// are plain request/response calls with no client-side invariant: send the
// payload, show the result. The orders board never touches them.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer token attached to requests.
type TokenSource interface {
	Token() string
}

// Product is one catalog entry as the service lists it.
type Product struct {
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	Size               string  `json:"size"`
	Color              string  `json:"color"`
	Category           string  `json:"category,omitempty"`
	UnitPrice          float64 `json:"unitPrice"`
	AvailableQuantity  int     `json:"available quantity"`
}

// SizeVariant is one size row for a product.
type SizeVariant struct {
	Size        string `json:"size"`
	ProductCode string `json:"productCode"`
	Barcode     string `json:"barcode"`
}

// NewProduct is the payload for creating a catalog entry.
type NewProduct struct {
	ProductName        string  `json:"productName"`
	ProductDescription string  `json:"productDescription"`
	Size               string  `json:"size"`
	Category           string  `json:"category"`
	UnitPrice          float64 `json:"unitPrice"`
	Quantity           int     `json:"quantity"`
	Image              string  `json:"image,omitempty"`
}

// SizeStock is one size row with its remaining stock.
type SizeStock struct {
	Size         string `json:"size"`
	CurrentStock int    `json:"currentStock"`
}

// SizeQuery identifies the product whose sizes are listed.
type SizeQuery struct {
	ProductName        string
	UnitPrice          float64
	Category           string
	ProductDescription string
}

// QuantityUpdate adds stock to an existing product.
type QuantityUpdate struct {
	ProductName string `json:"productName"`
	Size        string `json:"size"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
}

// Client talks to the product side of the order service.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
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

// New prepares a catalog client for the configured service.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("catalog: base URL is required")
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// ListProducts returns every active catalog entry.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct returns one catalog entry by its numeric id.
func (c *Client) GetProduct(ctx context.Context, productID int64) (Product, error) {
	var product Product
	if err := c.get(ctx, "/products/"+strconv.FormatInt(productID, 10), &product); err != nil {
		return Product{}, err
	}
	return product, nil
}

// ListSizeVariants returns the size rows matching a product.
func (c *Client) ListSizeVariants(ctx context.Context, productName, category string) ([]SizeVariant, error) {
	query := url.Values{}
	query.Set("productName", productName)
	query.Set("category", category)
	var variants []SizeVariant
	if err := c.get(ctx, "/products/size_variants?"+query.Encode(), &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

// ListSizes returns the in-stock sizes for the identified product. The service
// nests the rows under a "size" key.
func (c *Client) ListSizes(ctx context.Context, q SizeQuery) ([]SizeStock, error) {
	query := url.Values{}
	query.Set("productName", q.ProductName)
	query.Set("unitPrice", strconv.FormatFloat(q.UnitPrice, 'f', -1, 64))
	query.Set("category", q.Category)
	if q.ProductDescription != "" {
		query.Set("productDescription", q.ProductDescription)
	}
	var wrapper struct {
		Size []SizeStock `json:"size"`
	}
	if err := c.get(ctx, "/products/sizes?"+query.Encode(), &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Size, nil
}

// AddProduct creates a catalog entry.
func (c *Client) AddProduct(ctx context.Context, product NewProduct) error {
	return c.send(ctx, http.MethodPost, "/products", product)
}

// UpdateProduct rewrites the catalog entry matching the product's name,
// description, price and category.
func (c *Client) UpdateProduct(ctx context.Context, product Product) error {
	return c.send(ctx, http.MethodPut, "/products", product)
}

// AddSizeVariant registers an additional size for an existing product.
func (c *Client) AddSizeVariant(ctx context.Context, product NewProduct) error {
	return c.send(ctx, http.MethodPost, "/products_AddSize", product)
}

// AddQuantity tops up stock for a product variant.
func (c *Client) AddQuantity(ctx context.Context, update QuantityUpdate) error {
	return c.send(ctx, http.MethodPost, "/products/add-quantity", update)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(path, resp)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(out); err != nil {
		return fmt.Errorf("catalog: decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("catalog: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: %s %s: %w", strings.ToLower(method), path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(path, resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<20))
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

func (c *Client) statusError(path string, resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("catalog: %s returned %d: %s", path, resp.StatusCode,
		strings.TrimSpace(string(detail)))
}
