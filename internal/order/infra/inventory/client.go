// Package inventory is the HTTP adapter to the product service. Each call
// is an independent remote operation; the workflow assumes no ordering or
// atomicity across calls.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ecomkit/order-service/internal/order/domain"
)

type Client struct {
	baseURL string
	client  *http.Client
}

var _ domain.InventoryService = (*Client)(nil)

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// productResponse is the wire shape of GET /products/{id}.
type productResponse struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// GetProduct fetches one product's name, price and stock.
func (c *Client) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	url := fmt.Sprintf("%s/products/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get product %s: %w", domain.ErrInventoryUnavailable, productID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var pr productResponse
		if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", productID, err)
		}
		return &domain.Product{
			ID:    productID,
			Name:  pr.Name,
			Price: pr.Price,
			Stock: pr.Stock,
		}, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
	default:
		return nil, fmt.Errorf("%w: get product %s: unexpected status %d", domain.ErrInventoryUnavailable, productID, resp.StatusCode)
	}
}

// stockRequest is the wire shape of PATCH /products/{id}/stock.
type stockRequest struct {
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"`
}

// AdjustStock applies a stock delta. The product service enforces its own
// floor on subtract and answers 400 when it refuses.
func (c *Client) AdjustStock(ctx context.Context, productID string, quantity int, op domain.StockOp) error {
	body, err := json.Marshal(stockRequest{Quantity: quantity, Operation: string(op)})
	if err != nil {
		return fmt.Errorf("marshal stock request: %w", err)
	}

	url := fmt.Sprintf("%s/products/%s/stock", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: adjust stock %s: %w", domain.ErrInventoryUnavailable, productID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return fmt.Errorf("%w: product %s, op %s", domain.ErrStockRejected, productID, op)
	default:
		return fmt.Errorf("%w: adjust stock %s: unexpected status %d", domain.ErrInventoryUnavailable, productID, resp.StatusCode)
	}
}
