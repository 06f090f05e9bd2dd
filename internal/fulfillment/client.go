package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/errors"
	"github.com/printatelier/storefront/internal/metrics"
	"github.com/printatelier/storefront/internal/models"
)

// Order is the print provider's v4 order shape. OrderReferenceID doubles as
// the provider-side idempotency key: resubmitting the same reference id must
// not create a second physical order.
type Order struct {
	OrderReferenceID    string          `json:"orderReferenceId"`
	CustomerReferenceID string          `json:"customerReferenceId,omitempty"`
	Currency            string          `json:"currency"`
	Items               []Item          `json:"items"`
	ShippingAddress     ShippingAddress `json:"shippingAddress"`
	ReturnAddress       models.ReturnAddress `json:"returnAddress"`
}

// Item is a single catalog unit with one print file
type Item struct {
	ItemReferenceID string `json:"itemReferenceId"`
	ProductUID      string `json:"productUid"`
	Files           []File `json:"files"`
	Quantity        int    `json:"quantity"`
}

// File references the asset to print
type File struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// ShippingAddress is the recipient block on the wire
type ShippingAddress struct {
	Name         string `json:"name"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postalCode"`
	Country      string `json:"country"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

// The provider accepts two body shapes across API revisions; this client
// uses the order-wrapped one exclusively.
type createOrderRequest struct {
	Order Order `json:"order"`
}

// Client talks to the print provider's order API
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a fulfillment client
func NewClient(cfg config.FulfillmentConfig) *Client {
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// CreateOrder submits an order. Any non-2xx status is a hard failure for
// this submission; the provider's own retry-safety comes from the
// reference id, not from this client.
func (c *Client) CreateOrder(ctx context.Context, order Order) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(createOrderRequest{Order: order})
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v4/orders", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.RecordProviderRequest("gelato", "create order", "error")
		return errors.ProviderError{Provider: "gelato", Operation: "create order", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain for connection reuse; the body is not part of the contract.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		metrics.RecordProviderRequest("gelato", "create order", "error")
		return errors.ProviderError{Provider: "gelato", Operation: "create order", StatusCode: resp.StatusCode}
	}

	metrics.RecordProviderRequest("gelato", "create order", "success")
	return nil
}
