package fulfillment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/printatelier/storefront/config"
	apperrors "github.com/printatelier/storefront/internal/errors"
	"github.com/printatelier/storefront/internal/models"
)

func testOrder() Order {
	return Order{
		OrderReferenceID: "cs_test_1",
		Currency:         "USD",
		Items: []Item{
			{
				ItemReferenceID: "cs_test_1",
				ProductUID:      "framed_poster_test",
				Files:           []File{{Type: "default", URL: "https://img/s.png"}},
				Quantity:        1,
			},
		},
		ShippingAddress: ShippingAddress{
			Name:         "Jane Buyer",
			AddressLine1: "123 Main St",
			City:         "Anytown",
			State:        "CA",
			PostalCode:   "12345",
			Country:      "US",
		},
		ReturnAddress: models.ReturnAddress{CompanyName: "John Doe"},
	}
}

func newTestClient(url string) *Client {
	return NewClient(config.FulfillmentConfig{
		APIKey:         "key-123",
		BaseURL:        url,
		RequestTimeout: 5 * time.Second,
	})
}

func TestCreateOrderSendsWrappedBody(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if err := c.CreateOrder(context.Background(), testOrder()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v4/orders" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "key-123" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}

	raw, ok := gotBody["order"]
	if !ok {
		t.Fatalf("body not order-wrapped: %v", gotBody)
	}
	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.OrderReferenceID != "cs_test_1" {
		t.Errorf("orderReferenceId = %q", order.OrderReferenceID)
	}
	if len(order.Items) != 1 || order.Items[0].ItemReferenceID != "cs_test_1" {
		t.Errorf("items = %+v", order.Items)
	}
}

func TestCreateOrderNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid product uid", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.CreateOrder(context.Background(), testOrder())
	if err == nil {
		t.Fatal("expected error for 422")
	}

	var pe apperrors.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
	if pe.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", pe.StatusCode)
	}
}

func TestCreateOrderConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // immediately, to force a dial failure

	c := newTestClient(srv.URL)
	err := c.CreateOrder(context.Background(), testOrder())
	if err == nil {
		t.Fatal("expected error for closed server")
	}

	var pe apperrors.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProviderError, got %T", err)
	}
}
