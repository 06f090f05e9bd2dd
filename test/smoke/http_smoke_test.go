package smoke

import (
	"net/http/httptest"
	"testing"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/printatelier/storefront/internal/api"
	"github.com/printatelier/storefront/internal/store"
)

func TestHealthAndProductsSmoke(t *testing.T) {
	st := store.NewInMemoryStore()
	h := api.NewHandler(st, nil, nil, nil, nil, nil, "whsec_dev", "admin-dev", "", "dev", time.Now().Format(time.RFC3339), "git")
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/health", nil))
	if rec.Code != 200 {
		t.Fatalf("/v1/health %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	r.ServeHTTP(rec2, httptest.NewRequest("GET", "/v1/products", nil))
	if rec2.Code != 200 {
		t.Fatalf("/v1/products %d", rec2.Code)
	}

	// Webhook endpoint rejects unsigned deliveries outright
	rec3 := httptest.NewRecorder()
	r.ServeHTTP(rec3, httptest.NewRequest("POST", "/v1/payments/webhook", nil))
	if rec3.Code != 400 {
		t.Fatalf("/v1/payments/webhook %d", rec3.Code)
	}
}
