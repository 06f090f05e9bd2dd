package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/printatelier/storefront/internal/models"
	"github.com/printatelier/storefront/internal/store"
)

type apiFixture struct {
	store     *store.InMemoryStore
	handler   http.Handler
	published []models.Product
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{store: store.NewInMemoryStore()}
	publish := func(p models.Product) { f.published = append(f.published, p) }

	h := NewHandler(f.store, nil, nil, nil, publish, nil, testWebhookSecret, "admin-secret", "", "1.0.0-test", "2026-01-01", "abc123")
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	f.handler = r
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

var adminHeaders = map[string]string{"X-Admin-Secret": "admin-secret"}

func TestHealthEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/health", "/v1/health", "/v1/health/ready", "/v1/health/live"} {
		rec := f.do(t, "GET", path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
}

func TestVersionEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "GET", "/v1/version", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["version"] != "1.0.0-test" {
		t.Errorf("version = %q", body["version"])
	}
}

func TestCreateProduct(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "POST", "/v1/products", `{"title":"Dune at Dawn","image":"https://img.test/a.png"}`, adminHeaders)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created models.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if created.ID == "" {
		t.Error("created product has no id")
	}
	if created.Title != "Dune at Dawn" {
		t.Errorf("title = %q", created.Title)
	}

	// Stored and published
	p, err := f.store.GetProduct(context.Background(), created.ID)
	if err != nil || p == nil {
		t.Fatalf("stored product missing: %v", err)
	}
	if len(f.published) != 1 || f.published[0].ID != created.ID {
		t.Errorf("published events = %+v", f.published)
	}
}

func TestCreateProductExplicitID(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "POST", "/v1/products", `{"id":"prod-7","title":"T","image":"https://img.test/a.png"}`, adminHeaders)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var created models.Product
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID != "prod-7" {
		t.Errorf("id = %q, want prod-7", created.ID)
	}
}

func TestCreateProductValidation(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"image":"https://img.test/a.png"}`},
		{"missing image", `{"title":"T"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, "POST", "/v1/products", tt.body, adminHeaders)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
	if len(f.published) != 0 {
		t.Error("events published for rejected requests")
	}
}

func TestCreateProductRequiresAdminSecret(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "POST", "/v1/products", `{"title":"T","image":"https://img.test/a.png"}`, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(f.published) != 0 {
		t.Error("event published without admin secret")
	}
}

func TestGetProduct(t *testing.T) {
	f := newAPIFixture(t)
	seedProduct(t, f.store, "prod-1")

	rec := f.do(t, "GET", "/v1/products/prod-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var p models.Product
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.ID != "prod-1" {
		t.Errorf("id = %q", p.ID)
	}
}

func TestGetProductNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "GET", "/v1/products/missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListProducts(t *testing.T) {
	f := newAPIFixture(t)
	seedProduct(t, f.store, "prod-1")
	seedProduct(t, f.store, "prod-2")
	seedProduct(t, f.store, "prod-3")

	rec := f.do(t, "GET", "/v1/products?limit=2", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Data  []models.Product `json:"data"`
		Count int              `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Count != 2 || len(body.Data) != 2 {
		t.Errorf("count = %d, len = %d, want 2", body.Count, len(body.Data))
	}
}

func TestListProductsInvalidQuery(t *testing.T) {
	f := newAPIFixture(t)

	for _, q := range []string{"limit=abc", "limit=5000", "offset=-1"} {
		rec := f.do(t, "GET", "/v1/products?"+q, "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, rec.Code)
		}
	}
}
