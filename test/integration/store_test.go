//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/database"
	"github.com/printatelier/storefront/internal/models"
	"github.com/printatelier/storefront/internal/store"
)

func TestPostgresStore_WithContainer(t *testing.T) {
	if !containersAvailable() {
		t.Skip("container runtime not available; skipping container-based integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image: "postgres:15-alpine",
		Env: map[string]string{
			"POSTGRES_DB":       "storefront",
			"POSTGRES_USER":     "storefront",
			"POSTGRES_PASSWORD": "password",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	dsn := "postgres://storefront:password@" + host + ":" + port.Port() + "/storefront?sslmode=disable"

	cfg := config.DatabaseConfig{
		URL:             dsn,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	defer db.Close(ctx)

	st, ok := store.New(db).(*store.PostgresStore)
	if !ok {
		t.Fatal("expected a Postgres-backed store for a configured database")
	}
	if err := st.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	product := models.Product{
		ID:        "int-prod-1",
		Title:     "Integration Print",
		Image:     "https://example.com/source.png",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.CreateProduct(ctx, product); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	got, err := st.GetProduct(ctx, "int-prod-1")
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got == nil || got.Title != "Integration Print" {
		t.Fatalf("unexpected product: %+v", got)
	}

	// Partial update: provisioning results plus last-order stamp
	link := "https://buy.example.com/p1"
	ordered := now.Add(time.Minute)
	err = st.UpdateProductFields(ctx, "int-prod-1", models.ProductFields{
		PaymentLink: &link,
		LastOrdered: &ordered,
	})
	if err != nil {
		t.Fatalf("UpdateProductFields: %v", err)
	}

	got, err = st.GetProduct(ctx, "int-prod-1")
	if err != nil {
		t.Fatalf("GetProduct after update: %v", err)
	}
	if got.PaymentLink != link {
		t.Errorf("payment_link = %q, want %q", got.PaymentLink, link)
	}
	if got.LastOrdered == nil || !got.LastOrdered.Equal(ordered) {
		t.Errorf("last_ordered = %v, want %v", got.LastOrdered, ordered)
	}
	if got.Image != product.Image {
		t.Errorf("untouched field changed: image = %q", got.Image)
	}

	list, err := st.ListProducts(ctx, models.ProductQuery{Limit: 10})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}

	if err := st.DeleteProduct(ctx, "int-prod-1"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	got, err = st.GetProduct(ctx, "int-prod-1")
	if err != nil {
		t.Fatalf("GetProduct after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("product persists after delete: %+v", got)
	}

	// Delete of a missing record is a no-op
	if err := st.DeleteProduct(ctx, "int-prod-1"); err != nil {
		t.Fatalf("DeleteProduct on missing record: %v", err)
	}
}
