package store

import (
	"context"

	"github.com/printatelier/storefront/internal/models"
)

// Store defines the interface for the product record store
type Store interface {
	CreateProduct(ctx context.Context, p models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error)
	UpdateProductFields(ctx context.Context, id string, f models.ProductFields) error
	DeleteProduct(ctx context.Context, id string) error
	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...any) interface{}
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new store instance
func New(db Database) Store {
	if db.IsConfigured() {
		return NewPostgresStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryStore()
}
