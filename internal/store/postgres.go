package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/printatelier/storefront/internal/models"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `id, title, image, upscaled_image, stripe_product_id,
	   stripe_price_id, payment_link, last_ordered, created_at, updated_at`

// EnsureSchema creates the products table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS products (
			id                TEXT PRIMARY KEY,
			title             TEXT NOT NULL,
			image             TEXT NOT NULL,
			upscaled_image    TEXT NOT NULL DEFAULT '',
			stripe_product_id TEXT NOT NULL DEFAULT '',
			stripe_price_id   TEXT NOT NULL DEFAULT '',
			payment_link      TEXT NOT NULL DEFAULT '',
			last_ordered      TIMESTAMPTZ,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure products schema: %w", err)
	}
	return nil
}

// CreateProduct inserts a new product record
func (s *PostgresStore) CreateProduct(ctx context.Context, p models.Product) error {
	query := `
		INSERT INTO products (id, title, image, upscaled_image, stripe_product_id,
			stripe_price_id, payment_link, last_ordered)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	err := s.db.Exec(ctx, query,
		p.ID, p.Title, p.Image, p.UpscaledImage, p.StripeProductID,
		p.StripePriceID, p.PaymentLink, p.LastOrdered,
	)
	if err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, err)
	}

	return nil
}

// GetProduct retrieves a single product by ID
func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	rowInterface := s.db.QueryRow(ctx, query, id)
	row, ok := rowInterface.(pgx.Row)
	if !ok {
		return nil, fmt.Errorf("invalid row type")
	}

	var p models.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Image, &p.UpscaledImage, &p.StripeProductID,
		&p.StripePriceID, &p.PaymentLink, &p.LastOrdered, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

// ListProducts retrieves products ordered by creation time descending
func (s *PostgresStore) ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	var args []interface{}
	argIndex := 1

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, q.Limit)
		argIndex++
	}

	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, q.Offset)
	}

	rowsInterface, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}

	rows, ok := rowsInterface.(pgx.Rows)
	if !ok {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID, &p.Title, &p.Image, &p.UpscaledImage, &p.StripeProductID,
			&p.StripePriceID, &p.PaymentLink, &p.LastOrdered, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	return products, nil
}

// UpdateProductFields applies a partial overwrite to a product row. There is
// no optimistic concurrency: set fields win unconditionally.
func (s *PostgresStore) UpdateProductFields(ctx context.Context, id string, f models.ProductFields) error {
	if f.IsZero() {
		return nil
	}

	query := "UPDATE products SET updated_at = NOW()"
	var args []interface{}
	argIndex := 1

	if f.StripeProductID != nil {
		query += fmt.Sprintf(", stripe_product_id = $%d", argIndex)
		args = append(args, *f.StripeProductID)
		argIndex++
	}
	if f.StripePriceID != nil {
		query += fmt.Sprintf(", stripe_price_id = $%d", argIndex)
		args = append(args, *f.StripePriceID)
		argIndex++
	}
	if f.PaymentLink != nil {
		query += fmt.Sprintf(", payment_link = $%d", argIndex)
		args = append(args, *f.PaymentLink)
		argIndex++
	}
	if f.UpscaledImage != nil {
		query += fmt.Sprintf(", upscaled_image = $%d", argIndex)
		args = append(args, *f.UpscaledImage)
		argIndex++
	}
	if f.LastOrdered != nil {
		query += fmt.Sprintf(", last_ordered = $%d", argIndex)
		args = append(args, *f.LastOrdered)
		argIndex++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argIndex)
	args = append(args, id)

	if err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}

	return nil
}

// DeleteProduct removes a product row
func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	if err := s.db.Exec(ctx, "DELETE FROM products WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

// Health checks the database connection
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
