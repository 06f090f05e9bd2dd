package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/printatelier/storefront/internal/errors"
	"github.com/printatelier/storefront/internal/models"
)

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		products: make(map[string]models.Product),
	}
}

// CreateProduct stores a new product record
func (s *InMemoryStore) CreateProduct(ctx context.Context, p models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; exists {
		return errors.DatabaseError{Operation: "create product", Err: errors.ErrInvalidInput}
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.products[p.ID] = p

	return nil
}

// GetProduct retrieves a single product by ID
func (s *InMemoryStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, exists := s.products[id]; exists {
		return &p, nil
	}

	return nil, nil
}

// ListProducts returns products ordered by creation time descending
func (s *InMemoryStore) ListProducts(ctx context.Context, q models.ProductQuery) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if q.Offset > 0 && q.Offset < len(result) {
		result = result[q.Offset:]
	} else if q.Offset >= len(result) {
		result = []models.Product{}
	}

	if q.Limit > 0 && q.Limit < len(result) {
		result = result[:q.Limit]
	}

	return result, nil
}

// UpdateProductFields applies a partial overwrite to a product record
func (s *InMemoryStore) UpdateProductFields(ctx context.Context, id string, f models.ProductFields) error {
	if f.IsZero() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.products[id]
	if !exists {
		return errors.ErrNotFound
	}

	if f.StripeProductID != nil {
		p.StripeProductID = *f.StripeProductID
	}
	if f.StripePriceID != nil {
		p.StripePriceID = *f.StripePriceID
	}
	if f.PaymentLink != nil {
		p.PaymentLink = *f.PaymentLink
	}
	if f.UpscaledImage != nil {
		p.UpscaledImage = *f.UpscaledImage
	}
	if f.LastOrdered != nil {
		t := *f.LastOrdered
		p.LastOrdered = &t
	}
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p

	return nil
}

// DeleteProduct removes a product record. Deleting a missing record is a no-op.
func (s *InMemoryStore) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}
