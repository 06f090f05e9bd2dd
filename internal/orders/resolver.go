package orders

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"

	"github.com/printatelier/storefront/internal/catalog"
	"github.com/printatelier/storefront/internal/errors"
	"github.com/printatelier/storefront/internal/logger"
	"github.com/printatelier/storefront/internal/models"
	"github.com/printatelier/storefront/internal/store"
)

// SessionAPI is the slice of the payment provider the resolver needs
type SessionAPI interface {
	GetSessionWithLineItems(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
}

// ResolvedOrder is everything the fulfillment submitter needs for one
// completed checkout session.
type ResolvedOrder struct {
	Product     models.Product
	Contact     models.ShippingContact
	SessionID   string
	CustomerRef string
}

// Resolver maps a verified checkout-session-completed event onto a durable
// product record plus a validated shipping contact. Every failure is terminal
// for the delivery and leaves no partial mutation.
type Resolver struct {
	api   SessionAPI
	store store.Store
}

// NewResolver creates an order resolver
func NewResolver(api SessionAPI, st store.Store) *Resolver {
	return &Resolver{api: api, store: st}
}

// Resolve validates the session end to end. Sentinel errors classify the
// failure for the webhook response: ErrNoProductID, ErrNoProduct, ErrNoCustomer.
func (r *Resolver) Resolve(ctx context.Context, sess *stripe.CheckoutSession) (*ResolvedOrder, error) {
	productID, err := r.resolveProductID(ctx, sess)
	if err != nil {
		return nil, err
	}

	product, err := r.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("fetch product %s: %w", productID, err)
	}
	if product == nil {
		return nil, errors.ErrNoProduct
	}

	contact, err := r.resolveContact(ctx, sess)
	if err != nil {
		return nil, err
	}

	customerRef := ""
	if sess.Customer != nil {
		customerRef = sess.Customer.ID
	}

	return &ResolvedOrder{
		Product:     *product,
		Contact:     *contact,
		SessionID:   sess.ID,
		CustomerRef: customerRef,
	}, nil
}

// resolveProductID reads the record id from session metadata, falling back to
// the metadata of the sellable item on the expanded session.
func (r *Resolver) resolveProductID(ctx context.Context, sess *stripe.CheckoutSession) (string, error) {
	if id := sess.Metadata[catalog.MetadataProductID]; id != "" {
		return id, nil
	}

	expanded, err := r.api.GetSessionWithLineItems(ctx, sess.ID)
	if err != nil {
		return "", fmt.Errorf("expand session %s: %w", sess.ID, err)
	}
	if expanded.LineItems != nil {
		for _, item := range expanded.LineItems.Data {
			if item.Price == nil || item.Price.Product == nil {
				continue
			}
			if id := item.Price.Product.Metadata[catalog.MetadataProductID]; id != "" {
				return id, nil
			}
		}
	}

	return "", errors.ErrNoProductID
}

// resolveContact prefers the session-embedded customer details and falls back
// to a live customer fetch when the session only carries a reference.
func (r *Resolver) resolveContact(ctx context.Context, sess *stripe.CheckoutSession) (*models.ShippingContact, error) {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Address != nil {
		contact := &models.ShippingContact{
			Name:    sess.CustomerDetails.Name,
			Phone:   sess.CustomerDetails.Phone,
			Email:   sess.CustomerDetails.Email,
			Address: fromStripeAddress(sess.CustomerDetails.Address),
		}
		if contact.Address.Complete() {
			return contact, nil
		}
		logger.Debug("Session customer details incomplete, trying customer fetch",
			"session_id", sess.ID)
	}

	if sess.Customer == nil || sess.Customer.ID == "" {
		return nil, errors.ErrNoCustomer
	}

	cust, err := r.api.GetCustomer(ctx, sess.Customer.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch customer %s: %w", sess.Customer.ID, err)
	}
	if cust == nil || cust.Deleted || cust.Shipping == nil || cust.Shipping.Address == nil {
		return nil, errors.ErrNoCustomer
	}

	contact := &models.ShippingContact{
		Name:    cust.Shipping.Name,
		Phone:   cust.Phone,
		Email:   cust.Email,
		Address: fromStripeAddress(cust.Shipping.Address),
	}
	if contact.Name == "" {
		contact.Name = cust.Name
	}
	if contact.Phone == "" {
		contact.Phone = cust.Shipping.Phone
	}
	if !contact.Address.Complete() {
		return nil, errors.ErrNoCustomer
	}

	return contact, nil
}

func fromStripeAddress(a *stripe.Address) models.Address {
	return models.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}
