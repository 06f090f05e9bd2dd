package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/logger"
	"github.com/printatelier/storefront/internal/metrics"
	"github.com/printatelier/storefront/internal/models"
	"github.com/printatelier/storefront/internal/orders"
	"github.com/printatelier/storefront/internal/store"
)

// OrderClient submits orders to the print provider
type OrderClient interface {
	CreateOrder(ctx context.Context, order Order) error
}

// Submitter builds and submits one fulfillment order per resolved checkout
// session. Duplicate suppression lives entirely at the provider, keyed on the
// session id used as the order reference.
type Submitter struct {
	client OrderClient
	store  store.Store
	cfg    config.FulfillmentConfig
}

// NewSubmitter creates a fulfillment submitter
func NewSubmitter(client OrderClient, st store.Store, cfg config.FulfillmentConfig) *Submitter {
	return &Submitter{client: client, store: st, cfg: cfg}
}

// Submit sends the order and, on provider success, stamps the product's
// last-order time. The stamp is bookkeeping: a failure to write it is logged
// but does not fail the submission, since the provider already accepted the
// order.
func (s *Submitter) Submit(ctx context.Context, ro *orders.ResolvedOrder) error {
	order, err := s.buildOrder(ro)
	if err != nil {
		metrics.RecordFulfillmentOrder("build_error")
		return err
	}

	if err := s.client.CreateOrder(ctx, order); err != nil {
		metrics.RecordFulfillmentOrder("rejected")
		return err
	}
	metrics.RecordFulfillmentOrder("submitted")

	now := time.Now().UTC()
	err = s.store.UpdateProductFields(ctx, ro.Product.ID, models.ProductFields{LastOrdered: &now})
	if err != nil {
		logger.Error("Failed to stamp last-order time",
			"product_id", ro.Product.ID,
			"session_id", ro.SessionID,
			"error", err,
		)
	}

	logger.Info("Fulfillment order submitted",
		"product_id", ro.Product.ID,
		"session_id", ro.SessionID,
	)
	return nil
}

// buildOrder assembles the wire order. The return address is parsed from
// configuration on every call, never cached.
func (s *Submitter) buildOrder(ro *orders.ResolvedOrder) (Order, error) {
	returnAddr, err := models.ParseReturnAddress(s.cfg.ReturnAddress)
	if err != nil {
		return Order{}, fmt.Errorf("build order: %w", err)
	}

	return Order{
		OrderReferenceID:    ro.SessionID,
		CustomerReferenceID: ro.CustomerRef,
		Currency:            s.cfg.Currency,
		Items: []Item{
			{
				ItemReferenceID: ro.SessionID,
				ProductUID:      s.cfg.ProductUID,
				Files: []File{
					{Type: "default", URL: ro.Product.FulfillmentImage()},
				},
				Quantity: 1,
			},
		},
		ShippingAddress: ShippingAddress{
			Name:         ro.Contact.Name,
			AddressLine1: ro.Contact.Address.Line1,
			AddressLine2: ro.Contact.Address.Line2,
			City:         ro.Contact.Address.City,
			State:        ro.Contact.Address.State,
			PostalCode:   ro.Contact.Address.PostalCode,
			Country:      ro.Contact.Address.Country,
			Phone:        ro.Contact.Phone,
			Email:        ro.Contact.Email,
		},
		ReturnAddress: returnAddr,
	}, nil
}
