package catalog

import (
	"context"
	"fmt"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/logger"
	"github.com/printatelier/storefront/internal/metrics"
	"github.com/printatelier/storefront/internal/models"
	"github.com/printatelier/storefront/internal/store"
)

// MetadataProductID is the metadata key linking Stripe objects back to the
// product record. The webhook receiver resolves orders through it.
const MetadataProductID = "productId"

// API is the slice of the payment provider the provisioner needs
type API interface {
	CreateProduct(ctx context.Context, title, image, productID string) (string, error)
	CreatePrice(ctx context.Context, stripeProductID string, amountCents int64) (string, error)
	CreatePaymentLink(ctx context.Context, priceID string) (string, error)
}

// Provisioner creates the sellable side of a product record: a payment
// provider product, a flat price, and a shareable checkout link.
type Provisioner struct {
	api   API
	store store.Store
	cfg   config.PaymentsConfig
}

// NewProvisioner creates a catalog provisioner
func NewProvisioner(api API, st store.Store, cfg config.PaymentsConfig) *Provisioner {
	return &Provisioner{api: api, store: st, cfg: cfg}
}

// HandleProductCreated provisions the payment catalog for a newly inserted
// product and writes the identifiers back to the record. If any provider call
// fails, the product record is deleted so a broken half-provisioned listing
// never becomes purchasable.
func (p *Provisioner) HandleProductCreated(ctx context.Context, product models.Product) error {
	if err := p.provision(ctx, product); err != nil {
		metrics.RecordProviderRequest("stripe", "provision catalog", "error")
		if delErr := p.store.DeleteProduct(ctx, product.ID); delErr != nil {
			logger.Error("Failed to delete product after provisioning failure",
				"product_id", product.ID, "error", delErr)
		}
		return err
	}
	metrics.RecordProviderRequest("stripe", "provision catalog", "success")
	return nil
}

func (p *Provisioner) provision(ctx context.Context, product models.Product) error {
	stripeProductID, err := p.api.CreateProduct(ctx, product.Title, product.Image, product.ID)
	if err != nil {
		return fmt.Errorf("create stripe product: %w", err)
	}

	priceID, err := p.api.CreatePrice(ctx, stripeProductID, p.cfg.FlatPriceCents)
	if err != nil {
		return fmt.Errorf("create stripe price: %w", err)
	}

	linkURL, err := p.api.CreatePaymentLink(ctx, priceID)
	if err != nil {
		return fmt.Errorf("create payment link: %w", err)
	}

	err = p.store.UpdateProductFields(ctx, product.ID, models.ProductFields{
		StripeProductID: &stripeProductID,
		StripePriceID:   &priceID,
		PaymentLink:     &linkURL,
	})
	if err != nil {
		return fmt.Errorf("record catalog ids: %w", err)
	}

	logger.Info("Catalog provisioned",
		"product_id", product.ID,
		"stripe_product_id", stripeProductID,
		"payment_link", linkURL,
	)
	return nil
}
