package catalog

import (
	"context"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentlink"
	"github.com/stripe/stripe-go/v76/price"
	"github.com/stripe/stripe-go/v76/product"

	"github.com/printatelier/storefront/config"
)

// StripeAPI implements API against the live Stripe endpoints
type StripeAPI struct {
	cfg config.PaymentsConfig
}

// NewStripeAPI configures the global Stripe key and returns the API
func NewStripeAPI(cfg config.PaymentsConfig) *StripeAPI {
	stripe.Key = cfg.SecretKey
	return &StripeAPI{cfg: cfg}
}

// CreateProduct creates the Stripe product carrying the record id in metadata
func (a *StripeAPI) CreateProduct(ctx context.Context, title, image, productID string) (string, error) {
	params := &stripe.ProductParams{
		Name:   stripe.String(title),
		Images: stripe.StringSlice([]string{image}),
	}
	params.Context = ctx
	params.AddMetadata(MetadataProductID, productID)

	prod, err := product.New(params)
	if err != nil {
		return "", err
	}
	return prod.ID, nil
}

// CreatePrice creates the flat, tax-exclusive USD price
func (a *StripeAPI) CreatePrice(ctx context.Context, stripeProductID string, amountCents int64) (string, error) {
	params := &stripe.PriceParams{
		Product:     stripe.String(stripeProductID),
		UnitAmount:  stripe.Int64(amountCents),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		TaxBehavior: stripe.String(string(stripe.PriceTaxBehaviorExclusive)),
	}
	params.Context = ctx

	pr, err := price.New(params)
	if err != nil {
		return "", err
	}
	return pr.ID, nil
}

// CreatePaymentLink creates the single-item checkout link with automatic tax,
// phone collection, and the flat shipping rate
func (a *StripeAPI) CreatePaymentLink(ctx context.Context, priceID string) (string, error) {
	params := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		AutomaticTax: &stripe.PaymentLinkAutomaticTaxParams{
			Enabled: stripe.Bool(true),
		},
		PhoneNumberCollection: &stripe.PaymentLinkPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		ShippingAddressCollection: &stripe.PaymentLinkShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{a.cfg.AllowedCountry}),
		},
	}
	params.Context = ctx
	if a.cfg.FlatShippingRate != "" {
		params.ShippingOptions = []*stripe.PaymentLinkShippingOptionParams{
			{ShippingRate: stripe.String(a.cfg.FlatShippingRate)},
		}
	}

	link, err := paymentlink.New(params)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}
