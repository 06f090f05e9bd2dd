package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/printatelier/storefront/config"
	"github.com/printatelier/storefront/internal/models"
	"github.com/printatelier/storefront/internal/store"
)

type fakeAPI struct {
	productErr error
	priceErr   error
	linkErr    error

	gotTitle     string
	gotImage     string
	gotProductID string
	gotCents     int64
	gotPriceID   string
}

func (f *fakeAPI) CreateProduct(ctx context.Context, title, image, productID string) (string, error) {
	f.gotTitle, f.gotImage, f.gotProductID = title, image, productID
	if f.productErr != nil {
		return "", f.productErr
	}
	return "stripe_prod_123", nil
}

func (f *fakeAPI) CreatePrice(ctx context.Context, stripeProductID string, amountCents int64) (string, error) {
	f.gotCents = amountCents
	if f.priceErr != nil {
		return "", f.priceErr
	}
	return "price_123", nil
}

func (f *fakeAPI) CreatePaymentLink(ctx context.Context, priceID string) (string, error) {
	f.gotPriceID = priceID
	if f.linkErr != nil {
		return "", f.linkErr
	}
	return "https://buy.stripe.com/test_abc", nil
}

func seedProduct(t *testing.T, st store.Store) models.Product {
	t.Helper()
	p := models.Product{ID: "prod-1", Title: "Sunset", Image: "https://img/sunset.png"}
	if err := st.CreateProduct(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProvisionSuccess(t *testing.T) {
	st := store.NewInMemoryStore()
	p := seedProduct(t, st)
	api := &fakeAPI{}
	prov := NewProvisioner(api, st, config.PaymentsConfig{FlatPriceCents: 4500})

	if err := prov.HandleProductCreated(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if api.gotTitle != "Sunset" || api.gotImage != "https://img/sunset.png" || api.gotProductID != "prod-1" {
		t.Errorf("stripe product created with wrong args: %+v", api)
	}
	if api.gotCents != 4500 {
		t.Errorf("price cents = %d", api.gotCents)
	}
	if api.gotPriceID != "price_123" {
		t.Errorf("payment link built from price %q", api.gotPriceID)
	}

	got, _ := st.GetProduct(context.Background(), "prod-1")
	if got == nil {
		t.Fatal("product deleted on success path")
	}
	if got.StripeProductID != "stripe_prod_123" || got.StripePriceID != "price_123" {
		t.Errorf("catalog ids not recorded: %+v", got)
	}
	if got.PaymentLink != "https://buy.stripe.com/test_abc" {
		t.Errorf("payment link not recorded: %q", got.PaymentLink)
	}
}

func TestProvisionFailureDeletesRecord(t *testing.T) {
	cases := []struct {
		name string
		api  *fakeAPI
	}{
		{"product creation fails", &fakeAPI{productErr: errors.New("stripe down")}},
		{"price creation fails", &fakeAPI{priceErr: errors.New("stripe down")}},
		{"payment link fails", &fakeAPI{linkErr: errors.New("stripe down")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := store.NewInMemoryStore()
			p := seedProduct(t, st)
			prov := NewProvisioner(tc.api, st, config.PaymentsConfig{FlatPriceCents: 4500})

			if err := prov.HandleProductCreated(context.Background(), p); err == nil {
				t.Fatal("expected error")
			}

			got, _ := st.GetProduct(context.Background(), "prod-1")
			if got != nil {
				t.Fatalf("expected record deleted after provisioning failure, got %+v", got)
			}
		})
	}
}
