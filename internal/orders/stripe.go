package orders

import (
	"context"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
)

// StripeSessionAPI implements SessionAPI against the live Stripe endpoints
type StripeSessionAPI struct{}

// NewStripeSessionAPI returns the live session API. The global Stripe key is
// configured once by the catalog package at startup.
func NewStripeSessionAPI() *StripeSessionAPI {
	return &StripeSessionAPI{}
}

// GetSessionWithLineItems re-fetches a checkout session with the sellable
// item's product record expanded
func (a *StripeSessionAPI) GetSessionWithLineItems(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items.data.price.product")
	return session.Get(id, params)
}

// GetCustomer fetches a customer by reference
func (a *StripeSessionAPI) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	return customer.Get(id, params)
}
