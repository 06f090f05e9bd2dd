package models

import "time"

// Product is the durable record backing one sellable print. It is created
// through the intake API and accumulates provider identifiers and fulfillment
// status as the downstream integrations run.
type Product struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Image           string     `json:"image"`
	UpscaledImage   string     `json:"upscaled_image,omitempty"`
	StripeProductID string     `json:"stripe_product_id,omitempty"`
	StripePriceID   string     `json:"stripe_price_id,omitempty"`
	PaymentLink     string     `json:"payment_link,omitempty"`
	LastOrdered     *time.Time `json:"last_ordered,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FulfillmentImage returns the image to print: the upscaled rendition when
// available, the original source otherwise.
func (p Product) FulfillmentImage() string {
	if p.UpscaledImage != "" {
		return p.UpscaledImage
	}
	return p.Image
}

// ProductFields is a partial update applied to a product record. Nil fields
// are left untouched; set fields overwrite unconditionally.
type ProductFields struct {
	StripeProductID *string
	StripePriceID   *string
	PaymentLink     *string
	UpscaledImage   *string
	LastOrdered     *time.Time
}

// IsZero reports whether the update carries no changes
func (f ProductFields) IsZero() bool {
	return f.StripeProductID == nil && f.StripePriceID == nil &&
		f.PaymentLink == nil && f.UpscaledImage == nil && f.LastOrdered == nil
}

// ProductQuery filters product listings
type ProductQuery struct {
	Limit  int
	Offset int
}
