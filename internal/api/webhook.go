package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	apperrors "github.com/printatelier/storefront/internal/errors"
	"github.com/printatelier/storefront/internal/logger"
	"github.com/printatelier/storefront/internal/metrics"
)

const checkoutSessionCompleted = "checkout.session.completed"

// maxWebhookBody bounds the raw payload read; provider events are small
const maxWebhookBody = 1 << 20

// paymentWebhookHandler handles POST /payments/webhook. The payload is
// verified against the endpoint signing secret before any decoding; every
// failure path responds 400 with a short diagnostic and leaves no side
// effects. The provider retries on non-2xx.
func (h *Handler) paymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		metrics.RecordWebhookEvent("unknown", "read_error")
		h.writeWebhookError(w, "read failure")
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logger.WithContext(ctx).Warn("Webhook signature verification failed", "error", err)
		metrics.RecordWebhookEvent("unknown", "invalid_signature")
		h.writeWebhookError(w, "signature verification failed")
		return
	}

	if event.Type != checkoutSessionCompleted {
		metrics.RecordWebhookEvent(string(event.Type), "ignored")
		h.writeWebhookError(w, fmt.Sprintf("unhandled event type %s", event.Type))
		return
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		logger.WithContext(ctx).Error("Failed to decode checkout session", "error", err, "event_id", event.ID)
		metrics.RecordWebhookEvent(string(event.Type), "decode_error")
		h.writeWebhookError(w, "malformed session payload")
		return
	}

	resolved, err := h.resolver.Resolve(ctx, &sess)
	if err != nil {
		logger.WithContext(ctx).Error("Order resolution failed",
			"error", err, "session_id", sess.ID, "event_id", event.ID)
		metrics.RecordWebhookEvent(string(event.Type), "resolve_failed")
		h.writeWebhookError(w, resolveFailureMessage(err))
		return
	}

	if err := h.submitter.Submit(ctx, resolved); err != nil {
		logger.WithContext(ctx).Error("Fulfillment submission failed",
			"error", err, "session_id", resolved.SessionID, "product_id", resolved.Product.ID)
		metrics.RecordWebhookEvent(string(event.Type), "fulfillment_failed")
		h.writeWebhookError(w, "fulfillment failed")
		return
	}

	logger.WithContext(ctx).Info("Order fulfilled",
		"session_id", resolved.SessionID, "product_id", resolved.Product.ID)
	metrics.RecordWebhookEvent(string(event.Type), "fulfilled")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Webhook Success"))
}

// resolveFailureMessage maps resolver sentinels onto short diagnostics the
// provider dashboard surfaces verbatim
func resolveFailureMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNoProductID):
		return "no productId in session"
	case errors.Is(err, apperrors.ErrNoProduct):
		return "no product record for session"
	case errors.Is(err, apperrors.ErrNoCustomer):
		return "no customer or shipping address"
	default:
		return "order resolution failed"
	}
}

func (h *Handler) writeWebhookError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	fmt.Fprintf(w, "Webhook Error: %s", message)
}
