package errors

import (
	"errors"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "image",
		Message: "must be a URL",
	}

	expected := "validation error on field 'image': must be a URL"
	if err.Error() != expected {
		t.Errorf("Expected %s, got %s", expected, err.Error())
	}
}

func TestWebhookError(t *testing.T) {
	inner := errors.New("bad signature")
	err := WebhookError{Message: "invalid signature", Err: inner}

	if !errors.Is(err, inner) {
		t.Errorf("Expected WebhookError to unwrap to inner error")
	}
	if err.Error() != "webhook error: invalid signature: bad signature" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	plain := WebhookError{Message: "no productId"}
	if plain.Error() != "webhook error: no productId" {
		t.Errorf("Unexpected message: %s", plain.Error())
	}
}

func TestProviderError(t *testing.T) {
	withStatus := ProviderError{Provider: "gelato", Operation: "create order", StatusCode: 500}
	if withStatus.Error() != "gelato error during create order: status 500" {
		t.Errorf("Unexpected message: %s", withStatus.Error())
	}

	inner := errors.New("connection refused")
	withErr := ProviderError{Provider: "replicate", Operation: "submit", Err: inner}
	if !errors.Is(withErr, inner) {
		t.Errorf("Expected ProviderError to unwrap to inner error")
	}
}

func TestDatabaseError(t *testing.T) {
	inner := errors.New("deadlock")
	err := DatabaseError{Operation: "update product", Err: inner}
	if !errors.Is(err, inner) {
		t.Errorf("Expected DatabaseError to unwrap to inner error")
	}
	if err.Error() != "database error during update product: deadlock" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}
