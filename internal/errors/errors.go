package errors

import (
	"errors"
	"fmt"
)

// Application-specific errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNoProductID    = errors.New("no productId")
	ErrNoProduct      = errors.New("no product")
	ErrNoCustomer     = errors.New("no customer/address")
	ErrUpscaleFailed  = errors.New("upscale job failed")
	ErrUpscaleTimeout = errors.New("upscale job timed out")
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// WebhookError is returned when an inbound payment event cannot be
// verified or processed. Message is safe to echo back to the caller.
type WebhookError struct {
	Message string
	Err     error
}

func (e WebhookError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webhook error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("webhook error: %s", e.Message)
}

func (e WebhookError) Unwrap() error {
	return e.Err
}

// ProviderError represents a failed call to an external provider
type ProviderError struct {
	Provider   string
	Operation  string
	StatusCode int
	Err        error
}

func (e ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s error during %s: status %d", e.Provider, e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s error during %s: %v", e.Provider, e.Operation, e.Err)
}

func (e ProviderError) Unwrap() error {
	return e.Err
}

// DatabaseError represents a database-related error
type DatabaseError struct {
	Operation string
	Err       error
}

func (e DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

func (e DatabaseError) Unwrap() error {
	return e.Err
}
