package storeerr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Crypto errors
	ErrEncryptionFailed = errors.New("encryption failed")
	ErrDecryptionFailed = errors.New("decryption failed")

	// Payload and request errors
	ErrInvalidPayload = errors.New("invalid credential payload")
	ErrInvalidRequest = errors.New("invalid request")

	// Transport errors
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// Binding source errors
	ErrBindingSourceUnavailable = errors.New("binding source unavailable")
	ErrAuthenticationFailed     = errors.New("authentication failed")
)

// TransportError reports a response from the credential store whose status
// code falls outside the 2xx range. The response body is never parsed.
type TransportError struct {
	StatusCode int
	Method     string
	URL        string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unexpected status code: %d (%s %s)", e.StatusCode, e.Method, e.URL)
}

// NotFound reports whether the store answered 404.
func (e *TransportError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func NewTransportError(method, url string, statusCode int) error {
	return &TransportError{StatusCode: statusCode, Method: method, URL: url}
}

func NewEncryptionError(stage Stage, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrEncryptionFailed, stage, err)
}

func NewDecryptionError(stage Stage, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDecryptionFailed, stage, err)
}

func NewMissingFieldError(field string) error {
	return fmt.Errorf("%w: '%s' is required", ErrInvalidConfiguration, field)
}
