package credstore

import (
	"context"
	"errors"

	"github.com/hengadev/credstore/internal/storeerr"
)

var (
	// ErrInvalidConfiguration reports a binding with missing or unusable fields.
	// It is raised before any crypto or network work.
	ErrInvalidConfiguration = storeerr.ErrInvalidConfiguration

	// ErrEncryptionFailed reports unusable public key material or a failure
	// sealing a request. It is raised before the request is sent.
	ErrEncryptionFailed = storeerr.ErrEncryptionFailed

	// ErrDecryptionFailed reports a malformed envelope, a key mismatch or a
	// failed authentication tag.
	ErrDecryptionFailed = storeerr.ErrDecryptionFailed

	// ErrInvalidPayload reports a credential that is not valid JSON.
	ErrInvalidPayload = storeerr.ErrInvalidPayload

	// ErrInvalidRequest reports an empty namespace, type or name.
	ErrInvalidRequest = storeerr.ErrInvalidRequest

	// ErrStoreUnavailable reports a request that never got a response.
	ErrStoreUnavailable = storeerr.ErrStoreUnavailable

	// ErrBindingSourceUnavailable reports a Vault or Secrets Manager lookup
	// that failed or found no binding.
	ErrBindingSourceUnavailable = storeerr.ErrBindingSourceUnavailable

	// ErrAuthenticationFailed reports a rejected login against a binding source.
	ErrAuthenticationFailed = storeerr.ErrAuthenticationFailed
)

// TransportError is returned when the store answers outside 2xx.
// Use errors.As to read the status code.
type TransportError = storeerr.TransportError

// StatusCode returns the store's HTTP status carried by err, or 0 when err
// did not come from a store response.
func StatusCode(err error) int {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.StatusCode
	}
	return 0
}

// IsNotFound returns true if the store reported the credential absent.
func IsNotFound(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr) && transportErr.NotFound()
}

// IsTransportError returns true if the failure happened at the network layer,
// either a non-2xx status or no response at all.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr) ||
		errors.Is(err, ErrStoreUnavailable)
}

// IsCryptoError returns true if the failure happened while sealing or opening an envelope.
func IsCryptoError(err error) bool {
	return errors.Is(err, ErrEncryptionFailed) ||
		errors.Is(err, ErrDecryptionFailed)
}

// IsConfigurationError returns true if the error represents a configuration problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsBindingSourceError returns true if loading the binding from Vault or
// AWS Secrets Manager failed.
func IsBindingSourceError(err error) bool {
	return errors.Is(err, ErrBindingSourceUnavailable) ||
		errors.Is(err, ErrAuthenticationFailed)
}

// IsRetryableError returns true if the error represents a transient failure.
// The client never retries; this only informs callers that do.
func IsRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return true
	}
	code := StatusCode(err)
	return code == 429 || code == 502 || code == 503 || code == 504
}
