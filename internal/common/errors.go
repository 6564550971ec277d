// Package common defines shared sentinel errors used across the storefront
// client. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrAuthentication is terminal: no usable token and refresh exhausted.
	// It bubbles to the shell, which clears credentials and redirects to login.
	ErrAuthentication = errors.New("authentication required")

	// ErrNetwork covers transport failures. User-retriable.
	ErrNetwork = errors.New("network error")

	// ErrValidation covers client-side constraint violations. Validation
	// failures never reach the server.
	ErrValidation = errors.New("validation error")

	// ErrServer covers non-2xx backend responses for reasons other than auth.
	ErrServer = errors.New("server error")

	// ErrPaymentIntegration covers failures to load or bind the external
	// payment widget.
	ErrPaymentIntegration = errors.New("payment integration error")
)
