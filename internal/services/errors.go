package services

import (
	"errors"
	"net/http"

	"github.com/dinostore/backend/internal/payments"
)

// Identity errors
var (
	ErrInvalidAssertion  = errors.New("invalid identity assertion")
	ErrMalformedIdentity = errors.New("malformed claimed identity")
	ErrUnauthenticated   = errors.New("unauthenticated")
	// ErrIdentityUnavailable covers Steam timeouts, transport failures and 5xx answers.
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
)

// Store and ledger errors
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrRateLimited   = errors.New("too many checkout attempts")
	// ErrUnmatchedEvent is an observability outcome, never an HTTP failure.
	ErrUnmatchedEvent = errors.New("no pending ledger entry matches event")
)

// Provider errors are defined next to the provider adapter and re-exported here.
var (
	ErrProviderUnavailable = payments.ErrProviderUnavailable
	ErrSignatureInvalid    = payments.ErrSignatureInvalid
)

// StatusFor maps the error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil, errors.Is(err, ErrUnmatchedEvent):
		return http.StatusOK
	case errors.Is(err, ErrInvalidAssertion),
		errors.Is(err, ErrMalformedIdentity),
		errors.Is(err, ErrSignatureInvalid),
		errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrProviderUnavailable), errors.Is(err, ErrIdentityUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
