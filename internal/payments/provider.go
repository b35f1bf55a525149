// Package payments holds the contract the storefront keeps with its payment
// provider: create a hosted checkout session, and authenticate the provider's
// webhook notifications.
package payments

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable covers timeouts, transport failures and 5xx answers.
	ErrProviderUnavailable = errors.New("payment provider unavailable")
	// ErrSignatureInvalid covers bad signatures and payloads that cannot be parsed.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
)

// EventType is the provider's event name.
type EventType string

const (
	EventCheckoutCompleted EventType = "checkout.session.completed"
	EventCheckoutExpired   EventType = "checkout.session.expired"
)

// PaymentStatusPaid is the checkout session payment_status once funds are captured.
const PaymentStatusPaid = "paid"

// CheckoutRequest describes one single-item hosted checkout.
type CheckoutRequest struct {
	Currency          string
	ProductName       string
	UnitAmount        int64 // minor units
	Quantity          int64
	SuccessURL        string
	CancelURL         string
	CustomerEmail     string
	ClientReferenceID string
	IdempotencyKey    string
	Metadata          map[string]string
}

// CheckoutSession is what the provider hands back.
type CheckoutSession struct {
	ID          string
	RedirectURL string
}

// Event is a verified webhook notification. Checkout fields are only set for
// checkout.session.* events.
type Event struct {
	ID                string
	Type              EventType
	SessionID         string
	ClientReferenceID string
	AmountTotal       int64
	Currency          string
	PaymentStatus     string
}

// Provider is implemented by StripeProvider and by test fakes.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ParseWebhook(payload []byte, signatureHeader string) (*Event, error)
}
