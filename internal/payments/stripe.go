package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

// StripeConfig is injected from the process configuration.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the API host, e.g. for a local twin.
	APIURL  string
	Timeout time.Duration
}

// StripeProvider talks to Stripe Checkout through its own client instead of
// the package-level stripe.Key.
type StripeProvider struct {
	sessions      *session.Client
	webhookSecret string
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     log.StandardLogger(),
	}
	if cfg.APIURL != "" {
		backendConfig.URL = stripe.String(cfg.APIURL)
	}

	return &StripeProvider{
		sessions: &session.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, backendConfig),
			Key: cfg.SecretKey,
		},
		webhookSecret: cfg.WebhookSecret,
	}
}

// CreateCheckoutSession creates a card-only payment-mode session for one line item.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.UnitAmount),
				},
				Quantity: stripe.Int64(quantity),
			},
		},
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	params.Context = ctx

	s, err := p.sessions.New(params)
	if err != nil {
		return nil, classifyStripeError(err)
	}
	if s.ID == "" || s.URL == "" {
		return nil, fmt.Errorf("%w: checkout session response missing id or url", ErrProviderUnavailable)
	}

	return &CheckoutSession{ID: s.ID, RedirectURL: s.URL}, nil
}

// ParseWebhook authenticates the raw body against the signing secret and
// decodes checkout payloads. Any failure wraps ErrSignatureInvalid.
func (p *StripeProvider) ParseWebhook(payload []byte, signatureHeader string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	out := &Event{ID: event.ID, Type: EventType(event.Type)}
	if out.Type != EventCheckoutCompleted && out.Type != EventCheckoutExpired {
		return out, nil
	}

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event %s has no data object", ErrSignatureInvalid, event.ID)
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout session: %v", ErrSignatureInvalid, err)
	}
	if cs.ID == "" {
		return nil, fmt.Errorf("%w: event %s has no session id", ErrSignatureInvalid, event.ID)
	}

	out.SessionID = cs.ID
	out.ClientReferenceID = cs.ClientReferenceID
	out.AmountTotal = cs.AmountTotal
	out.Currency = string(cs.Currency)
	out.PaymentStatus = string(cs.PaymentStatus)
	return out, nil
}

func classifyStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.HTTPStatusCode >= http.StatusInternalServerError || stripeErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return fmt.Errorf("stripe rejected checkout session: %w", err)
	}
	// Transport failures, including client timeouts and context deadlines.
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}
