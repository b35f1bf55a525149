package services

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/audit"
	"github.com/dinostore/backend/internal/models"
	"github.com/dinostore/backend/internal/payments"
)

// Outcome describes what a delivered webhook did.
type Outcome string

const (
	OutcomeCredited  Outcome = "credited"
	OutcomeUnmatched Outcome = "unmatched"
	OutcomeExpired   Outcome = "expired"
	OutcomeIgnored   Outcome = "ignored"
)

// WebhookService reconciles verified provider events against the ledger.
type WebhookService struct {
	provider payments.Provider
	ledger   *CoinLedgerService
	audit    *audit.Logger
	currency string
}

func NewWebhookService(provider payments.Provider, ledger *CoinLedgerService, auditLogger *audit.Logger) *WebhookService {
	return &WebhookService{
		provider: provider,
		ledger:   ledger,
		audit:    auditLogger,
	}
}

// WithCurrency sets the currency sessions are created in. Completions reported
// in another currency are credited but audited.
func (s *WebhookService) WithCurrency(currency string) *WebhookService {
	s.currency = strings.ToLower(currency)
	return s
}

// Handle verifies payload and applies it. An error means the provider should
// retry (storage failure) or the request was not authentic
// (ErrSignatureInvalid); in both cases nothing was changed.
func (s *WebhookService) Handle(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		log.WithError(err).Warn("[WEBHOOK] Rejected unverifiable event")
		return "", err
	}

	logger := log.WithFields(log.Fields{"event_id": event.ID, "type": event.Type, "session_id": event.SessionID})

	switch event.Type {
	case payments.EventCheckoutCompleted:
		return s.reconcile(ctx, event, logger)

	case payments.EventCheckoutExpired:
		n, err := s.ledger.Expire(ctx, event.SessionID)
		if err != nil {
			s.audit.LogError("", event.SessionID, err)
			return "", err
		}
		if n > 0 {
			s.audit.LogExpired(event.SessionID, n)
		}
		logger.WithField("entries", n).Info("[WEBHOOK] Checkout session expired")
		return OutcomeExpired, nil

	default:
		logger.Debug("[WEBHOOK] Ignoring event type")
		return OutcomeIgnored, nil
	}
}

func (s *WebhookService) reconcile(ctx context.Context, event *payments.Event, logger *log.Entry) (Outcome, error) {
	logger = logger.WithFields(log.Fields{
		"amount_total":        models.FromMinorUnits(event.AmountTotal).StringFixed(2),
		"client_reference_id": event.ClientReferenceID,
	})

	// Delayed payment methods complete the session before funds arrive.
	if event.PaymentStatus != "" && event.PaymentStatus != payments.PaymentStatusPaid {
		logger.WithField("payment_status", event.PaymentStatus).Warn("[WEBHOOK] Completed checkout is not paid, skipping credit")
		return OutcomeIgnored, nil
	}

	entry, err := s.ledger.Complete(ctx, event.SessionID)
	if errors.Is(err, ErrUnmatchedEvent) {
		// Already reconciled or never recorded. Retrying cannot help.
		logger.Error("[WEBHOOK] No open ledger entry for completed checkout")
		s.audit.LogUnmatched(event.ID, event.SessionID, event.AmountTotal)
		return OutcomeUnmatched, nil
	}
	if err != nil {
		logger.WithError(err).Error("[WEBHOOK] Reconciliation failed")
		s.audit.LogError("", event.SessionID, err)
		return "", err
	}

	if expected := models.ToMinorUnits(entry.AmountUSD); event.AmountTotal != expected {
		s.audit.LogAmountMismatch(entry.ID, entry.SessionID, expected, event.AmountTotal)
	}
	if reported := strings.ToLower(event.Currency); s.currency != "" && reported != "" && reported != s.currency {
		s.audit.LogCurrencyMismatch(entry.ID, entry.SessionID, s.currency, reported)
	}
	if event.ClientReferenceID != "" && event.ClientReferenceID != entry.ID {
		logger.WithField("entry_id", entry.ID).Warn("[WEBHOOK] Client reference does not match ledger entry")
	}
	s.audit.LogCredit(entry.ID, entry.SessionID, entry.PlayerID, entry.CoinsPurchased)
	logger.WithFields(log.Fields{"entry_id": entry.ID, "coins": entry.CoinsPurchased}).Info("[WEBHOOK] Checkout reconciled")
	return OutcomeCredited, nil
}
