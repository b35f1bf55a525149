package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/audit"
	"github.com/dinostore/backend/internal/config"
	"github.com/dinostore/backend/internal/models"
	"github.com/dinostore/backend/internal/payments"
)

const ledgerWriteTimeout = 10 * time.Second

// CheckoutResult is returned to the caller after a successful initiation.
type CheckoutResult struct {
	SessionID     string `json:"sessionId"`
	RedirectURL   string `json:"redirectUrl"`
	LedgerEntryID string `json:"ledgerEntryId"`
}

// CheckoutService starts coin purchases: provider session first, then the
// pending ledger row, then the redirect target.
type CheckoutService struct {
	catalog  *CatalogService
	players  *PlayerService
	ledger   *CoinLedgerService
	provider payments.Provider
	limiter  CheckoutLimiter
	audit    *audit.Logger
	config   *config.CheckoutConfig
	baseURL  string
}

func NewCheckoutService(
	catalog *CatalogService,
	players *PlayerService,
	ledger *CoinLedgerService,
	provider payments.Provider,
	auditLogger *audit.Logger,
	cfg *config.CheckoutConfig,
	baseURL string,
) *CheckoutService {
	return &CheckoutService{
		catalog:  catalog,
		players:  players,
		ledger:   ledger,
		provider: provider,
		audit:    auditLogger,
		config:   cfg,
		baseURL:  baseURL,
	}
}

// WithLimiter enables per-player checkout rate limiting.
func (s *CheckoutService) WithLimiter(limiter CheckoutLimiter) *CheckoutService {
	s.limiter = limiter
	return s
}

// Initiate creates a provider session for packageID on behalf of externalID.
// No ledger row is written unless the provider accepted the session.
func (s *CheckoutService) Initiate(ctx context.Context, externalID string, packageID int64) (*CheckoutResult, error) {
	if externalID == "" {
		return nil, ErrUnauthenticated
	}

	player, err := s.players.GetByExternalID(ctx, externalID)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: no player for session", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	pkg, err := s.catalog.GetPackage(ctx, packageID)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, externalID); err != nil {
			log.WithError(err).WithField("player_id", player.ID).Warn("[CHECKOUT] Checkout rejected")
			return nil, err
		}
	}

	entryID := uuid.NewString()
	session, err := s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		Currency:          s.config.Currency,
		ProductName:       fmt.Sprintf("%s - %d Coins", pkg.Name, pkg.CoinsAmount),
		UnitAmount:        pkg.MinorUnits(),
		Quantity:          1,
		SuccessURL:        s.baseURL + s.config.SuccessPath + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         s.baseURL + s.config.CancelPath,
		ClientReferenceID: entryID,
		IdempotencyKey:    entryID,
		Metadata: map[string]string{
			"ledger_entry_id": entryID,
			"player_id":       fmt.Sprint(player.ID),
			"package_id":      fmt.Sprint(pkg.ID),
		},
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"player_id": player.ID, "package_id": pkg.ID}).
			Error("[CHECKOUT] Provider session creation failed")
		return nil, err
	}

	entry := &models.LedgerEntry{
		ID:             entryID,
		PlayerID:       player.ID,
		PackageID:      pkg.ID,
		SessionID:      session.ID,
		AmountUSD:      pkg.PriceUSD,
		CoinsPurchased: pkg.CoinsAmount,
	}

	// The provider session now exists; finish the ledger write even if the
	// caller has gone away, or a completed payment could never be matched.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerWriteTimeout)
	defer cancel()
	if err := s.ledger.CreatePending(writeCtx, entry); err != nil {
		s.audit.LogError(entryID, session.ID, err)
		return nil, fmt.Errorf("record pending purchase: %w", err)
	}

	s.audit.LogCheckout(entryID, session.ID, player.ID, entry.CoinsPurchased, entry.AmountUSD.StringFixed(2))
	return &CheckoutResult{
		SessionID:     session.ID,
		RedirectURL:   session.RedirectURL,
		LedgerEntryID: entryID,
	}, nil
}

// Status reports a caller's own entry for the success landing page.
func (s *CheckoutService) Status(ctx context.Context, externalID, sessionID string) (*models.LedgerEntry, error) {
	player, err := s.players.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	entry, err := s.ledger.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if entry.PlayerID != player.ID {
		return nil, fmt.Errorf("%w: ledger entry for session %s", ErrNotFound, sessionID)
	}
	return entry, nil
}
