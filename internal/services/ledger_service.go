package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/models"
)

const ledgerColumns = `id, player_id, package_id, session_id, amount_usd, coins_purchased, status, created_at, completed_at`

// CoinLedgerService stores purchase-intent rows and performs the single
// pending -> completed flip together with the balance credit.
type CoinLedgerService struct {
	db       *sql.DB
	balances *BalanceLedger
}

func NewCoinLedgerService(db *sql.DB, balances *BalanceLedger) *CoinLedgerService {
	return &CoinLedgerService{
		db:       db,
		balances: balances,
	}
}

// CreatePending writes the pending row for a checkout session that the
// provider has already accepted.
func (s *CoinLedgerService) CreatePending(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.CoinsPurchased <= 0 || !entry.AmountUSD.IsPositive() {
		return ErrInvalidAmount
	}

	entry.Status = models.LedgerStatusPending
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ledger_entries (id, player_id, package_id, session_id, amount_usd, coins_purchased, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		entry.ID, entry.PlayerID, entry.PackageID, entry.SessionID, entry.AmountUSD, entry.CoinsPurchased, string(entry.Status),
	).Scan(&entry.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "ledger: CreatePending")
	}

	log.WithFields(log.Fields{
		"entry_id":   entry.ID,
		"session_id": entry.SessionID,
		"player_id":  entry.PlayerID,
	}).Info("[LEDGER] Pending entry created")
	return nil
}

// Complete flips the entry for sessionID to completed and credits its coins in
// one transaction. Expired entries are still accepted: the provider keeps
// retrying a paid session long after the sweep gave up on it. The conditional
// UPDATE is the exclusion point: a concurrent or repeated delivery blocks on
// the row lock, re-reads a completed status and gets no row back, which is
// reported as ErrUnmatchedEvent without touching the balance.
func (s *CoinLedgerService) Complete(ctx context.Context, sessionID string) (*models.LedgerEntry, error) {
	if sessionID == "" {
		return nil, ErrUnmatchedEvent
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "ledger: begin")
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE ledger_entries
		SET status = 'completed', completed_at = NOW()
		WHERE session_id = $1 AND status IN ('pending', 'expired')
		RETURNING `+ledgerColumns, sessionID)

	entry, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return nil, ErrUnmatchedEvent
	}
	if err != nil {
		return nil, errors.Wrap(err, "ledger: complete")
	}

	if _, err := s.balances.CreditTx(ctx, tx, entry.PlayerID, entry.CoinsPurchased); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "ledger: commit")
	}
	return entry, nil
}

// Expire marks the pending entry for sessionID as expired.
func (s *CoinLedgerService) Expire(ctx context.Context, sessionID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET status = 'expired'
		WHERE session_id = $1 AND status = 'pending'`, sessionID)
	if err != nil {
		return 0, errors.Wrap(err, "ledger: Expire")
	}
	return result.RowsAffected()
}

// ExpireStale marks every pending entry created before cutoff as expired.
func (s *CoinLedgerService) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET status = 'expired'
		WHERE status = 'pending' AND created_at < $1`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "ledger: ExpireStale")
	}
	return result.RowsAffected()
}

func (s *CoinLedgerService) GetBySession(ctx context.Context, sessionID string) (*models.LedgerEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE session_id = $1`, sessionID)
	entry, err := scanLedgerEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrNotFound, "ledger entry for session %s", sessionID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "ledger: GetBySession")
	}
	return entry, nil
}

// ListForPlayer returns the player's entries, newest first.
func (s *CoinLedgerService) ListForPlayer(ctx context.Context, playerID int64, limit int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE player_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, playerID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "ledger: ListForPlayer")
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, errors.Wrap(err, "ledger: scan entry")
		}
		entries = append(entries, *entry)
	}
	return entries, errors.Wrap(rows.Err(), "ledger: ListForPlayer")
}

func scanLedgerEntry(row rowScanner) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	var status string
	var completedAt sql.NullTime
	if err := row.Scan(&entry.ID, &entry.PlayerID, &entry.PackageID, &entry.SessionID, &entry.AmountUSD,
		&entry.CoinsPurchased, &status, &entry.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	entry.Status = models.LedgerStatus(status)
	if completedAt.Valid {
		entry.CompletedAt = &completedAt.Time
	}
	return &entry, nil
}
