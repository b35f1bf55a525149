package services

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// BalanceLedger is the only writer of players.coin_balance. There is no debit
// operation: spending coins on in-game items is handled by the game server.
type BalanceLedger struct {
	db *sql.DB
}

func NewBalanceLedger(db *sql.DB) *BalanceLedger {
	return &BalanceLedger{db: db}
}

// Credit adds amount coins in its own transaction and returns the new balance.
func (b *BalanceLedger) Credit(ctx context.Context, playerID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "balance: begin")
	}
	defer tx.Rollback()

	balance, err := b.CreditTx(ctx, tx, playerID, amount)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "balance: commit")
	}
	return balance, nil
}

// CreditTx adds amount coins inside the caller's transaction. The single
// UPDATE takes the player's row lock, so concurrent credits serialize.
func (b *BalanceLedger) CreditTx(ctx context.Context, tx *sql.Tx, playerID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	var balance int64
	err := tx.QueryRowContext(ctx, `
		UPDATE players
		SET coin_balance = coin_balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING coin_balance`, amount, playerID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, errors.Wrapf(ErrNotFound, "player %d", playerID)
	}
	if err != nil {
		return 0, errors.Wrap(err, "balance: credit")
	}

	log.WithFields(log.Fields{"player_id": playerID, "amount": amount, "balance": balance}).Info("[LEDGER] Coins credited")
	return balance, nil
}

// Balance reads the current coin balance.
func (b *BalanceLedger) Balance(ctx context.Context, playerID int64) (int64, error) {
	var balance int64
	err := b.db.QueryRowContext(ctx, `SELECT coin_balance FROM players WHERE id = $1`, playerID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, errors.Wrapf(ErrNotFound, "player %d", playerID)
	}
	if err != nil {
		return 0, errors.Wrap(err, "balance: read")
	}
	return balance, nil
}
