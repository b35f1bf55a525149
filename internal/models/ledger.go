package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerStatus is the lifecycle state of a coin purchase.
type LedgerStatus string

const (
	LedgerStatusPending   LedgerStatus = "pending"
	LedgerStatusCompleted LedgerStatus = "completed"
	LedgerStatusExpired   LedgerStatus = "expired"
)

// LedgerEntry records one checkout attempt. Amount and coins are snapshots
// of the package at checkout time.
type LedgerEntry struct {
	ID             string          `json:"id" db:"id"`
	PlayerID       int64           `json:"playerId" db:"player_id"`
	PackageID      int64           `json:"packageId" db:"package_id"`
	SessionID      string          `json:"sessionId" db:"session_id"`
	AmountUSD      decimal.Decimal `json:"amountUsd" db:"amount_usd" swaggertype:"string" example:"4.99"`
	CoinsPurchased int64           `json:"coinsPurchased" db:"coins_purchased" example:"500"`
	Status         LedgerStatus    `json:"status" db:"status" example:"pending"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	CompletedAt    *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
}
