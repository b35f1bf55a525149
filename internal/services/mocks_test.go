package services

import (
	"context"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"

	"github.com/dinostore/backend/internal/payments"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.CheckoutSession), args.Error(1)
}

func (m *MockProvider) ParseWebhook(payload []byte, signatureHeader string) (*payments.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Event), args.Error(1)
}

var (
	ledgerRowColumns = []string{"id", "player_id", "package_id", "session_id", "amount_usd",
		"coins_purchased", "status", "created_at", "completed_at"}
	playerRowColumns = []string{"id", "external_id", "display_name", "avatar_url", "coin_balance",
		"created_at", "updated_at"}
)

const (
	testEntryID    = "0b7c8f9e-2f4a-4c55-9d7e-1f9f0c3a6b21"
	testSessionID  = "cs_test_a1B2c3"
	testExternalID = "76561197960287930"
)

func ledgerRow(status string, completedAt any) *sqlmock.Rows {
	return sqlmock.NewRows(ledgerRowColumns).
		AddRow(testEntryID, 7, 2, testSessionID, "4.99", 500, status, time.Now().Add(-time.Minute), completedAt)
}

func playerRow(balance int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(playerRowColumns).
		AddRow(7, testExternalID, "Rex", "https://avatars.example/rex.jpg", balance, now, now)
}
