package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinostore/backend/internal/audit"
	"github.com/dinostore/backend/internal/config"
	"github.com/dinostore/backend/internal/middleware"
	"github.com/dinostore/backend/internal/payments"
	"github.com/dinostore/backend/internal/services"
)

const playerExternalID = "76561197960287930"

type fakeProvider struct {
	requests []payments.CheckoutRequest
	err      error
}

func (f *fakeProvider) CreateCheckoutSession(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &payments.CheckoutSession{ID: "cs_test_a1B2c3", RedirectURL: "https://checkout.stripe.com/c/pay/cs_test_a1B2c3"}, nil
}

func (f *fakeProvider) ParseWebhook([]byte, string) (*payments.Event, error) {
	return nil, payments.ErrSignatureInvalid
}

// signedIn stands in for the session middleware.
func signedIn(externalID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if externalID != "" {
				r = r.WithContext(middleware.WithExternalID(r.Context(), externalID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newStoreRouter(t *testing.T, provider payments.Provider, externalID string) (http.Handler, sqlmock.Sqlmock) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sink, _ := test.NewNullLogger()
	catalog := services.NewCatalogService(db)
	players := services.NewPlayerService(db)
	ledger := services.NewCoinLedgerService(db, services.NewBalanceLedger(db))
	cfg := &config.CheckoutConfig{Currency: "usd", SuccessPath: "/coins/success", CancelPath: "/coins/cancel", PendingTTL: 48 * time.Hour}
	checkout := services.NewCheckoutService(catalog, players, ledger, provider, audit.NewLoggerWithSink(sink), cfg, "https://store.example")
	handler := NewStoreHandler(catalog, players, ledger, checkout, services.NewQRService())

	r := chi.NewRouter()
	r.Use(signedIn(externalID))
	r.Get("/api/v1/packages", handler.ListPackages)
	r.Get("/api/v1/packages/{id}", handler.GetPackage)
	r.Get("/api/v1/dinos", handler.ListDinos)
	r.Get("/api/v1/me", handler.Me)
	r.Get("/api/v1/me/ledger", handler.MyLedger)
	r.Post("/api/v1/coins/checkout", handler.Checkout)
	r.Post("/api/v1/coins/buy/{packageId}", handler.BuyPackage)
	r.Get("/coins/success", handler.CheckoutSuccess)
	r.Get("/coins/cancel", handler.CheckoutCancel)
	return r, dbMock
}

func playerRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "external_id", "display_name", "avatar_url", "coin_balance", "created_at", "updated_at"}).
		AddRow(7, playerExternalID, "Rex", "", 0, now, now)
}

func packageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "coins_amount", "price_usd"}).AddRow(2, "500 Coins", 500, "4.99")
}

func TestStoreHandler_Catalog(t *testing.T) {
	t.Run("list packages", func(t *testing.T) {
		router, dbMock := newStoreRouter(t, &fakeProvider{}, "")
		dbMock.ExpectQuery("FROM coin_packages ORDER BY").WillReturnRows(packageRows())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/packages", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var packages []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &packages))
		require.Len(t, packages, 1)
		assert.Equal(t, "500 Coins", packages[0]["name"])
	})

	t.Run("bad package id", func(t *testing.T) {
		router, _ := newStoreRouter(t, &fakeProvider{}, "")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/packages/abc", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown package", func(t *testing.T) {
		router, dbMock := newStoreRouter(t, &fakeProvider{}, "")
		dbMock.ExpectQuery("FROM coin_packages WHERE id").
			WithArgs(9).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "coins_amount", "price_usd"}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/packages/9", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("dinos carry coin cost", func(t *testing.T) {
		router, dbMock := newStoreRouter(t, &fakeProvider{}, "")
		dbMock.ExpectQuery("FROM dinos").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "gender"}).AddRow(1, "Triceratops", "male"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dinos", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"coinCost":2`)
	})
}

func TestStoreHandler_Checkout(t *testing.T) {
	t.Run("returns redirect and qr code", func(t *testing.T) {
		provider := &fakeProvider{}
		router, dbMock := newStoreRouter(t, provider, playerExternalID)
		dbMock.ExpectQuery("FROM players WHERE external_id").WithArgs(playerExternalID).WillReturnRows(playerRows())
		dbMock.ExpectQuery("FROM coin_packages WHERE id").WithArgs(2).WillReturnRows(packageRows())
		dbMock.ExpectQuery("INSERT INTO ledger_entries").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/coins/checkout", bytes.NewBufferString(`{"packageId":2}`)))

		require.Equal(t, http.StatusOK, w.Code)
		var resp CheckoutResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "cs_test_a1B2c3", resp.SessionID)
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_a1B2c3", resp.RedirectURL)
		assert.NotEmpty(t, resp.LedgerEntryID)
		assert.NotEmpty(t, resp.QRImage)
		require.Len(t, provider.requests, 1)
		assert.Equal(t, int64(499), provider.requests[0].UnitAmount)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("anonymous caller", func(t *testing.T) {
		router, _ := newStoreRouter(t, &fakeProvider{}, "")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/coins/checkout", bytes.NewBufferString(`{"packageId":2}`)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		router, _ := newStoreRouter(t, &fakeProvider{}, playerExternalID)

		for _, body := range []string{`not json`, `{"packageId":0}`, `{"packageId":2,"coins":1000}`, `{"packageId":2}{}`} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/coins/checkout", bytes.NewBufferString(body)))
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})

	t.Run("provider down", func(t *testing.T) {
		router, dbMock := newStoreRouter(t, &fakeProvider{err: payments.ErrProviderUnavailable}, playerExternalID)
		dbMock.ExpectQuery("FROM players WHERE external_id").WillReturnRows(playerRows())
		dbMock.ExpectQuery("FROM coin_packages WHERE id").WillReturnRows(packageRows())

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/coins/checkout", bytes.NewBufferString(`{"packageId":2}`)))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("form buy redirects to provider", func(t *testing.T) {
		router, dbMock := newStoreRouter(t, &fakeProvider{}, playerExternalID)
		dbMock.ExpectQuery("FROM players WHERE external_id").WillReturnRows(playerRows())
		dbMock.ExpectQuery("FROM coin_packages WHERE id").WithArgs(2).WillReturnRows(packageRows())
		dbMock.ExpectQuery("INSERT INTO ledger_entries").
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/coins/buy/2", nil))

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_a1B2c3", w.Header().Get("Location"))
	})
}

func TestStoreHandler_Landing(t *testing.T) {
	t.Run("success needs session id", func(t *testing.T) {
		router, _ := newStoreRouter(t, &fakeProvider{}, "")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coins/success", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("anonymous success is acknowledged", func(t *testing.T) {
		router, _ := newStoreRouter(t, &fakeProvider{}, "")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coins/success?session_id=cs_test_a1B2c3", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"received"`)
	})

	t.Run("signed-in success shows pending entry", func(t *testing.T) {
		router, dbMock := newStoreRouter(t, &fakeProvider{}, playerExternalID)
		dbMock.ExpectQuery("FROM players WHERE external_id").WillReturnRows(playerRows())
		dbMock.ExpectQuery("FROM ledger_entries WHERE session_id").
			WithArgs("cs_test_a1B2c3").
			WillReturnRows(sqlmock.NewRows([]string{"id", "player_id", "package_id", "session_id", "amount_usd",
				"coins_purchased", "status", "created_at", "completed_at"}).
				AddRow("entry-1", 7, 2, "cs_test_a1B2c3", "4.99", 500, "pending", time.Now(), nil))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coins/success?session_id=cs_test_a1B2c3", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"sessionId":"cs_test_a1B2c3","status":"pending","coins":500,"credited":false}`, w.Body.String())
	})

	t.Run("cancel", func(t *testing.T) {
		router, _ := newStoreRouter(t, &fakeProvider{}, "")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coins/cancel", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestStoreHandler_Me(t *testing.T) {
	router, dbMock := newStoreRouter(t, &fakeProvider{}, playerExternalID)
	dbMock.ExpectQuery("FROM players WHERE external_id").WillReturnRows(playerRows())
	dbMock.ExpectQuery("FROM dino_slots").
		WillReturnRows(sqlmock.NewRows([]string{"id", "player_id", "server_name", "active_dino_id",
			"growth", "health", "stamina", "hunger", "thirst"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"externalId":"76561197960287930"`)
	assert.Contains(t, w.Body.String(), `"slots":[]`)
}
