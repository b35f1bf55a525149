package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/middleware"
	"github.com/dinostore/backend/internal/models"
	"github.com/dinostore/backend/internal/services"
)

type StoreHandler struct {
	catalog   *services.CatalogService
	players   *services.PlayerService
	ledger    *services.CoinLedgerService
	checkout  *services.CheckoutService
	qr        *services.QRService
	validator *services.ValidationHelper
}

func NewStoreHandler(
	catalog *services.CatalogService,
	players *services.PlayerService,
	ledger *services.CoinLedgerService,
	checkout *services.CheckoutService,
	qr *services.QRService,
) *StoreHandler {
	return &StoreHandler{
		catalog:   catalog,
		players:   players,
		ledger:    ledger,
		checkout:  checkout,
		qr:        qr,
		validator: services.NewValidationHelper(),
	}
}

// CheckoutRequest is the body of POST /coins/checkout.
type CheckoutRequest struct {
	PackageID int64 `json:"packageId" validate:"required,gt=0" example:"2"`
}

// CheckoutResponse carries the provider redirect and a QR code of it.
type CheckoutResponse struct {
	services.CheckoutResult
	QRImage string `json:"qrImage,omitempty"`
}

// ListPackages lists coin packages
// @Summary List coin packages
// @Tags Store
// @Produce json
// @Success 200 {array} models.CoinPackage
// @Failure 500 {object} services.ErrorResponse
// @Router /packages [get]
func (h *StoreHandler) ListPackages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.catalog.ListPackages(r.Context())
	if err != nil {
		log.WithError(err).Error("[STORE] Failed to list packages")
		services.SendError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, packages)
}

// GetPackage returns one coin package
// @Summary Get coin package
// @Tags Store
// @Produce json
// @Param id path int true "Package ID"
// @Success 200 {object} models.CoinPackage
// @Failure 400 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /packages/{id} [get]
func (h *StoreHandler) GetPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := packageIDParam(w, r)
	if !ok {
		return
	}

	pkg, err := h.catalog.GetPackage(r.Context(), id)
	if err != nil {
		services.SendError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, pkg)
}

// ListDinos lists the dino catalog
// @Summary List dinos
// @Tags Store
// @Produce json
// @Success 200 {array} models.Dino
// @Failure 500 {object} services.ErrorResponse
// @Router /dinos [get]
func (h *StoreHandler) ListDinos(w http.ResponseWriter, r *http.Request) {
	dinos, err := h.catalog.ListDinos(r.Context())
	if err != nil {
		log.WithError(err).Error("[STORE] Failed to list dinos")
		services.SendError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, dinos)
}

// Me returns the signed-in player
// @Summary Current player
// @Description Player profile with coin balance and dino slots
// @Tags Player
// @Produce json
// @Security SessionAuth
// @Success 200 {object} models.PlayerProfile
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /me [get]
func (h *StoreHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.players.GetProfile(r.Context(), middleware.ExternalIDFromContext(r.Context()))
	if err != nil {
		services.SendError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, profile)
}

// MyLedger lists the player's coin purchases
// @Summary Coin purchase history
// @Tags Player
// @Produce json
// @Security SessionAuth
// @Param limit query int false "Max entries (default 50, max 100)"
// @Success 200 {array} models.LedgerEntry
// @Failure 401 {object} services.ErrorResponse
// @Router /me/ledger [get]
func (h *StoreHandler) MyLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	player, err := h.players.GetByExternalID(ctx, middleware.ExternalIDFromContext(ctx))
	if err != nil {
		services.SendError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.ledger.ListForPlayer(ctx, player.ID, limit)
	if err != nil {
		log.WithError(err).Error("[STORE] Failed to list ledger entries")
		services.SendError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, entries)
}

// Checkout starts a coin purchase
// @Summary Start coin checkout
// @Description Creates a hosted checkout session for the package and records a pending purchase.
// @Tags Coins
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body CheckoutRequest true "Package to buy"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 502 {object} services.ErrorResponse
// @Router /coins/checkout [post]
func (h *StoreHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := h.checkout.Initiate(r.Context(), middleware.ExternalIDFromContext(r.Context()), req.PackageID)
	if err != nil {
		services.SendError(w, err)
		return
	}

	resp := CheckoutResponse{CheckoutResult: *result}
	if qrImage, err := h.qr.Encode(result.RedirectURL); err != nil {
		log.WithError(err).Warn("[CHECKOUT] QR encoding failed")
	} else {
		resp.QRImage = qrImage
	}
	services.SendJSON(w, http.StatusOK, resp)
}

// BuyPackage starts a coin purchase from a form post
// @Summary Buy coin package
// @Description Browser flow: creates the checkout and redirects to the hosted payment page.
// @Tags Coins
// @Security SessionAuth
// @Param packageId path int true "Package ID"
// @Success 303
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 502 {object} services.ErrorResponse
// @Router /coins/buy/{packageId} [post]
func (h *StoreHandler) BuyPackage(w http.ResponseWriter, r *http.Request) {
	id, ok := packageIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.checkout.Initiate(r.Context(), middleware.ExternalIDFromContext(r.Context()), id)
	if err != nil {
		services.SendError(w, err)
		return
	}
	http.Redirect(w, r, result.RedirectURL, http.StatusSeeOther)
}

// CheckoutSuccess is the provider's success landing page
// @Summary Checkout success landing
// @Description Coins are credited when the payment confirmation arrives, so the entry may still be pending.
// @Tags Coins
// @Produce json
// @Param session_id query string true "Checkout session ID"
// @Success 200 {object} object{sessionId=string,status=string,coins=int}
// @Failure 400 {object} services.ErrorResponse
// @Router /coins/success [get]
func (h *StoreHandler) CheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		services.SendErrorResponse(w, "session_id is required", http.StatusBadRequest, nil)
		return
	}

	externalID := middleware.ExternalIDFromContext(r.Context())
	if externalID == "" {
		services.SendJSON(w, http.StatusOK, map[string]any{
			"sessionId": sessionID,
			"status":    "received",
		})
		return
	}

	entry, err := h.checkout.Status(r.Context(), externalID, sessionID)
	if err != nil {
		services.SendError(w, err)
		return
	}
	services.SendJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"status":    entry.Status,
		"coins":     entry.CoinsPurchased,
		"credited":  entry.Status == models.LedgerStatusCompleted,
	})
}

// CheckoutCancel is the provider's cancel landing page
// @Summary Checkout cancelled
// @Tags Coins
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /coins/cancel [get]
func (h *StoreHandler) CheckoutCancel(w http.ResponseWriter, r *http.Request) {
	services.SendJSON(w, http.StatusOK, map[string]string{"message": "Checkout cancelled. No payment was taken."})
}

func packageIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		raw = chi.URLParam(r, "packageId")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		services.SendErrorResponse(w, "Invalid package id", http.StatusBadRequest, nil)
		return 0, false
	}
	return id, true
}
