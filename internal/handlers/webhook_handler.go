package handlers

import (
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/dinostore/backend/internal/payments"
	"github.com/dinostore/backend/internal/services"
)

const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	service *services.WebhookService
}

func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// HandleStripe receives payment provider notifications
// @Summary Stripe webhook
// @Description Verifies the Stripe-Signature header over the raw body and reconciles checkout events. Any non-2xx answer makes Stripe retry.
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} object{received=bool,outcome=string}
// @Failure 400 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /stripe/webhook [post]
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBody)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			services.SendErrorResponse(w, "Payload too large", http.StatusRequestEntityTooLarge, nil)
			return
		}
		services.SendErrorResponse(w, "Unreadable payload", http.StatusBadRequest, nil)
		return
	}

	outcome, err := h.service.Handle(r.Context(), payload, r.Header.Get(payments.SignatureHeader))
	if err != nil {
		if services.StatusFor(err) >= http.StatusInternalServerError {
			log.WithError(err).Error("[WEBHOOK] Event not applied, provider will retry")
		}
		services.SendError(w, err)
		return
	}

	services.SendJSON(w, http.StatusOK, map[string]any{
		"received": true,
		"outcome":  outcome,
	})
}
