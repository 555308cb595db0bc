package handlers

import (
	"io"
	"net/http"

	apperrors "coursehub/errors"
	resp "coursehub/http/response"
	"coursehub/services"

	"github.com/google/uuid"
)

const maxWebhookBytes = 1 << 20

// WebhookHandler receives gateway webhook deliveries
type WebhookHandler struct {
	Webhooks *services.WebhookService
}

func NewWebhookHandler(webhooks *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{Webhooks: webhooks}
}

// Razorpay handles POST /webhooks/razorpay. The signature covers the raw
// body, so it is read before any decoding.
func (h *WebhookHandler) Razorpay(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		resp.Fail(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	eventID := r.Header.Get("X-Razorpay-Event-Id")
	if eventID == "" {
		eventID = uuid.NewString()
	}
	signature := r.Header.Get("X-Razorpay-Signature")

	if err := h.Webhooks.Handle(r.Context(), eventID, body, signature); err != nil {
		resp.Fail(w, apperrors.HTTPStatus(err), apperrors.MessageOf(err))
		return
	}
	resp.OKMessage(w, http.StatusOK, "Webhook processed", nil)
}
