package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
)

// Payment webhook event types
const (
	paymentEventCompleted = "checkout.completed"
	paymentEventFailed    = "payment.failed"
)

// PaymentRecorder defines the booking payment operations the webhook needs
type PaymentRecorder interface {
	MarkPaid(ctx context.Context, id, paymentRef string) (*entities.Booking, error)
	MarkPaymentFailed(ctx context.Context, id, paymentRef string) (*entities.Booking, error)
}

// PaymentWebhookHandler handles payment provider webhooks
type PaymentWebhookHandler struct {
	service       PaymentRecorder
	signingSecret string
}

// NewPaymentWebhookHandler creates a new payment webhook handler
func NewPaymentWebhookHandler(service PaymentRecorder, signingSecret string) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		service:       service,
		signingSecret: signingSecret,
	}
}

// paymentWebhookEvent is the incoming webhook payload
type paymentWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		BookingID  string `json:"booking_id"`
		PaymentRef string `json:"payment_ref"`
	} `json:"data"`
}

// HandleWebhook processes POST /api/webhooks/payments.
//
// The body is authenticated with an HMAC-SHA256 signature in the
// X-Payment-Signature header. Marking a booking paid is idempotent, so
// provider retries of the same event are safe.
func (h *PaymentWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if h.signingSecret != "" && !h.verifySignature(r.Header.Get("X-Payment-Signature"), body) {
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	var event paymentWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if event.Data.BookingID == "" {
		http.Error(w, "booking_id is required", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case paymentEventCompleted:
		if _, err := h.service.MarkPaid(r.Context(), event.Data.BookingID, event.Data.PaymentRef); err != nil {
			log.Error().Err(err).Str("booking_id", event.Data.BookingID).Msg("failed to mark booking paid")
			respondWithAppError(w, err)
			return
		}
	case paymentEventFailed:
		if _, err := h.service.MarkPaymentFailed(r.Context(), event.Data.BookingID, event.Data.PaymentRef); err != nil {
			log.Error().Err(err).Str("booking_id", event.Data.BookingID).Msg("failed to record payment failure")
			respondWithAppError(w, err)
			return
		}
	default:
		// Unknown events are acknowledged so the provider stops retrying.
		log.Info().Str("event_type", event.Type).Msg("ignoring payment webhook event")
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PaymentWebhookHandler) verifySignature(signature string, body []byte) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.signingSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
