package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/internal/service"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

// maxIngestBodySize bounds inbound webhook payloads at 1 MiB.
const maxIngestBodySize = 1 << 20

// WebhookHandler handles webhook ingestion and status endpoints
type WebhookHandler struct {
	ingest        *service.IngestService
	subscriptions *service.SubscriptionService
	payloads      domain.PayloadRepository
	attempts      domain.AttemptRepository
	logger        logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	ingest *service.IngestService,
	subscriptions *service.SubscriptionService,
	payloads domain.PayloadRepository,
	attempts domain.AttemptRepository,
	logger logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		ingest:        ingest,
		subscriptions: subscriptions,
		payloads:      payloads,
		attempts:      attempts,
		logger:        logger,
	}
}

// RegisterRoutes registers the webhook routes
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/webhooks/ingest/{subscription_id}", h.handleIngest)
	mux.HandleFunc("GET /api/v1/webhooks/{id}/status", h.handleStatus)
	mux.HandleFunc("GET /api/v1/webhooks/subscription/{id}", h.handleListBySubscription)
}

// handleIngest accepts one webhook. The raw body bytes flow through
// verification and storage untouched so that the delivery signature matches
// what the producer signed.
func (h *WebhookHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	subscriptionID := r.PathValue("subscription_id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIngestBodySize))
	if err != nil {
		WriteJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	result, err := h.ingest.Ingest(r.Context(), service.IngestInput{
		SubscriptionID:  subscriptionID,
		Body:            body,
		EventType:       r.Header.Get("X-Webhook-Event"),
		SignatureHeader: r.Header.Get("X-Hub-Signature-256"),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidSignature) {
			WriteJSONError(w, "Invalid signature", http.StatusUnauthorized)
			return
		}
		if !domain.IsNotFound(err) && !domain.IsValidation(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to ingest webhook")
		}
		writeDomainError(w, err, "Failed to ingest webhook")
		return
	}

	writeJSON(w, http.StatusAccepted, result)
}

// handleStatus returns the payload metadata and its full attempt history,
// ordered by attempt number.
func (h *WebhookHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	payload, err := h.payloads.GetByID(r.Context(), id)
	if err != nil {
		if !domain.IsNotFound(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to get webhook payload")
		}
		writeDomainError(w, err, "Failed to get webhook status")
		return
	}

	attempts, err := h.attempts.ListByWebhookID(r.Context(), id)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list delivery attempts")
		WriteJSONError(w, "Failed to get webhook status", http.StatusInternalServerError)
		return
	}
	if attempts == nil {
		attempts = []*domain.DeliveryAttempt{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"webhook_id":      payload.ID,
		"subscription_id": payload.SubscriptionID,
		"event_type":      payload.EventType,
		"created_at":      payload.CreatedAt,
		"attempts":        attempts,
	})
}

// handleListBySubscription returns the paginated payloads accepted for one
// subscription, newest first.
func (h *WebhookHandler) handleListBySubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := h.subscriptions.Get(r.Context(), id); err != nil {
		if !domain.IsNotFound(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to get subscription")
		}
		writeDomainError(w, err, "Failed to list webhooks")
		return
	}

	limit, offset := parsePagination(r.URL.Query(), 50, 500)

	payloads, err := h.payloads.ListBySubscription(r.Context(), id, limit, offset)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list webhook payloads")
		WriteJSONError(w, "Failed to list webhooks", http.StatusInternalServerError)
		return
	}
	if payloads == nil {
		payloads = []*domain.WebhookPayload{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscription_id": id,
		"webhooks":        payloads,
	})
}
