package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

// subscriptionReader is the subset of SubscriptionService the ingestion path
// depends on.
type subscriptionReader interface {
	Get(ctx context.Context, id string) (*domain.Subscription, error)
}

// IngestInput is one inbound webhook as received by the HTTP layer. Body is
// the raw request bytes; they are stored and later re-signed unmodified.
type IngestInput struct {
	SubscriptionID  string
	Body            []byte
	EventType       string
	SignatureHeader string
}

// IngestResult reports the outcome of an accepted or filtered webhook.
type IngestResult struct {
	Status    string `json:"status"`
	WebhookID string `json:"webhook_id,omitempty"`
	Message   string `json:"message"`
}

const (
	ingestStatusAccepted = "accepted"
	ingestStatusSkipped  = "skipped"
)

// IngestService validates inbound webhooks and persists accepted ones
// together with their first pending delivery attempt.
type IngestService struct {
	subscriptions subscriptionReader
	payloads      domain.PayloadRepository
	logger        logger.Logger
}

// NewIngestService creates a new ingestion service
func NewIngestService(subscriptions subscriptionReader, payloads domain.PayloadRepository, log logger.Logger) *IngestService {
	return &IngestService{
		subscriptions: subscriptions,
		payloads:      payloads,
		logger:        log,
	}
}

// Ingest runs the full acceptance pipeline: subscription lookup, event type
// filter, signature verification, atomic persistence. A filtered event
// returns a skipped result with no error and nothing persisted. A signature
// mismatch returns domain.ErrInvalidSignature. A request without a signature
// header is accepted even when the subscription carries a secret; the secret
// then only signs the outbound delivery.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	if len(bytes.TrimSpace(input.Body)) == 0 {
		return nil, domain.NewValidationError("payload must not be empty")
	}
	if !json.Valid(input.Body) {
		return nil, domain.NewValidationError("payload must be valid JSON")
	}

	sub, err := s.subscriptions.Get(ctx, input.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if !sub.AcceptsEventType(input.EventType) {
		s.logger.WithFields(map[string]interface{}{
			"subscription_id": sub.ID,
			"event_type":      input.EventType,
		}).Info("Webhook skipped by event type filter")
		return &IngestResult{
			Status:  ingestStatusSkipped,
			Message: fmt.Sprintf("event type %q is not subscribed", input.EventType),
		}, nil
	}

	if sub.SecretKey != "" && input.SignatureHeader != "" {
		if !VerifySignature(sub.SecretKey, input.Body, input.SignatureHeader) {
			s.logger.WithField("subscription_id", sub.ID).Warn("Webhook rejected: signature mismatch")
			return nil, domain.ErrInvalidSignature
		}
	}

	payload := &domain.WebhookPayload{
		ID:             uuid.New().String(),
		SubscriptionID: sub.ID,
		EventType:      input.EventType,
		Body:           input.Body,
	}

	if _, err := s.payloads.CreateWithInitialAttempt(ctx, payload); err != nil {
		return nil, fmt.Errorf("failed to persist webhook: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"subscription_id": sub.ID,
		"webhook_id":      payload.ID,
	}).Info("Webhook accepted")

	return &IngestResult{
		Status:    ingestStatusAccepted,
		WebhookID: payload.ID,
		Message:   "Webhook accepted for delivery",
	}, nil
}
