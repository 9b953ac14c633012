package domain

//go:generate mockgen -destination mocks/mock_payload_repository.go -package mocks github.com/hookrelay/hookrelay/internal/domain PayloadRepository

import (
	"context"
	"encoding/json"
	"time"
)

// WebhookPayload is one webhook accepted by the ingestion endpoint. The body
// is kept as the exact bytes the producer sent: the delivery path re-sends
// and re-signs those same bytes, so they are never reserialized.
type WebhookPayload struct {
	ID             string          `json:"id"`
	SubscriptionID string          `json:"subscription_id"`
	EventType      string          `json:"event_type,omitempty"`
	Body           json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PayloadRepository defines the interface for webhook payload data access.
// CreateWithInitialAttempt inserts the payload and its first pending attempt
// in a single transaction; the returned attempt has attempt_number 1 and is
// due immediately.
type PayloadRepository interface {
	CreateWithInitialAttempt(ctx context.Context, payload *WebhookPayload) (*DeliveryAttempt, error)
	GetByID(ctx context.Context, id string) (*WebhookPayload, error)
	ListBySubscription(ctx context.Context, subscriptionID string, limit, offset int) ([]*WebhookPayload, error)
}
