package domain

//go:generate mockgen -destination mocks/mock_attempt_repository.go -package mocks github.com/hookrelay/hookrelay/internal/domain AttemptRepository

import (
	"context"
	"time"
)

// DeliveryStatus is the state of a single delivery attempt. The same string
// values are used for persistence and for the HTTP API.
type DeliveryStatus string

const (
	// DeliveryStatusPending marks an attempt that is scheduled but not yet
	// executed.
	DeliveryStatusPending DeliveryStatus = "pending"
	// DeliveryStatusSuccess is terminal: the target acknowledged with a 2xx.
	DeliveryStatusSuccess DeliveryStatus = "success"
	// DeliveryStatusFailedAttempt is terminal for the row but not for the
	// payload: a successor pending attempt has been scheduled.
	DeliveryStatusFailedAttempt DeliveryStatus = "failed_attempt"
	// DeliveryStatusFailure is terminal for the payload: non-retryable
	// outcome or retries exhausted.
	DeliveryStatusFailure DeliveryStatus = "failure"
)

// IsTerminal reports whether no further attempt follows this status.
func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliveryStatusSuccess || s == DeliveryStatusFailure
}

// DeliveryAttempt records one delivery try for a webhook payload.
type DeliveryAttempt struct {
	ID               int64          `json:"id"`
	WebhookID        string         `json:"webhook_id"`
	SubscriptionID   string         `json:"subscription_id"`
	AttemptNumber    int            `json:"attempt_number"`
	Status           DeliveryStatus `json:"status"`
	StatusCode       *int           `json:"status_code,omitempty"`
	ErrorDetails     *string        `json:"error_details,omitempty"`
	AttemptTimestamp time.Time      `json:"attempt_timestamp"`
	NextAttemptAt    *time.Time     `json:"next_attempt_at,omitempty"`
}

// AttemptUpdate is a partial update applied to an attempt row. Nil pointer
// fields are left untouched; ClearNextAttempt nulls next_attempt_at, which is
// required when a status becomes terminal.
type AttemptUpdate struct {
	Status           DeliveryStatus
	StatusCode       *int
	ErrorDetails     *string
	NextAttemptAt    *time.Time
	ClearNextAttempt bool
}

// DueAttempt is a claimed attempt joined with the payload and the
// subscription snapshot needed to execute the delivery.
type DueAttempt struct {
	Attempt      *DeliveryAttempt
	Payload      *WebhookPayload
	Subscription *Subscription
}

// DeliveryStats aggregates attempt counts for one subscription. Pending
// covers both pending and failed_attempt rows.
type DeliveryStats struct {
	SubscriptionID string  `json:"subscription_id"`
	TargetURL      string  `json:"target_url"`
	Total          int64   `json:"total"`
	Success        int64   `json:"success"`
	Failure        int64   `json:"failure"`
	Pending        int64   `json:"pending"`
	SuccessRate    float64 `json:"success_rate"`
}

// AttemptRepository defines the interface for delivery attempt data access
type AttemptRepository interface {
	// ClaimDue selects attempts eligible for delivery: status pending or
	// failed_attempt, next_attempt_at due, attempt_number within the retry
	// budget. Rows are selected with SKIP LOCKED so two pollers never pick
	// the same rows in the same instant; the locks do not outlive the claim
	// statement itself.
	ClaimDue(ctx context.Context, limit int, now time.Time, maxAttempts int) ([]*DueAttempt, error)
	Update(ctx context.Context, id int64, change AttemptUpdate) (*DeliveryAttempt, error)
	// ApplyRetry records a retryable failure: it applies change to the
	// previous attempt row and inserts the successor pending attempt with
	// attempt_number = previous.AttemptNumber + 1, both in one transaction.
	// Either both rows commit or neither does; a crash can never strand a
	// webhook without a claimable attempt.
	ApplyRetry(ctx context.Context, previous *DeliveryAttempt, change AttemptUpdate, nextAttemptAt time.Time) (*DeliveryAttempt, error)
	ListByWebhookID(ctx context.Context, webhookID string) ([]*DeliveryAttempt, error)
	ListRecentBySubscription(ctx context.Context, subscriptionID string, limit int) ([]*DeliveryAttempt, error)
	DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error)
	StatsBySubscription(ctx context.Context, subscriptionID string) (*DeliveryStats, error)
}
