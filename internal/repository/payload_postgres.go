package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/hookrelay/hookrelay/internal/domain"
)

// foreignKeyViolation is the Postgres error code raised when an insert
// references a missing subscription.
const foreignKeyViolation = "23503"

// payloadRepository implements domain.PayloadRepository for PostgreSQL
type payloadRepository struct {
	db *sql.DB
}

// NewPayloadRepository creates a new PostgreSQL webhook payload repository
func NewPayloadRepository(db *sql.DB) domain.PayloadRepository {
	return &payloadRepository{db: db}
}

// CreateWithInitialAttempt inserts the payload and its first pending attempt
// in a single transaction. The initial attempt is due immediately.
func (r *payloadRepository) CreateWithInitialAttempt(ctx context.Context, payload *domain.WebhookPayload) (*domain.DeliveryAttempt, error) {
	now := time.Now().UTC()
	payload.CreatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	payloadQuery := `
		INSERT INTO webhook_payloads (
			id, subscription_id, event_type, payload, created_at
		) VALUES (
			$1, $2, $3, $4, $5
		)
	`

	_, err = tx.ExecContext(ctx, payloadQuery,
		payload.ID,
		payload.SubscriptionID,
		nullString(payload.EventType),
		string(payload.Body),
		payload.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == foreignKeyViolation {
			return nil, &domain.ErrNotFound{Entity: "subscription", ID: payload.SubscriptionID}
		}
		return nil, fmt.Errorf("failed to create webhook payload: %w", err)
	}

	attempt := &domain.DeliveryAttempt{
		WebhookID:        payload.ID,
		SubscriptionID:   payload.SubscriptionID,
		AttemptNumber:    1,
		Status:           domain.DeliveryStatusPending,
		AttemptTimestamp: now,
		NextAttemptAt:    &now,
	}

	attemptQuery := `
		INSERT INTO delivery_logs (
			webhook_id, subscription_id, attempt_number, status, attempt_timestamp, next_attempt_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, attemptQuery,
		attempt.WebhookID,
		attempt.SubscriptionID,
		attempt.AttemptNumber,
		attempt.Status,
		attempt.AttemptTimestamp,
		attempt.NextAttemptAt,
	).Scan(&attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return attempt, nil
}

// GetByID retrieves a webhook payload by ID
func (r *payloadRepository) GetByID(ctx context.Context, id string) (*domain.WebhookPayload, error) {
	query := `
		SELECT id, subscription_id, event_type, payload, created_at
		FROM webhook_payloads
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	payload, err := scanPayload(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrNotFound{Entity: "webhook", ID: id}
		}
		return nil, fmt.Errorf("failed to get webhook payload: %w", err)
	}

	return payload, nil
}

// ListBySubscription retrieves payloads for a subscription with pagination,
// newest first
func (r *payloadRepository) ListBySubscription(ctx context.Context, subscriptionID string, limit, offset int) ([]*domain.WebhookPayload, error) {
	query, args, err := psql.
		Select("id", "subscription_id", "event_type", "payload", "created_at").
		From("webhook_payloads").
		Where(sq.Eq{"subscription_id": subscriptionID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook payloads: %w", err)
	}
	defer rows.Close()

	var payloads []*domain.WebhookPayload
	for rows.Next() {
		payload, err := scanPayload(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook payload: %w", err)
		}
		payloads = append(payloads, payload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating webhook payloads: %w", err)
	}

	return payloads, nil
}

func scanPayload(row rowScanner) (*domain.WebhookPayload, error) {
	var payload domain.WebhookPayload
	var eventType sql.NullString
	var body string

	err := row.Scan(
		&payload.ID,
		&payload.SubscriptionID,
		&eventType,
		&body,
		&payload.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if eventType.Valid {
		payload.EventType = eventType.String
	}
	payload.Body = []byte(body)

	return &payload, nil
}
