package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/hookrelay/hookrelay/internal/domain"
)

// attemptRepository implements domain.AttemptRepository for PostgreSQL
type attemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new PostgreSQL delivery attempt repository
func NewAttemptRepository(db *sql.DB) domain.AttemptRepository {
	return &attemptRepository{db: db}
}

const attemptColumns = `id, webhook_id, subscription_id, attempt_number, status, status_code, error_details, attempt_timestamp, next_attempt_at`

// ClaimDue selects due attempts joined with their payload and subscription
// snapshot. FOR UPDATE OF delivery_logs SKIP LOCKED keeps a concurrent
// poller from selecting the same rows while this statement runs; the locks
// are released when the implicit single-statement transaction ends, so
// exclusivity between claim and write-back relies on next_attempt_at
// scheduling and a single-worker deployment.
func (r *attemptRepository) ClaimDue(ctx context.Context, limit int, now time.Time, maxAttempts int) ([]*domain.DueAttempt, error) {
	query := `
		SELECT
			l.id, l.webhook_id, l.subscription_id, l.attempt_number, l.status,
			l.status_code, l.error_details, l.attempt_timestamp, l.next_attempt_at,
			p.id, p.subscription_id, p.event_type, p.payload, p.created_at,
			s.id, s.target_url, s.secret_key, s.event_types, s.created_at, s.updated_at
		FROM delivery_logs l
		JOIN webhook_payloads p ON l.webhook_id = p.id
		JOIN subscriptions s ON l.subscription_id = s.id
		WHERE l.status IN ('pending', 'failed_attempt')
			AND l.next_attempt_at <= $1
			AND l.attempt_number <= $2
		ORDER BY l.next_attempt_at ASC
		LIMIT $3
		FOR UPDATE OF l SKIP LOCKED
	`

	rows, err := r.db.QueryContext(ctx, query, now, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query due attempts: %w", err)
	}
	defer rows.Close()

	var due []*domain.DueAttempt
	for rows.Next() {
		item, err := scanDueAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due attempt: %w", err)
		}
		due = append(due, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due attempts: %w", err)
	}

	return due, nil
}

// buildAttemptUpdate renders the partial update for an attempt row with a
// RETURNING clause.
func buildAttemptUpdate(id int64, change domain.AttemptUpdate) (string, []interface{}, error) {
	builder := psql.
		Update("delivery_logs").
		Set("status", change.Status).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + attemptColumns)

	if change.StatusCode != nil {
		builder = builder.Set("status_code", *change.StatusCode)
	}
	if change.ErrorDetails != nil {
		builder = builder.Set("error_details", *change.ErrorDetails)
	}
	if change.ClearNextAttempt {
		builder = builder.Set("next_attempt_at", nil)
	} else if change.NextAttemptAt != nil {
		builder = builder.Set("next_attempt_at", *change.NextAttemptAt)
	}

	return builder.ToSql()
}

// Update applies a partial update to an attempt row and returns the
// refreshed row
func (r *attemptRepository) Update(ctx context.Context, id int64, change domain.AttemptUpdate) (*domain.DeliveryAttempt, error) {
	query, args, err := buildAttemptUpdate(id, change)
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	attempt, err := scanAttempt(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrNotFound{Entity: "delivery attempt", ID: fmt.Sprintf("%d", id)}
		}
		return nil, fmt.Errorf("failed to update attempt: %w", err)
	}

	return attempt, nil
}

// ApplyRetry marks the previous attempt row and inserts the successor
// pending attempt inside a single transaction, mirroring the ingestion
// path's payload-plus-attempt insert. A partial commit would strand the
// webhook with no claimable attempt.
func (r *attemptRepository) ApplyRetry(ctx context.Context, previous *domain.DeliveryAttempt, change domain.AttemptUpdate, nextAttemptAt time.Time) (*domain.DeliveryAttempt, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args, err := buildAttemptUpdate(previous.ID, change)
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanAttempt(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrNotFound{Entity: "delivery attempt", ID: fmt.Sprintf("%d", previous.ID)}
		}
		return nil, fmt.Errorf("failed to update attempt: %w", err)
	}

	next := &domain.DeliveryAttempt{
		WebhookID:        updated.WebhookID,
		SubscriptionID:   updated.SubscriptionID,
		AttemptNumber:    updated.AttemptNumber + 1,
		Status:           domain.DeliveryStatusPending,
		AttemptTimestamp: time.Now().UTC(),
		NextAttemptAt:    &nextAttemptAt,
	}

	insertQuery := `
		INSERT INTO delivery_logs (
			webhook_id, subscription_id, attempt_number, status, attempt_timestamp, next_attempt_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, insertQuery,
		next.WebhookID,
		next.SubscriptionID,
		next.AttemptNumber,
		next.Status,
		next.AttemptTimestamp,
		nextAttemptAt,
	).Scan(&next.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create next attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return next, nil
}

// ListByWebhookID retrieves all attempts for a webhook ordered by attempt number
func (r *attemptRepository) ListByWebhookID(ctx context.Context, webhookID string) ([]*domain.DeliveryAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM delivery_logs
		WHERE webhook_id = $1
		ORDER BY attempt_number ASC
	`

	rows, err := r.db.QueryContext(ctx, query, webhookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	return collectAttempts(rows)
}

// ListRecentBySubscription retrieves the most recent attempts for a subscription
func (r *attemptRepository) ListRecentBySubscription(ctx context.Context, subscriptionID string, limit int) ([]*domain.DeliveryAttempt, error) {
	query := `
		SELECT ` + attemptColumns + `
		FROM delivery_logs
		WHERE subscription_id = $1
		ORDER BY attempt_timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, subscriptionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent attempts: %w", err)
	}
	defer rows.Close()

	return collectAttempts(rows)
}

// DeleteOlderThan removes attempts created before the threshold and returns
// the number of rows removed
func (r *attemptRepository) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	query, args, err := psql.
		Delete("delivery_logs").
		Where(sq.Lt{"attempt_timestamp": threshold}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old attempts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return deleted, nil
}

// StatsBySubscription aggregates attempt counts by status for one subscription
func (r *attemptRepository) StatsBySubscription(ctx context.Context, subscriptionID string) (*domain.DeliveryStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'success'),
			COUNT(*) FILTER (WHERE status = 'failure'),
			COUNT(*) FILTER (WHERE status IN ('pending', 'failed_attempt'))
		FROM delivery_logs
		WHERE subscription_id = $1
	`

	stats := &domain.DeliveryStats{SubscriptionID: subscriptionID}

	err := r.db.QueryRowContext(ctx, query, subscriptionID).Scan(
		&stats.Total,
		&stats.Success,
		&stats.Failure,
		&stats.Pending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Success) / float64(stats.Total) * 100
	}

	return stats, nil
}

func collectAttempts(rows *sql.Rows) ([]*domain.DeliveryAttempt, error) {
	var attempts []*domain.DeliveryAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}

	return attempts, nil
}

func scanAttempt(row rowScanner) (*domain.DeliveryAttempt, error) {
	var attempt domain.DeliveryAttempt
	var statusCode sql.NullInt32
	var errorDetails sql.NullString
	var nextAttemptAt sql.NullTime

	err := row.Scan(
		&attempt.ID,
		&attempt.WebhookID,
		&attempt.SubscriptionID,
		&attempt.AttemptNumber,
		&attempt.Status,
		&statusCode,
		&errorDetails,
		&attempt.AttemptTimestamp,
		&nextAttemptAt,
	)
	if err != nil {
		return nil, err
	}

	if statusCode.Valid {
		code := int(statusCode.Int32)
		attempt.StatusCode = &code
	}
	if errorDetails.Valid {
		attempt.ErrorDetails = &errorDetails.String
	}
	if nextAttemptAt.Valid {
		attempt.NextAttemptAt = &nextAttemptAt.Time
	}

	return &attempt, nil
}

func scanDueAttempt(rows *sql.Rows) (*domain.DueAttempt, error) {
	var attempt domain.DeliveryAttempt
	var statusCode sql.NullInt32
	var errorDetails sql.NullString
	var nextAttemptAt sql.NullTime

	var payload domain.WebhookPayload
	var payloadEventType sql.NullString
	var body string

	var sub domain.Subscription
	var secretKey sql.NullString
	var eventTypesJSON []byte

	err := rows.Scan(
		&attempt.ID,
		&attempt.WebhookID,
		&attempt.SubscriptionID,
		&attempt.AttemptNumber,
		&attempt.Status,
		&statusCode,
		&errorDetails,
		&attempt.AttemptTimestamp,
		&nextAttemptAt,
		&payload.ID,
		&payload.SubscriptionID,
		&payloadEventType,
		&body,
		&payload.CreatedAt,
		&sub.ID,
		&sub.TargetURL,
		&secretKey,
		&eventTypesJSON,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if statusCode.Valid {
		code := int(statusCode.Int32)
		attempt.StatusCode = &code
	}
	if errorDetails.Valid {
		attempt.ErrorDetails = &errorDetails.String
	}
	if nextAttemptAt.Valid {
		attempt.NextAttemptAt = &nextAttemptAt.Time
	}

	if payloadEventType.Valid {
		payload.EventType = payloadEventType.String
	}
	payload.Body = []byte(body)

	if secretKey.Valid {
		sub.SecretKey = secretKey.String
	}
	if len(eventTypesJSON) > 0 {
		if err := unmarshalEventTypes(eventTypesJSON, &sub.EventTypes); err != nil {
			return nil, err
		}
	}

	return &domain.DueAttempt{
		Attempt:      &attempt,
		Payload:      &payload,
		Subscription: &sub,
	}, nil
}
