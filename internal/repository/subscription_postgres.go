package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/hookrelay/hookrelay/internal/domain"
)

// psql is a Squirrel StatementBuilder configured for PostgreSQL
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// subscriptionRepository implements domain.SubscriptionRepository for PostgreSQL
type subscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new PostgreSQL subscription repository
func NewSubscriptionRepository(db *sql.DB) domain.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription
func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	eventTypesJSON, err := marshalEventTypes(sub.EventTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal event types: %w", err)
	}

	query := `
		INSERT INTO subscriptions (
			id, target_url, secret_key, event_types, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err = r.db.ExecContext(ctx, query,
		sub.ID,
		sub.TargetURL,
		nullString(sub.SecretKey),
		eventTypesJSON,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetByID retrieves a subscription by ID
func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*domain.Subscription, error) {
	query := `
		SELECT id, target_url, secret_key, event_types, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	sub, err := scanSubscription(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.ErrNotFound{Entity: "subscription", ID: id}
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

// List retrieves subscriptions with pagination, newest first
func (r *subscriptionRepository) List(ctx context.Context, limit, offset int) ([]*domain.Subscription, error) {
	query, args, err := psql.
		Select("id", "target_url", "secret_key", "event_types", "created_at", "updated_at").
		From("subscriptions").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subscriptions = append(subscriptions, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subscriptions, nil
}

// Update updates the mutable fields of a subscription
func (r *subscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	eventTypesJSON, err := marshalEventTypes(sub.EventTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal event types: %w", err)
	}

	query := `
		UPDATE subscriptions
		SET target_url = $2, secret_key = $3, event_types = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.TargetURL,
		nullString(sub.SecretKey),
		eventTypesJSON,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "subscription", ID: sub.ID}
	}

	return nil
}

// Delete removes a subscription. Payloads and attempts cascade at the
// database level.
func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "subscription", ID: id}
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(row rowScanner) (*domain.Subscription, error) {
	var sub domain.Subscription
	var secretKey sql.NullString
	var eventTypesJSON []byte

	err := row.Scan(
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

	if secretKey.Valid {
		sub.SecretKey = secretKey.String
	}
	if len(eventTypesJSON) > 0 {
		if err := unmarshalEventTypes(eventTypesJSON, &sub.EventTypes); err != nil {
			return nil, err
		}
	}

	return &sub, nil
}

func unmarshalEventTypes(data []byte, dst *[]string) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal event types: %w", err)
	}
	return nil
}

func marshalEventTypes(eventTypes []string) (interface{}, error) {
	if len(eventTypes) == 0 {
		return nil, nil
	}
	return json.Marshal(eventTypes)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
