package domain

//go:generate mockgen -destination mocks/mock_subscription_repository.go -package mocks github.com/hookrelay/hookrelay/internal/domain SubscriptionRepository

import (
	"context"
	"time"
)

// Subscription represents a registered webhook delivery target. The secret
// key, when set, is used both to verify inbound producer signatures and to
// sign outbound delivery requests. An empty EventTypes list means the
// subscription accepts every event type.
type Subscription struct {
	ID         string     `json:"id"`
	TargetURL  string     `json:"target_url"`
	SecretKey  string     `json:"secret_key,omitempty"`
	EventTypes []string   `json:"event_types,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AcceptsEventType reports whether the subscription listens for the given
// event type. A subscription without an event type filter accepts everything,
// as does any request that does not declare an event type.
func (s *Subscription) AcceptsEventType(eventType string) bool {
	if len(s.EventTypes) == 0 || eventType == "" {
		return true
	}
	for _, t := range s.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context, limit, offset int) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id string) error
}
