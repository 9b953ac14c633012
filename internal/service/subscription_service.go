package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/pkg/cache"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

const (
	subscriptionCacheKeyPrefix = "subscription:"
	subscriptionCacheTTL       = time.Hour
)

// CreateSubscriptionInput carries the fields accepted when registering a
// subscription.
type CreateSubscriptionInput struct {
	TargetURL  string   `json:"target_url"`
	SecretKey  string   `json:"secret_key,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
}

// UpdateSubscriptionInput is a partial update. Nil fields are left untouched;
// a non-nil empty EventTypes clears the filter.
type UpdateSubscriptionInput struct {
	TargetURL  *string   `json:"target_url,omitempty"`
	SecretKey  *string   `json:"secret_key,omitempty"`
	EventTypes *[]string `json:"event_types,omitempty"`
}

// SubscriptionService manages subscriptions and keeps the cache coherent
// with the store. Cache failures are logged and never surface to callers.
type SubscriptionService struct {
	repo   domain.SubscriptionRepository
	cache  cache.Cache
	logger logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo domain.SubscriptionRepository, c cache.Cache, log logger.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		cache:  c,
		logger: log,
	}
}

// Create registers a new subscription and caches it immediately.
func (s *SubscriptionService) Create(ctx context.Context, input CreateSubscriptionInput) (*domain.Subscription, error) {
	if err := validateTargetURL(input.TargetURL); err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		ID:         uuid.New().String(),
		TargetURL:  input.TargetURL,
		SecretKey:  input.SecretKey,
		EventTypes: input.EventTypes,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.cacheSet(ctx, sub)

	s.logger.WithField("subscription_id", sub.ID).Info("Subscription created")
	return sub, nil
}

// Get retrieves a subscription, read-through via the cache.
func (s *SubscriptionService) Get(ctx context.Context, id string) (*domain.Subscription, error) {
	key := subscriptionCacheKeyPrefix + id

	data, found, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WithField("subscription_id", id).Warn(fmt.Sprintf("Cache read failed: %v", err))
	}
	if found {
		var sub domain.Subscription
		if err := json.Unmarshal(data, &sub); err == nil {
			return &sub, nil
		}
		s.logger.WithField("subscription_id", id).Warn("Discarding undecodable cache entry")
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, sub)
	return sub, nil
}

// List retrieves subscriptions with pagination, newest first.
func (s *SubscriptionService) List(ctx context.Context, limit, offset int) ([]*domain.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Update applies a partial update and refreshes the cache entry.
func (s *SubscriptionService) Update(ctx context.Context, id string, input UpdateSubscriptionInput) (*domain.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.TargetURL != nil {
		if err := validateTargetURL(*input.TargetURL); err != nil {
			return nil, err
		}
		sub.TargetURL = *input.TargetURL
	}
	if input.SecretKey != nil {
		sub.SecretKey = *input.SecretKey
	}
	if input.EventTypes != nil {
		sub.EventTypes = *input.EventTypes
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	s.cacheSet(ctx, sub)

	s.logger.WithField("subscription_id", sub.ID).Info("Subscription updated")
	return sub, nil
}

// Delete removes a subscription and invalidates its cache entry. Payloads
// and delivery attempts cascade at the database level.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, subscriptionCacheKeyPrefix+id); err != nil {
		s.logger.WithField("subscription_id", id).Warn(fmt.Sprintf("Cache invalidation failed: %v", err))
	}

	s.logger.WithField("subscription_id", id).Info("Subscription deleted")
	return nil
}

func (s *SubscriptionService) cacheSet(ctx context.Context, sub *domain.Subscription) {
	data, err := json.Marshal(sub)
	if err != nil {
		s.logger.WithField("subscription_id", sub.ID).Warn(fmt.Sprintf("Cache encode failed: %v", err))
		return
	}
	if err := s.cache.Set(ctx, subscriptionCacheKeyPrefix+sub.ID, data, subscriptionCacheTTL); err != nil {
		s.logger.WithField("subscription_id", sub.ID).Warn(fmt.Sprintf("Cache write failed: %v", err))
	}
}

func validateTargetURL(raw string) error {
	if raw == "" {
		return domain.NewValidationError("target_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.NewValidationError("target_url must be a valid http or https URL")
	}
	return nil
}
