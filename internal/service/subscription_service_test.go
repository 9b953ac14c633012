package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/internal/domain/mocks"
	"github.com/hookrelay/hookrelay/pkg/cache"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

func newSubscriptionServiceForTest(t *testing.T) (*SubscriptionService, *mocks.MockSubscriptionRepository, cache.Cache) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockSubscriptionRepository(ctrl)
	c := cache.NewInMemoryCache(time.Minute)
	t.Cleanup(func() { _ = c.Stop() })

	return NewSubscriptionService(repo, c, logger.NewTestLogger(t)), repo, c
}

func TestSubscriptionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, c := newSubscriptionServiceForTest(t)

		repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, sub *domain.Subscription) error {
				assert.NotEmpty(t, sub.ID)
				assert.Equal(t, "https://example.com/hook", sub.TargetURL)
				return nil
			})

		sub, err := svc.Create(ctx, CreateSubscriptionInput{
			TargetURL:  "https://example.com/hook",
			SecretKey:  "s3cret",
			EventTypes: []string{"order.created"},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, sub.ID)

		// Write-through: the record is cached before the first read
		_, found, err := c.Get(ctx, "subscription:"+sub.ID)
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("InvalidTargetURL", func(t *testing.T) {
		svc, _, _ := newSubscriptionServiceForTest(t)

		for _, target := range []string{"", "not-a-url", "ftp://example.com", "https://"} {
			_, err := svc.Create(ctx, CreateSubscriptionInput{TargetURL: target})
			assert.True(t, domain.IsValidation(err), "target %q should be rejected", target)
		}
	})

	t.Run("RepositoryError", func(t *testing.T) {
		svc, repo, _ := newSubscriptionServiceForTest(t)

		repo.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(errors.New("connection lost"))

		_, err := svc.Create(ctx, CreateSubscriptionInput{TargetURL: "https://example.com"})
		require.Error(t, err)
	})
}

func TestSubscriptionService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("CacheMissThenHit", func(t *testing.T) {
		svc, repo, _ := newSubscriptionServiceForTest(t)

		stored := &domain.Subscription{
			ID:        "sub-123",
			TargetURL: "https://example.com/hook",
			SecretKey: "s3cret",
		}

		// Exactly one repository read: the second Get is served from cache
		repo.EXPECT().
			GetByID(gomock.Any(), "sub-123").
			Return(stored, nil).
			Times(1)

		first, err := svc.Get(ctx, "sub-123")
		require.NoError(t, err)
		assert.Equal(t, stored.TargetURL, first.TargetURL)

		second, err := svc.Get(ctx, "sub-123")
		require.NoError(t, err)
		assert.Equal(t, stored.ID, second.ID)
		assert.Equal(t, stored.SecretKey, second.SecretKey)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo, _ := newSubscriptionServiceForTest(t)

		repo.EXPECT().
			GetByID(gomock.Any(), "missing").
			Return(nil, &domain.ErrNotFound{Entity: "subscription", ID: "missing"})

		sub, err := svc.Get(ctx, "missing")
		assert.Nil(t, sub)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestSubscriptionService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newSubscriptionServiceForTest(t)

	repo.EXPECT().
		List(gomock.Any(), 100, 0).
		Return([]*domain.Subscription{{ID: "sub-1"}}, nil)

	// Non-positive limit and negative offset fall back to defaults
	subs, err := svc.List(ctx, 0, -5)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}

func TestSubscriptionService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("PartialUpdate", func(t *testing.T) {
		svc, repo, c := newSubscriptionServiceForTest(t)

		stored := &domain.Subscription{
			ID:         "sub-123",
			TargetURL:  "https://old.example.com",
			SecretKey:  "s3cret",
			EventTypes: []string{"order.created"},
		}

		repo.EXPECT().GetByID(gomock.Any(), "sub-123").Return(stored, nil)
		repo.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, sub *domain.Subscription) error {
				assert.Equal(t, "https://new.example.com", sub.TargetURL)
				assert.Equal(t, "s3cret", sub.SecretKey)
				assert.Empty(t, sub.EventTypes)
				return nil
			})

		newURL := "https://new.example.com"
		cleared := []string{}
		sub, err := svc.Update(ctx, "sub-123", UpdateSubscriptionInput{
			TargetURL:  &newURL,
			EventTypes: &cleared,
		})
		require.NoError(t, err)
		assert.Equal(t, newURL, sub.TargetURL)

		// Cache entry is refreshed with the updated record
		_, found, err := c.Get(ctx, "subscription:sub-123")
		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo, _ := newSubscriptionServiceForTest(t)

		repo.EXPECT().
			GetByID(gomock.Any(), "missing").
			Return(nil, &domain.ErrNotFound{Entity: "subscription", ID: "missing"})

		_, err := svc.Update(ctx, "missing", UpdateSubscriptionInput{})
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("InvalidTargetURL", func(t *testing.T) {
		svc, repo, _ := newSubscriptionServiceForTest(t)

		repo.EXPECT().
			GetByID(gomock.Any(), "sub-123").
			Return(&domain.Subscription{ID: "sub-123", TargetURL: "https://example.com"}, nil)

		bad := "not-a-url"
		_, err := svc.Update(ctx, "sub-123", UpdateSubscriptionInput{TargetURL: &bad})
		assert.True(t, domain.IsValidation(err))
	})
}

func TestSubscriptionService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidatesCache", func(t *testing.T) {
		svc, repo, c := newSubscriptionServiceForTest(t)

		require.NoError(t, c.Set(ctx, "subscription:sub-123", []byte(`{"id":"sub-123"}`), time.Minute))

		repo.EXPECT().Delete(gomock.Any(), "sub-123").Return(nil)

		err := svc.Delete(ctx, "sub-123")
		require.NoError(t, err)

		_, found, err := c.Get(ctx, "subscription:sub-123")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo, _ := newSubscriptionServiceForTest(t)

		repo.EXPECT().
			Delete(gomock.Any(), "missing").
			Return(&domain.ErrNotFound{Entity: "subscription", ID: "missing"})

		err := svc.Delete(ctx, "missing")
		assert.True(t, domain.IsNotFound(err))
	})
}
