package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookrelay/hookrelay/config"
	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/internal/domain/mocks"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

func testDeliveryConfig() config.DeliveryConfig {
	return config.DeliveryConfig{
		MaxRetryAttempts: 5,
		RetryIntervals:   []time.Duration{10 * time.Second, 30 * time.Second, time.Minute},
		Timeout:          time.Second,
		LogRetention:     72 * time.Hour,
	}
}

func dueAttemptForTest(targetURL, secret string) *domain.DueAttempt {
	return &domain.DueAttempt{
		Attempt: &domain.DeliveryAttempt{
			ID:             1,
			WebhookID:      "wh-123",
			SubscriptionID: "sub-123",
			AttemptNumber:  1,
			Status:         domain.DeliveryStatusPending,
		},
		Payload: &domain.WebhookPayload{
			ID:             "wh-123",
			SubscriptionID: "sub-123",
			EventType:      "order.created",
			Body:           []byte(`{"order_id": 42}`),
		},
		Subscription: &domain.Subscription{
			ID:        "sub-123",
			TargetURL: targetURL,
			SecretKey: secret,
		},
	}
}

func TestDeliveryService_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessSendsSignedRequest", func(t *testing.T) {
		var gotBody []byte
		var gotHeaders http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			gotHeaders = r.Header.Clone()
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		svc := NewDeliveryService(nil, nil, testDeliveryConfig(), logger.NewTestLogger(t))
		due := dueAttemptForTest(server.URL, "s3cret")

		result := svc.Deliver(ctx, due)
		assert.True(t, result.Success)
		require.NotNil(t, result.StatusCode)
		assert.Equal(t, http.StatusOK, *result.StatusCode)

		assert.Equal(t, []byte(`{"order_id": 42}`), gotBody)
		assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
		assert.Equal(t, SignPayload("s3cret", due.Payload.Body), gotHeaders.Get("X-Hub-Signature-256"))
		assert.Equal(t, "order.created", gotHeaders.Get("X-Webhook-Event"))
	})

	t.Run("NoSecretNoSignatureHeader", func(t *testing.T) {
		var gotHeaders http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotHeaders = r.Header.Clone()
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		svc := NewDeliveryService(nil, nil, testDeliveryConfig(), logger.NewTestLogger(t))
		due := dueAttemptForTest(server.URL, "")
		due.Payload.EventType = ""

		result := svc.Deliver(ctx, due)
		assert.True(t, result.Success)
		assert.Empty(t, gotHeaders.Get("X-Hub-Signature-256"))
		assert.Empty(t, gotHeaders.Get("X-Webhook-Event"))
	})

	t.Run("RetryableStatusCodes", func(t *testing.T) {
		for _, code := range []int{408, 429, 500, 502, 503, 504} {
			code := code
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
				_, _ = w.Write([]byte("server busy"))
			}))

			svc := NewDeliveryService(nil, nil, testDeliveryConfig(), logger.NewTestLogger(t))
			result := svc.Deliver(ctx, dueAttemptForTest(server.URL, ""))
			server.Close()

			assert.False(t, result.Success)
			assert.True(t, result.Retryable, "status %d should be retryable", code)
			require.NotNil(t, result.StatusCode)
			assert.Equal(t, code, *result.StatusCode)
			require.NotNil(t, result.ErrorDetails)
			assert.Contains(t, *result.ErrorDetails, "Target server responded with status")
			assert.Contains(t, *result.ErrorDetails, "server busy")
		}
	})

	t.Run("NonRetryableStatusIsTerminal", func(t *testing.T) {
		for _, code := range []int{301, 400, 404, 410, 422, 501} {
			code := code
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			}))

			svc := NewDeliveryService(nil, nil, testDeliveryConfig(), logger.NewTestLogger(t))
			result := svc.Deliver(ctx, dueAttemptForTest(server.URL, ""))
			server.Close()

			assert.False(t, result.Success)
			assert.False(t, result.Retryable, "status %d should be terminal", code)
			require.NotNil(t, result.StatusCode)
			assert.Equal(t, code, *result.StatusCode)
		}
	})

	t.Run("ResponseBodyTruncatedInDetails", func(t *testing.T) {
		long := make([]byte, 1000)
		for i := range long {
			long[i] = 'x'
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write(long)
		}))
		defer server.Close()

		svc := NewDeliveryService(nil, nil, testDeliveryConfig(), logger.NewTestLogger(t))
		result := svc.Deliver(ctx, dueAttemptForTest(server.URL, ""))

		require.NotNil(t, result.ErrorDetails)
		assert.LessOrEqual(t, len(*result.ErrorDetails), len("Target server responded with status 400: ")+errorBodySnippetLimit)
	})

	t.Run("Timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		cfg := testDeliveryConfig()
		cfg.Timeout = 50 * time.Millisecond
		svc := NewDeliveryService(nil, nil, cfg, logger.NewTestLogger(t))

		result := svc.Deliver(ctx, dueAttemptForTest(server.URL, ""))
		assert.False(t, result.Success)
		assert.True(t, result.Retryable)
		assert.Nil(t, result.StatusCode)
		require.NotNil(t, result.ErrorDetails)
		assert.Contains(t, *result.ErrorDetails, "Request timed out after")
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		target := server.URL
		server.Close()

		svc := NewDeliveryService(nil, nil, testDeliveryConfig(), logger.NewTestLogger(t))
		result := svc.Deliver(ctx, dueAttemptForTest(target, ""))

		assert.False(t, result.Success)
		assert.True(t, result.Retryable)
		assert.Nil(t, result.StatusCode)
		require.NotNil(t, result.ErrorDetails)
		assert.Contains(t, *result.ErrorDetails, "Connection error")
	})
}

func TestDeliveryService_ApplyResult(t *testing.T) {
	ctx := context.Background()

	newService := func(t *testing.T) (*DeliveryService, *mocks.MockAttemptRepository) {
		ctrl := gomock.NewController(t)
		t.Cleanup(ctrl.Finish)
		repo := mocks.NewMockAttemptRepository(ctrl)
		return NewDeliveryService(nil, repo, testDeliveryConfig(), logger.NewTestLogger(t)), repo
	}

	t.Run("SuccessClearsSchedule", func(t *testing.T) {
		svc, repo := newService(t)
		due := dueAttemptForTest("https://example.com", "")
		code := 200

		repo.EXPECT().
			Update(gomock.Any(), int64(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, change domain.AttemptUpdate) (*domain.DeliveryAttempt, error) {
				assert.Equal(t, domain.DeliveryStatusSuccess, change.Status)
				assert.True(t, change.ClearNextAttempt)
				return due.Attempt, nil
			})

		err := svc.ApplyResult(ctx, due, DeliveryResult{Success: true, StatusCode: &code})
		assert.NoError(t, err)
	})

	t.Run("RetryableSchedulesSuccessor", func(t *testing.T) {
		svc, repo := newService(t)
		due := dueAttemptForTest("https://example.com", "")
		code := 500
		details := "Target server responded with status 500: busy"

		// One repository call covers both the mark and the successor insert,
		// so a partial write can never leave the chain without a pending row.
		repo.EXPECT().
			ApplyRetry(gomock.Any(), due.Attempt, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *domain.DeliveryAttempt, change domain.AttemptUpdate, nextAt time.Time) (*domain.DeliveryAttempt, error) {
				assert.Equal(t, domain.DeliveryStatusFailedAttempt, change.Status)
				assert.True(t, change.ClearNextAttempt)
				require.NotNil(t, change.ErrorDetails)
				assert.Equal(t, details, *change.ErrorDetails)
				// First failure waits the first interval of the schedule
				assert.WithinDuration(t, time.Now().UTC().Add(10*time.Second), nextAt, 2*time.Second)
				return &domain.DeliveryAttempt{ID: 2, AttemptNumber: 2}, nil
			})

		err := svc.ApplyResult(ctx, due, DeliveryResult{Retryable: true, StatusCode: &code, ErrorDetails: &details})
		assert.NoError(t, err)
	})

	t.Run("SecondFailureUsesSecondInterval", func(t *testing.T) {
		svc, repo := newService(t)
		due := dueAttemptForTest("https://example.com", "")
		due.Attempt.AttemptNumber = 2
		details := "Request timed out after 1 seconds"

		repo.EXPECT().
			ApplyRetry(gomock.Any(), due.Attempt, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *domain.DeliveryAttempt, _ domain.AttemptUpdate, nextAt time.Time) (*domain.DeliveryAttempt, error) {
				assert.WithinDuration(t, time.Now().UTC().Add(30*time.Second), nextAt, 2*time.Second)
				return &domain.DeliveryAttempt{ID: 2, AttemptNumber: 3}, nil
			})

		err := svc.ApplyResult(ctx, due, DeliveryResult{Retryable: true, ErrorDetails: &details})
		assert.NoError(t, err)
	})

	t.Run("RetryWriteErrorPropagates", func(t *testing.T) {
		svc, repo := newService(t)
		due := dueAttemptForTest("https://example.com", "")
		code := 500
		details := "Target server responded with status 500: busy"

		repo.EXPECT().
			ApplyRetry(gomock.Any(), due.Attempt, gomock.Any(), gomock.Any()).
			Return(nil, assert.AnError)

		err := svc.ApplyResult(ctx, due, DeliveryResult{Retryable: true, StatusCode: &code, ErrorDetails: &details})
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("RetriesExhaustedPromotesToFailure", func(t *testing.T) {
		svc, repo := newService(t)
		due := dueAttemptForTest("https://example.com", "")
		due.Attempt.AttemptNumber = 5
		code := 500
		details := "Target server responded with status 500: busy"

		// No ApplyRetry expectation: the chain ends here
		repo.EXPECT().
			Update(gomock.Any(), int64(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, change domain.AttemptUpdate) (*domain.DeliveryAttempt, error) {
				assert.Equal(t, domain.DeliveryStatusFailure, change.Status)
				assert.True(t, change.ClearNextAttempt)
				return due.Attempt, nil
			})

		err := svc.ApplyResult(ctx, due, DeliveryResult{Retryable: true, StatusCode: &code, ErrorDetails: &details})
		assert.NoError(t, err)
	})

	t.Run("NonRetryableIsTerminalOnFirstAttempt", func(t *testing.T) {
		svc, repo := newService(t)
		due := dueAttemptForTest("https://example.com", "")
		code := 404
		details := "Target server responded with status 404: not found"

		repo.EXPECT().
			Update(gomock.Any(), int64(1), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, change domain.AttemptUpdate) (*domain.DeliveryAttempt, error) {
				assert.Equal(t, domain.DeliveryStatusFailure, change.Status)
				return due.Attempt, nil
			})

		err := svc.ApplyResult(ctx, due, DeliveryResult{Retryable: false, StatusCode: &code, ErrorDetails: &details})
		assert.NoError(t, err)
	})
}
