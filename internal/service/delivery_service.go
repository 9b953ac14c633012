package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hookrelay/hookrelay/config"
	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

// errorBodySnippetLimit bounds how much of the target's response body is
// captured into error_details.
const errorBodySnippetLimit = 200

// retryableStatusCodes are the target responses treated as transient.
var retryableStatusCodes = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// DeliveryResult is the classified outcome of one delivery request.
// Success is terminal. Retryable distinguishes a transient failure from a
// terminal one; StatusCode is nil for timeouts and transport errors.
type DeliveryResult struct {
	Success      bool
	Retryable    bool
	StatusCode   *int
	ErrorDetails *string
}

// DeliveryService executes delivery attempts against target endpoints and
// writes the resulting state transitions back to the store.
type DeliveryService struct {
	client   *http.Client
	attempts domain.AttemptRepository
	cfg      config.DeliveryConfig
	logger   logger.Logger
}

// NewDeliveryService creates a new delivery service. A nil client gets a
// default one honoring the configured per-request timeout.
func NewDeliveryService(client *http.Client, attempts domain.AttemptRepository, cfg config.DeliveryConfig, log logger.Logger) *DeliveryService {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &DeliveryService{
		client:   client,
		attempts: attempts,
		cfg:      cfg,
		logger:   log,
	}
}

// Deliver performs one POST of the stored payload bytes to the subscription's
// target and classifies the outcome. It never returns an error: every
// failure mode maps to a DeliveryResult.
func (s *DeliveryService) Deliver(ctx context.Context, due *domain.DueAttempt) DeliveryResult {
	sub := due.Subscription
	payload := due.Payload

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.TargetURL, bytes.NewReader(payload.Body))
	if err != nil {
		details := fmt.Sprintf("Unexpected error: %v", err)
		return DeliveryResult{Retryable: true, ErrorDetails: &details}
	}

	req.Header.Set("Content-Type", "application/json")
	if sub.SecretKey != "" {
		req.Header.Set("X-Hub-Signature-256", SignPayload(sub.SecretKey, payload.Body))
	}
	if payload.EventType != "" {
		req.Header.Set("X-Webhook-Event", payload.EventType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return s.classifyRequestError(err)
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return DeliveryResult{Success: true, StatusCode: &code}
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodySnippetLimit))
	details := fmt.Sprintf("Target server responded with status %d: %s", code, snippet)

	return DeliveryResult{
		Retryable:    retryableStatusCodes[code],
		StatusCode:   &code,
		ErrorDetails: &details,
	}
}

func (s *DeliveryService) classifyRequestError(err error) DeliveryResult {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(), errors.Is(err, context.DeadlineExceeded):
		details := fmt.Sprintf("Request timed out after %d seconds", int(s.cfg.Timeout.Seconds()))
		return DeliveryResult{Retryable: true, ErrorDetails: &details}
	case errors.As(err, new(*net.OpError)):
		details := fmt.Sprintf("Connection error: %v", err)
		return DeliveryResult{Retryable: true, ErrorDetails: &details}
	default:
		details := fmt.Sprintf("Unexpected error: %v", err)
		return DeliveryResult{Retryable: true, ErrorDetails: &details}
	}
}

// ApplyResult writes the state transition for a delivery outcome. A
// successful or terminally failed row has next_attempt_at cleared; a
// retryable failure within the retry budget marks the row failed_attempt and
// schedules the successor pending attempt.
func (s *DeliveryService) ApplyResult(ctx context.Context, due *domain.DueAttempt, result DeliveryResult) error {
	attempt := due.Attempt
	now := time.Now().UTC()

	log := s.logger.WithFields(map[string]interface{}{
		"webhook_id":     attempt.WebhookID,
		"attempt_number": attempt.AttemptNumber,
	})

	if result.Success {
		_, err := s.attempts.Update(ctx, attempt.ID, domain.AttemptUpdate{
			Status:           domain.DeliveryStatusSuccess,
			StatusCode:       result.StatusCode,
			ClearNextAttempt: true,
		})
		if err != nil {
			return fmt.Errorf("failed to record success: %w", err)
		}
		log.Info("Delivery succeeded")
		return nil
	}

	if result.Retryable && attempt.AttemptNumber < s.cfg.MaxRetryAttempts {
		nextAt := now.Add(s.cfg.RetryDelay(attempt.AttemptNumber))
		_, err := s.attempts.ApplyRetry(ctx, attempt, domain.AttemptUpdate{
			Status:           domain.DeliveryStatusFailedAttempt,
			StatusCode:       result.StatusCode,
			ErrorDetails:     result.ErrorDetails,
			ClearNextAttempt: true,
		}, nextAt)
		if err != nil {
			return fmt.Errorf("failed to schedule retry: %w", err)
		}
		log.WithField("next_attempt_at", nextAt).Warn("Delivery failed, retry scheduled")
		return nil
	}

	_, err := s.attempts.Update(ctx, attempt.ID, domain.AttemptUpdate{
		Status:           domain.DeliveryStatusFailure,
		StatusCode:       result.StatusCode,
		ErrorDetails:     result.ErrorDetails,
		ClearNextAttempt: true,
	})
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	log.Error("Delivery failed terminally")
	return nil
}
