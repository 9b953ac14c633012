package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hookrelay/hookrelay/config"
	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

// cleanupInterval is how often the retention delete runs.
const cleanupInterval = time.Hour

// Worker polls for due delivery attempts and fans them out to the delivery
// service in bounded chunks. One worker process owns the delivery loop;
// SKIP LOCKED at claim time keeps an accidental second poller harmless.
type Worker struct {
	attempts    domain.AttemptRepository
	delivery    *DeliveryService
	deliveryCfg config.DeliveryConfig
	workerCfg   config.WorkerConfig
	logger      logger.Logger

	lastCleanup time.Time
}

// NewWorker creates a new delivery worker
func NewWorker(attempts domain.AttemptRepository, delivery *DeliveryService, deliveryCfg config.DeliveryConfig, workerCfg config.WorkerConfig, log logger.Logger) *Worker {
	return &Worker{
		attempts:    attempts,
		delivery:    delivery,
		deliveryCfg: deliveryCfg,
		workerCfg:   workerCfg,
		logger:      log,
	}
}

// Run executes the polling loop until ctx is cancelled. In-flight deliveries
// of the current batch finish before Run returns. Errors inside a cycle are
// logged and never stop the loop. The poll interval only applies after an
// empty or failed cycle; while a backlog yields work, the next claim follows
// immediately.
func (w *Worker) Run(ctx context.Context) {
	w.logger.WithFields(map[string]interface{}{
		"poll_interval": w.workerCfg.PollInterval.String(),
		"batch_size":    w.workerCfg.BatchSize,
	}).Info("Delivery worker started")

	for {
		processed, err := w.runCycle(ctx)
		if err != nil {
			w.logger.Error(fmt.Sprintf("Worker cycle failed: %v", err))
		}

		if err == nil && processed > 0 {
			select {
			case <-ctx.Done():
				w.logger.Info("Delivery worker stopped")
				return
			default:
			}
			continue
		}

		select {
		case <-ctx.Done():
			w.logger.Info("Delivery worker stopped")
			return
		case <-time.After(w.workerCfg.PollInterval):
		}
	}
}

// runCycle claims one batch, delivers it in chunks, then runs the hourly
// retention cleanup when due. It returns the number of attempts claimed so
// the loop can decide whether to sleep.
func (w *Worker) runCycle(ctx context.Context) (int, error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error(fmt.Sprintf("Worker cycle panicked: %v", r))
		}
	}()

	now := time.Now().UTC()

	due, err := w.attempts.ClaimDue(ctx, w.workerCfg.BatchSize, now, w.deliveryCfg.MaxRetryAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to claim due attempts: %w", err)
	}

	if len(due) > 0 {
		w.logger.WithField("count", len(due)).Info("Processing delivery batch")
		w.processBatch(ctx, due)
	}

	w.maybeCleanup(ctx, now)
	return len(due), nil
}

// processBatch delivers the batch in chunks of at most ChunkSize concurrent
// requests. A failed write-back is logged; the attempt stays claimable on
// its existing schedule.
func (w *Worker) processBatch(ctx context.Context, due []*domain.DueAttempt) {
	chunkSize := w.workerCfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = len(due)
	}

	for start := 0; start < len(due); start += chunkSize {
		end := start + chunkSize
		if end > len(due) {
			end = len(due)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, item := range due[start:end] {
			item := item
			g.Go(func() error {
				result := w.delivery.Deliver(gctx, item)
				if err := w.delivery.ApplyResult(gctx, item, result); err != nil {
					w.logger.WithField("webhook_id", item.Attempt.WebhookID).
						Error(fmt.Sprintf("Failed to apply delivery result: %v", err))
				}
				return nil
			})
		}
		_ = g.Wait()
	}
}

// maybeCleanup deletes attempts older than the retention window, at most
// once per hour.
func (w *Worker) maybeCleanup(ctx context.Context, now time.Time) {
	if now.Sub(w.lastCleanup) < cleanupInterval {
		return
	}
	w.lastCleanup = now

	threshold := now.Add(-w.deliveryCfg.LogRetention)
	deleted, err := w.attempts.DeleteOlderThan(ctx, threshold)
	if err != nil {
		w.logger.Error(fmt.Sprintf("Retention cleanup failed: %v", err))
		return
	}
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("Retention cleanup removed old delivery logs")
	}
}
