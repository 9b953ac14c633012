package http

import (
	"net/http"

	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/internal/service"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

// StatsHandler handles delivery statistics endpoints
type StatsHandler struct {
	subscriptions *service.SubscriptionService
	attempts      domain.AttemptRepository
	logger        logger.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(subscriptions *service.SubscriptionService, attempts domain.AttemptRepository, logger logger.Logger) *StatsHandler {
	return &StatsHandler{
		subscriptions: subscriptions,
		attempts:      attempts,
		logger:        logger,
	}
}

// RegisterRoutes registers the stats routes
func (h *StatsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/stats/subscription/{id}", h.handleSubscriptionStats)
	mux.HandleFunc("GET /api/v1/stats/recent-attempts/{id}", h.handleRecentAttempts)
}

func (h *StatsHandler) handleSubscriptionStats(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sub, err := h.subscriptions.Get(r.Context(), id)
	if err != nil {
		if !domain.IsNotFound(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to get subscription")
		}
		writeDomainError(w, err, "Failed to get delivery stats")
		return
	}

	stats, err := h.attempts.StatsBySubscription(r.Context(), id)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to aggregate delivery stats")
		WriteJSONError(w, "Failed to get delivery stats", http.StatusInternalServerError)
		return
	}
	stats.TargetURL = sub.TargetURL

	writeJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) handleRecentAttempts(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := h.subscriptions.Get(r.Context(), id); err != nil {
		if !domain.IsNotFound(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to get subscription")
		}
		writeDomainError(w, err, "Failed to get recent attempts")
		return
	}

	limit, _ := parsePagination(r.URL.Query(), 20, 200)

	attempts, err := h.attempts.ListRecentBySubscription(r.Context(), id, limit)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list recent attempts")
		WriteJSONError(w, "Failed to get recent attempts", http.StatusInternalServerError)
		return
	}
	if attempts == nil {
		attempts = []*domain.DeliveryAttempt{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscription_id": id,
		"attempts":        attempts,
	})
}
