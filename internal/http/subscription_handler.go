package http

import (
	"encoding/json"
	"net/http"

	"github.com/hookrelay/hookrelay/internal/domain"
	"github.com/hookrelay/hookrelay/internal/service"
	"github.com/hookrelay/hookrelay/pkg/logger"
)

// SubscriptionHandler handles subscription CRUD endpoints
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
	logger        logger.Logger
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions *service.SubscriptionService, logger logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// RegisterRoutes registers the subscription routes
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/subscriptions", h.handleCreate)
	mux.HandleFunc("GET /api/v1/subscriptions", h.handleList)
	mux.HandleFunc("GET /api/v1/subscriptions/{id}", h.handleGet)
	mux.HandleFunc("PUT /api/v1/subscriptions/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/v1/subscriptions/{id}", h.handleDelete)
}

func (h *SubscriptionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input service.CreateSubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.subscriptions.Create(r.Context(), input)
	if err != nil {
		if !domain.IsValidation(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to create subscription")
		}
		writeDomainError(w, err, "Failed to create subscription")
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r.URL.Query(), 100, 1000)

	subs, err := h.subscriptions.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to list subscriptions")
		WriteJSONError(w, "Failed to list subscriptions", http.StatusInternalServerError)
		return
	}
	if subs == nil {
		subs = []*domain.Subscription{}
	}

	writeJSON(w, http.StatusOK, subs)
}

func (h *SubscriptionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	sub, err := h.subscriptions.Get(r.Context(), id)
	if err != nil {
		if !domain.IsNotFound(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to get subscription")
		}
		writeDomainError(w, err, "Failed to get subscription")
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var input service.UpdateSubscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sub, err := h.subscriptions.Update(r.Context(), id, input)
	if err != nil {
		if !domain.IsNotFound(err) && !domain.IsValidation(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to update subscription")
		}
		writeDomainError(w, err, "Failed to update subscription")
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.subscriptions.Delete(r.Context(), id); err != nil {
		if !domain.IsNotFound(err) {
			h.logger.WithField("error", err.Error()).Error("Failed to delete subscription")
		}
		writeDomainError(w, err, "Failed to delete subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
