package cron

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/services/outbox"
	"github.com/kevin07696/ach-processor/pkg/resilience"
	"github.com/kevin07696/ach-processor/pkg/timeutil"
)

const maxDeadLetterPage = 1000

// OutboxService is the slice of the outbox dispatcher the cron endpoints drive
type OutboxService interface {
	DispatchDue(ctx context.Context) (*outbox.DispatchResult, error)
	ListDeadLetters(ctx context.Context, limit int) ([]*domain.DeadLetter, error)
	Requeue(ctx context.Context, deadLetterID string) (*domain.OutboxMessage, error)
}

var _ OutboxService = (*outbox.Dispatcher)(nil)

// OutboxHandler handles cron endpoints for sync-manager delivery and reconciliation
type OutboxHandler struct {
	service  OutboxService
	timeouts *resilience.TimeoutConfig
	auth     secretAuth
	logger   *zap.Logger
}

// NewOutboxHandler creates a new outbox cron handler
func NewOutboxHandler(service OutboxService, timeouts *resilience.TimeoutConfig, logger *zap.Logger, cronSecret string) *OutboxHandler {
	if timeouts == nil {
		timeouts = resilience.DefaultTimeoutConfig()
	}
	return &OutboxHandler{
		service:  service,
		timeouts: timeouts,
		auth:     secretAuth{secret: cronSecret, logger: logger},
		logger:   logger,
	}
}

// RegisterRoutes mounts the cron endpoints on mux
func (h *OutboxHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /cron/dispatch-outbox", h.auth.guard(h.DispatchOutbox))
	mux.HandleFunc("GET /cron/dead-letters", h.auth.guard(h.ListDeadLetters))
	mux.HandleFunc("POST /cron/dead-letters/{id}/requeue", h.auth.guard(h.Requeue))
	mux.HandleFunc("GET /cron/health", h.HealthCheck)
}

// DispatchOutboxResponse is the body returned by DispatchOutbox
type DispatchOutboxResponse struct {
	ProcessedAt string `json:"processed_at"`
	outbox.DispatchResult
	Success bool `json:"success"`
}

// DispatchOutbox handles POST /cron/dispatch-outbox. It runs one dispatch pass
// and answers 206 when any message failed to settle.
func (h *OutboxHandler) DispatchOutbox(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Outbox dispatch cron job triggered",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()),
	)

	ctx, cancel := h.timeouts.CronContext(r.Context())
	defer cancel()

	result, err := h.service.DispatchDue(ctx)
	if err != nil {
		h.logger.Error("Outbox dispatch failed", zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	resp := DispatchOutboxResponse{
		Success:        result.Errors == 0,
		DispatchResult: *result,
		ProcessedAt:    timeutil.Now().Format(time.RFC3339),
	}

	h.logger.Info("Outbox dispatch completed",
		zap.Int("claimed", result.Claimed),
		zap.Int("delivered", result.Delivered),
		zap.Int("retried", result.Retried),
		zap.Int("dead_lettered", result.DeadLettered),
		zap.Int("errors", result.Errors),
	)

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusPartialContent
	}
	respondJSON(w, h.logger, status, resp)
}

// ListDeadLetters handles GET /cron/dead-letters?limit=N
func (h *OutboxHandler) ListDeadLetters(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxDeadLetterPage {
			respondError(w, h.logger, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}

	ctx, cancel := h.timeouts.CronContext(r.Context())
	defer cancel()

	letters, err := h.service.ListDeadLetters(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to list dead letters", zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success":      true,
		"count":        len(letters),
		"dead_letters": letters,
	})
}

// Requeue handles POST /cron/dead-letters/{id}/requeue
func (h *OutboxHandler) Requeue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	ctx, cancel := h.timeouts.CronContext(r.Context())
	defer cancel()

	msg, err := h.service.Requeue(ctx, id)
	if err != nil {
		if domain.IsNotFoundError(err) {
			respondError(w, h.logger, http.StatusNotFound, "dead letter not found")
			return
		}
		h.logger.Error("Failed to requeue dead letter", zap.String("dead_letter_id", id), zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": msg,
	})
}

// HealthCheck handles GET /cron/health for monitoring
func (h *OutboxHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   timeutil.Now().Format(time.RFC3339),
	})
}
