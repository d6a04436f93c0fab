package cron

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ach-processor/internal/domain/ports"
	"github.com/kevin07696/ach-processor/pkg/resilience"
	"github.com/kevin07696/ach-processor/pkg/timeutil"
)

const maxDuePage = 500

// RecurringHandler lets the external billing scheduler pull schedules whose next
// payment date has arrived. Charging them goes back through the public API.
type RecurringHandler struct {
	store    ports.RecurringScheduleStore
	timeouts *resilience.TimeoutConfig
	auth     secretAuth
	logger   *zap.Logger
	now      func() time.Time
}

// NewRecurringHandler creates a new recurring schedule cron handler
func NewRecurringHandler(store ports.RecurringScheduleStore, timeouts *resilience.TimeoutConfig, logger *zap.Logger, cronSecret string) *RecurringHandler {
	if timeouts == nil {
		timeouts = resilience.DefaultTimeoutConfig()
	}
	return &RecurringHandler{
		store:    store,
		timeouts: timeouts,
		auth:     secretAuth{secret: cronSecret, logger: logger},
		logger:   logger,
		now:      timeutil.Now,
	}
}

// RegisterRoutes mounts the due-schedule endpoint on mux
func (h *RecurringHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /cron/recurring/due", h.auth.guard(h.ListDue))
}

// ListDue handles GET /cron/recurring/due?as_of=YYYY-MM-DD&limit=N.
// as_of defaults to now.
func (h *RecurringHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	asOf := h.now()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := timeutil.ParseDate(raw)
		if err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "as_of must be YYYY-MM-DD or RFC3339")
			return
		}
		asOf = parsed
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxDuePage {
			respondError(w, h.logger, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	ctx, cancel := h.timeouts.CronContext(r.Context())
	defer cancel()

	due, err := h.store.ListDue(ctx, asOf, limit)
	if err != nil {
		h.logger.Error("Failed to list due schedules", zap.Error(err))
		respondError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("Due recurring schedules listed",
		zap.Time("as_of", asOf),
		zap.Int("count", len(due)),
	)

	respondJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success":   true,
		"as_of":     asOf.UTC().Format(time.RFC3339),
		"count":     len(due),
		"schedules": due,
	})
}
