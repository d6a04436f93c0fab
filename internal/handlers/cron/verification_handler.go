package cron

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/domain/ports"
	"github.com/kevin07696/ach-processor/pkg/resilience"
	"github.com/kevin07696/ach-processor/pkg/timeutil"
)

// VerificationHandler records completed micro-deposit verifications reported by
// the bank-verification job
type VerificationHandler struct {
	store    ports.VerificationStore
	timeouts *resilience.TimeoutConfig
	auth     secretAuth
	logger   *zap.Logger
	now      func() time.Time
}

// NewVerificationHandler creates a new verification cron handler
func NewVerificationHandler(store ports.VerificationStore, timeouts *resilience.TimeoutConfig, logger *zap.Logger, cronSecret string) *VerificationHandler {
	if timeouts == nil {
		timeouts = resilience.DefaultTimeoutConfig()
	}
	return &VerificationHandler{
		store:    store,
		timeouts: timeouts,
		auth:     secretAuth{secret: cronSecret, logger: logger},
		logger:   logger,
		now:      timeutil.Now,
	}
}

// RegisterRoutes mounts the verification endpoint on mux
func (h *VerificationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /cron/verify-accounts", h.auth.guard(h.VerifyAccounts))
}

// VerifyAccountsRequest lists accounts whose micro-deposits were confirmed
type VerifyAccountsRequest struct {
	Accounts []domain.BankAccount `json:"accounts"`
}

// VerifyAccountsResponse reports how many accounts were recorded
type VerifyAccountsResponse struct {
	ProcessedAt string   `json:"processed_at"`
	Errors      []string `json:"errors,omitempty"`
	Verified    int      `json:"verified"`
	Skipped     int      `json:"skipped"`
	Success     bool     `json:"success"`
}

// VerifyAccounts handles POST /cron/verify-accounts. Accounts with an invalid
// routing number are skipped.
func (h *VerificationHandler) VerifyAccounts(w http.ResponseWriter, r *http.Request) {
	var req VerifyAccountsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Accounts) == 0 {
		respondError(w, h.logger, http.StatusBadRequest, "accounts must not be empty")
		return
	}

	ctx, cancel := h.timeouts.CronContext(r.Context())
	defer cancel()

	resp := VerifyAccountsResponse{}
	at := h.now()
	for i := range req.Accounts {
		account := &req.Accounts[i]
		if !domain.ValidateRoutingNumber(account.RoutingNumber) || !domain.IsDigits(account.AccountNumber) {
			resp.Skipped++
			continue
		}
		if err := h.store.MarkVerified(ctx, account, at); err != nil {
			h.logger.Error("Failed to record account verification",
				zap.String("account_last4", account.Last4()),
				zap.Error(err),
			)
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}
		resp.Verified++
	}

	resp.Success = len(resp.Errors) == 0
	resp.ProcessedAt = at.UTC().Format(time.RFC3339)

	h.logger.Info("Account verification completed",
		zap.Int("verified", resp.Verified),
		zap.Int("skipped", resp.Skipped),
		zap.Int("errors", len(resp.Errors)),
	)

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusPartialContent
	}
	respondJSON(w, h.logger, status, resp)
}
