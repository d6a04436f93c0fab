package ach

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kevin07696/ach-processor/internal/domain"
	"github.com/kevin07696/ach-processor/internal/nacha"
	achsvc "github.com/kevin07696/ach-processor/internal/services/ach"
	"github.com/kevin07696/ach-processor/internal/services/ports"
	"github.com/kevin07696/ach-processor/pkg/resilience"
	"github.com/kevin07696/ach-processor/pkg/timeutil"
)

const maxBodyBytes = 1 << 20

// Handler serves the ACH JSON API
type Handler struct {
	service   ports.ACHService
	validator ports.BankAccountValidator
	timeouts  *resilience.TimeoutConfig
	logger    *zap.Logger
}

// NewHandler creates a new ACH handler
func NewHandler(service ports.ACHService, validator ports.BankAccountValidator, timeouts *resilience.TimeoutConfig, logger *zap.Logger) *Handler {
	if timeouts == nil {
		timeouts = resilience.DefaultTimeoutConfig()
	}
	return &Handler{service: service, validator: validator, timeouts: timeouts, logger: logger}
}

// RegisterRoutes mounts the API on mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/ach/debits", h.CreateDebit)
	mux.HandleFunc("POST /v1/ach/credits", h.CreateCredit)
	mux.HandleFunc("POST /v1/ach/recurring", h.CreateRecurring)
	mux.HandleFunc("GET /v1/ach/recurring/{id}", h.GetRecurring)
	mux.HandleFunc("POST /v1/ach/recurring/{id}/payments", h.RecordRecurringPayment)
	mux.HandleFunc("POST /v1/ach/recurring/{id}/cancel", h.CancelRecurring)
	mux.HandleFunc("POST /v1/ach/bank-accounts/validate", h.ValidateBankAccount)
	mux.HandleFunc("POST /v1/ach/nacha-files", h.GenerateNACHAFile)
	mux.HandleFunc("GET /v1/ach/fees", h.QuoteFee)
	mux.HandleFunc("GET /v1/ach/return-codes/{code}", h.LookupReturnCode)
}

// CreateDebit handles POST /v1/ach/debits
func (h *Handler) CreateDebit(w http.ResponseWriter, r *http.Request) {
	h.createPayment(w, r, domain.DirectionDebit)
}

// CreateCredit handles POST /v1/ach/credits
func (h *Handler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	h.createPayment(w, r, domain.DirectionCredit)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request, direction domain.Direction) {
	var body PaymentRequest
	if !h.decode(w, r, &body) {
		return
	}
	if body.IdempotencyKey == "" {
		body.IdempotencyKey = r.Header.Get("Idempotency-Key")
	}

	req, err := body.toDomain(direction)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, domain.ErrorCodeValidationFailed, err.Error())
		return
	}

	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	var result *domain.ACHPaymentResult
	if direction == domain.DirectionCredit {
		result, err = h.service.ProcessACHCredit(ctx, req)
	} else {
		result, err = h.service.ProcessACHDebit(ctx, req)
	}
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.respondJSON(w, http.StatusAccepted, result)
}

// CreateRecurring handles POST /v1/ach/recurring
func (h *Handler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	var body RecurringRequest
	if !h.decode(w, r, &body) {
		return
	}

	setup, err := body.toDomain()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, domain.ErrorCodeValidationFailed, err.Error())
		return
	}

	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	result, err := h.service.SetupRecurringACH(ctx, setup)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, result)
}

// GetRecurring handles GET /v1/ach/recurring/{id}
func (h *Handler) GetRecurring(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	schedule, err := h.service.GetRecurringSchedule(ctx, r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, schedule)
}

// RecordRecurringPayment handles POST /v1/ach/recurring/{id}/payments
func (h *Handler) RecordRecurringPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	schedule, err := h.service.RecordRecurringPayment(ctx, r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, schedule)
}

// CancelRecurring handles POST /v1/ach/recurring/{id}/cancel
func (h *Handler) CancelRecurring(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	schedule, err := h.service.CancelRecurringSchedule(ctx, r.PathValue("id"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, schedule)
}

// ValidateBankAccount handles POST /v1/ach/bank-accounts/validate. An invalid
// account is a 200 with valid=false; only lookup failures are errors.
func (h *Handler) ValidateBankAccount(w http.ResponseWriter, r *http.Request) {
	var account domain.BankAccount
	if !h.decode(w, r, &account) {
		return
	}

	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	result, err := h.validator.ValidateBankAccount(ctx, &account)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// GenerateNACHAFile handles POST /v1/ach/nacha-files and returns the file as text
func (h *Handler) GenerateNACHAFile(w http.ResponseWriter, r *http.Request) {
	var body NACHAFileRequest
	if !h.decode(w, r, &body) {
		return
	}

	entries := make([]*domain.ACHPaymentRequest, 0, len(body.Entries))
	for i := range body.Entries {
		entry, err := body.Entries[i].toDomain(body.Entries[i].Direction)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, domain.ErrorCodeValidationFailed, fmt.Sprintf("entry %d: %v", i+1, err))
			return
		}
		entries = append(entries, entry)
	}

	ctx, cancel := h.timeouts.HandlerContext(r.Context())
	defer cancel()

	file, err := h.service.GenerateNACHAFile(ctx, entries)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=us-ascii")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ach-%s.txt"`, timeutil.Now().Format("20060102-150405")))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(file)); err != nil {
		h.logger.Error("Failed to write NACHA file", zap.Error(err))
	}
}

// FeeQuote is the response of GET /v1/ach/fees
type FeeQuote struct {
	Amount        int64  `json:"amount"`
	Fee           int64  `json:"fee"`
	AmountDisplay string `json:"amount_display"`
	FeeDisplay    string `json:"fee_display"`
}

// QuoteFee handles GET /v1/ach/fees?amount=5000
func (h *Handler) QuoteFee(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseInt(r.URL.Query().Get("amount"), 10, 64)
	if err != nil || amount <= 0 {
		h.respondError(w, http.StatusBadRequest, domain.ErrorCodeValidationAmountInvalid, "amount must be a positive integer number of cents")
		return
	}

	fee := achsvc.CalculateACHFee(amount)
	h.respondJSON(w, http.StatusOK, FeeQuote{
		Amount:        amount,
		Fee:           fee,
		AmountDisplay: achsvc.FormatAmount(amount),
		FeeDisplay:    achsvc.FormatAmount(fee),
	})
}

// LookupReturnCode handles GET /v1/ach/return-codes/{code}
func (h *Handler) LookupReturnCode(w http.ResponseWriter, r *http.Request) {
	reason, ok := nacha.LookupReturnReason(r.PathValue("code"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "RETURN_CODE_NOT_FOUND", "unknown return code")
		return
	}
	h.respondJSON(w, http.StatusOK, reason)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, domain.ErrorCodeValidationFailed, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// statusFor maps domain error codes to HTTP status codes
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeValidationFailed, domain.ErrorCodeValidationAmountInvalid, domain.ErrorCodeValidationMissingField:
		return http.StatusBadRequest
	case domain.ErrorCodeScheduleNotFound, domain.ErrorCodeOutboxMessageNotFound:
		return http.StatusNotFound
	case domain.ErrorCodeScheduleInactive:
		return http.StatusConflict
	case domain.ErrorCodeNACHAEncodingFailed:
		return http.StatusUnprocessableEntity
	case domain.ErrorCodeLiveModeNotImplemented:
		return http.StatusNotImplemented
	case domain.ErrorCodeTokenizationFailed, domain.ErrorCodeVerificationFailed, domain.ErrorCodeQueueFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		h.logger.Error("Unhandled ACH error", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, domain.ErrorCodeInternalError, "internal error")
		return
	}

	status := statusFor(domainErr.Code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("ACH request failed", zap.String("code", string(domainErr.Code)), zap.Error(err))
	}

	h.writeJSON(w, status, errorResponse{
		Success: false,
		Error: errorBody{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		},
	})
}

type errorBody struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

type errorResponse struct {
	Error   errorBody `json:"error"`
	Success bool      `json:"success"`
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code domain.ErrorCode, message string) {
	h.writeJSON(w, status, errorResponse{Error: errorBody{Code: string(code), Message: message}})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{"success": true, "data": data})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
