package cron

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// secretAuth checks the shared cron secret carried in X-Cron-Secret or an
// Authorization bearer token. An empty configured secret rejects everything.
type secretAuth struct {
	secret string
	logger *zap.Logger
}

func (a secretAuth) authenticate(r *http.Request) bool {
	if a.secret == "" {
		return false
	}

	if s := r.Header.Get("X-Cron-Secret"); s != "" {
		return a.matches(s)
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return a.matches(token)
	}

	return false
}

func (a secretAuth) matches(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.secret)) == 1
}

// guard wraps next with secret authentication
func (a secretAuth) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.authenticate(r) {
			a.logger.Warn("Unauthorized cron request",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			respondError(w, a.logger, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, statusCode int, message string) {
	respondJSON(w, logger, statusCode, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
