package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthChecker_Check(t *testing.T) {
	h := NewHealthChecker()
	h.AddDatabase(pingerFunc(func(context.Context) error { return nil }))
	h.AddCheck("vault", func(context.Context) error { return nil })

	status := h.Check(context.Background())
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, map[string]string{"database": "healthy", "vault": "healthy"}, status.Checks)

	h.AddCheck("vault", func(context.Context) error { return errors.New("sealed") })
	status = h.Check(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "unhealthy: sealed", status.Checks["vault"])
}

func TestMetricsMux(t *testing.T) {
	h := NewHealthChecker()
	mux := NewMetricsMux(h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h.SetReady(true)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h.AddCheck("database", func(context.Context) error { return errors.New("down") })
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy: down")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPMiddleware_LabelsByPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/things/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := HTTPMiddleware(mux)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET /v1/things/{id}", "418"))
	for _, id := range []string{"a", "b"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/things/"+id, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET /v1/things/{id}", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecordACHPayment(t *testing.T) {
	before := testutil.ToFloat64(achPaymentsTotal.WithLabelValues("debit", "27", "pending"))
	RecordACHPayment("debit", "27", "pending", "usd", 5000, 30, 0.01)
	assert.Equal(t, 1.0, testutil.ToFloat64(achPaymentsTotal.WithLabelValues("debit", "27", "pending"))-before)
}
