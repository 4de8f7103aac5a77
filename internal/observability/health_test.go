package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func healthz(t *testing.T, h *HealthChecker) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	return rec.Code, rec.Body.String()
}

func grpcStatus(t *testing.T, h *HealthChecker, service string) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.grpcHealth.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthChecker_AcceptorReadiness(t *testing.T) {
	h := NewHealthChecker(zap.NewNop(), nil)

	code, body := healthz(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "NOT_READY", body)

	h.SetAcceptorReady(true)
	code, body = healthz(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, grpcStatus(t, h, AcceptorService))
}

func TestHealthChecker_KafkaGatesReadiness(t *testing.T) {
	h := NewHealthChecker(zap.NewNop(), nil)
	h.SetAcceptorReady(true)
	h.SetKafkaReady(false)

	assert.False(t, h.Ready())
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, grpcStatus(t, h, ""))

	h.SetKafkaReady(true)
	assert.True(t, h.Ready())
}

func TestHealthChecker_MetricsRoute(t *testing.T) {
	m := NewMetrics()
	h := NewHealthChecker(zap.NewNop(), m.Handler())

	rec := httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHealthChecker(zap.NewNop(), nil)
	rec = httptest.NewRecorder()
	h.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthChecker_Shutdown(t *testing.T) {
	h := NewHealthChecker(zap.NewNop(), nil)
	h.SetAcceptorReady(true)
	require.NoError(t, h.Shutdown(context.Background()))
	assert.False(t, h.Ready())
}
