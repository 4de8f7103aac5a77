package observability

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// AcceptorService is the gRPC health service name reported for the FIX acceptor
const AcceptorService = "fix.acceptor"

// HealthChecker reports readiness over gRPC and HTTP. The process is healthy
// once the FIX acceptor is listening and, when drop copy is on, Kafka is reachable.
type HealthChecker struct {
	grpcHealth    *health.Server
	httpServer    *http.Server
	metrics       http.Handler
	logger        *zap.Logger
	mu            sync.RWMutex
	acceptorReady bool
	kafkaReady    bool
	usesKafka     bool
	stopping      bool
}

// NewHealthChecker creates a new health checker. metrics may be nil.
func NewHealthChecker(logger *zap.Logger, metrics http.Handler) *HealthChecker {
	return &HealthChecker{
		grpcHealth: health.NewServer(),
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterGRPC registers the health service with the gRPC server
func (h *HealthChecker) RegisterGRPC(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.grpcHealth)
	h.syncGRPC()
}

// Handler returns the HTTP routes: /healthz and, if configured, /metrics
func (h *HealthChecker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealthz)
	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics)
	}
	return mux
}

// StartHTTPServer starts the HTTP health and metrics server
func (h *HealthChecker) StartHTTPServer(addr string) error {
	h.httpServer = &http.Server{
		Addr:    addr,
		Handler: h.Handler(),
	}

	h.logger.Info("starting HTTP health server", zap.String("addr", addr))
	return h.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the health checker
func (h *HealthChecker) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.stopping = true
	h.mu.Unlock()
	h.grpcHealth.Shutdown()

	if h.httpServer != nil {
		return h.httpServer.Shutdown(ctx)
	}
	return nil
}

// SetAcceptorReady records whether the FIX acceptor is accepting connections
func (h *HealthChecker) SetAcceptorReady(ready bool) {
	h.mu.Lock()
	h.acceptorReady = ready
	h.mu.Unlock()
	h.syncGRPC()
}

// SetKafkaReady sets the drop copy Kafka client readiness status
func (h *HealthChecker) SetKafkaReady(ready bool) {
	h.mu.Lock()
	h.kafkaReady = ready
	h.usesKafka = true
	h.mu.Unlock()
	h.syncGRPC()
}

// Ready reports the combined readiness
func (h *HealthChecker) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.stopping && h.acceptorReady && (!h.usesKafka || h.kafkaReady)
}

func (h *HealthChecker) syncGRPC() {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if h.Ready() {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	h.grpcHealth.SetServingStatus("", status)
	h.grpcHealth.SetServingStatus(AcceptorService, status)
}

func (h *HealthChecker) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.Ready() {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte("NOT_READY"))
}
