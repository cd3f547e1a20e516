package metrics_server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	ports "feedstack-post-service/internal/domain/ports/output"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer exposes the default Prometheus registry on /metrics.
type MetricsServer struct {
	server  *http.Server
	address string
	port    int
	log     ports.Logger
}

func NewMetricsServer(address string, port int, log ports.Logger) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", address, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		address: address,
		port:    port,
		log:     log,
	}
}

func (s *MetricsServer) Run() error {
	s.log.Info("Starting metrics server", slog.String("address", s.address), slog.Int("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *MetricsServer) Handler() http.Handler {
	return s.server.Handler
}
