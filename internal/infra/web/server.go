package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"bibliotech-bot/internal/config"
	"bibliotech-bot/internal/domain/ports/repository"
)

// Server exposes the operational endpoints: Prometheus metrics and a
// liveness probe with the current subscriber count.
type Server struct {
	cfg      *config.Config
	registry repository.SubscriberRegistry
	log      *zerolog.Logger
	server   *http.Server
}

func NewServer(cfg *config.Config, registry repository.SubscriberRegistry, logger *zerolog.Logger) *Server {
	componentLogger := logger.With().Str("component", "web").Logger()
	return &Server{
		cfg:      cfg,
		registry: registry,
		log:      &componentLogger,
	}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", s.handleHealthCheck)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Admin.Port),
		Handler: mux,
	}

	s.log.Info().Int("port", s.cfg.Admin.Port).Msg("ops server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK subscribers=%d", s.registry.SubscriberCount(r.Context()))
}
