package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/analytics"
	"bress-gateway/pkg/config"
	"bress-gateway/pkg/identity"
)

// Server exposes the gateway's REST and WebSocket surface.
type Server struct {
	cfg     *config.Config
	logger  *logrus.Logger
	factory *identity.URLFactory
	tracker *analytics.Tracker
	store   analytics.Store
	hub     *Hub

	mux        *http.ServeMux
	httpServer *http.Server
	startTime  time.Time
}

// NewServer builds the server and its routes. The shared tracker serves
// page-level events; newTracker mints one tracker per widget session.
func NewServer(
	cfg *config.Config,
	logger *logrus.Logger,
	factory *identity.URLFactory,
	tracker *analytics.Tracker,
	store analytics.Store,
	newTracker func() *analytics.Tracker,
) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		factory:   factory,
		tracker:   tracker,
		store:     store,
		mux:       http.NewServeMux(),
		startTime: time.Now(),
	}
	s.hub = NewHub(logger, cfg, newTracker)

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/status", s.handleStatus)
	if cfg.HTTP.EnableMetrics {
		s.mux.Handle("/metrics", promhttp.Handler())
	}

	s.mux.HandleFunc("/api/widget/url", s.handleWidgetURL)
	s.mux.HandleFunc("/api/widget/config", s.handleWidgetConfig)
	s.mux.HandleFunc("/api/dashboard/metrics", s.handleDashboardMetrics)
	s.mux.HandleFunc("/api/dashboard/thresholds", s.handleDashboardThresholds)
	s.mux.HandleFunc("/api/conversations/export", s.handleExport)
	s.mux.HandleFunc("/api/events", s.handleTrackEvent)

	s.mux.HandleFunc("/ws/widget", s.hub.ServeWS)

	return s
}

// Start runs the hub and the HTTP listener. Blocks until the listener
// stops.
func (s *Server) Start() error {
	go s.hub.Run()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.HTTP.Port),
		Handler:      s.withCommonHeaders(s.mux),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}

	s.logger.WithField("port", s.cfg.HTTP.Port).Info("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener and the hub gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) withCommonHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "Bress-Gateway")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to count stored conversations")
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "running",
		"uptime_seconds":       int(time.Since(s.startTime).Seconds()),
		"active_sessions":      s.hub.ClientCount(),
		"stored_conversations": count,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}
