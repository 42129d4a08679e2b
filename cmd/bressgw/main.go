package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/analytics"
	"bress-gateway/pkg/config"
	httpserver "bress-gateway/pkg/http"
	"bress-gateway/pkg/identity"
	"bress-gateway/pkg/metrics"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogger(logger, cfg)

	validator := config.NewEnvironmentValidator(logger)
	result := validator.Validate()
	if !result.IsValid {
		logger.WithField("errors", result.Errors).Fatal("Environment validation failed")
	}

	metrics.Init(logger)

	store, err := buildStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize conversation store")
	}

	sink := buildSink(cfg, logger)
	policy := analytics.DefaultPIIPolicy()
	policy.MaxStringLength = cfg.Analytics.MaxStringLength

	tracker := analytics.NewTracker(logger, sink, store, policy)
	newTracker := func() *analytics.Tracker {
		return analytics.NewTracker(logger, sink, store, policy)
	}

	factory := identity.NewURLFactory(logger, identity.NewExtractor(logger))

	server := httpserver.NewServer(cfg, logger, factory, tracker, store, newTracker)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("HTTP server failed")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("Graceful shutdown incomplete")
	}
	if err := sink.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close analytics sink")
	}
	if err := store.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close conversation store")
	}

	logger.Info("Gateway stopped")
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

func buildStore(cfg *config.Config, logger *logrus.Logger) (analytics.Store, error) {
	if cfg.Analytics.StorePath == "" {
		logger.Info("Using in-memory conversation store")
		return analytics.NewMemoryStore(cfg.Analytics.Capacity), nil
	}
	logger.WithField("path", cfg.Analytics.StorePath).Info("Using file-backed conversation store")
	return analytics.NewFileStore(cfg.Analytics.StorePath, cfg.Analytics.Capacity, logger)
}

func buildSink(cfg *config.Config, logger *logrus.Logger) analytics.Sink {
	if cfg.Analytics.AMQPUrl == "" {
		logger.Info("No AMQP broker configured, analytics events are log-only")
		return analytics.NewLogSink(logger)
	}
	sink, err := analytics.NewAMQPSink(logger, cfg.Analytics.AMQPUrl, cfg.Analytics.AMQPExchange)
	if err != nil {
		logger.WithError(err).Warn("AMQP sink unavailable, falling back to log-only")
		return analytics.NewLogSink(logger)
	}
	return sink
}
