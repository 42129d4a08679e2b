package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	// Widget URL construction
	urlsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bress_widget_urls_built_total",
		Help: "Total number of widget URLs built, by identity source",
	}, []string{"source"})

	urlBuildFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bress_widget_url_build_failures_total",
		Help: "Total number of widget URL builds rejected by validation",
	})

	validationWarnings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bress_widget_validation_warnings_total",
		Help: "Total number of non-blocking validation warnings observed",
	})

	// Conversation lifecycle
	conversationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bress_conversations_started_total",
		Help: "Total number of conversations started",
	})

	conversationsEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bress_conversations_ended_total",
		Help: "Total number of conversations ended",
	})

	firstAnswerSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bress_conversation_first_answer_seconds",
		Help:    "Time from conversation start to the bot's first answer",
		Buckets: []float64{1, 5, 10, 30, 45, 60, 120, 300},
	})

	resolutionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bress_conversation_resolution_seconds",
		Help:    "Time from conversation start to end",
		Buckets: []float64{30, 60, 120, 300, 360, 480, 600, 1200, 3600},
	})

	// Analytics forwarding
	eventsForwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bress_analytics_events_forwarded_total",
		Help: "Total number of analytics events forwarded to the sink",
	}, []string{"event"})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bress_analytics_events_dropped_total",
		Help: "Total number of analytics events dropped",
	}, []string{"reason"})

	// Page sessions and overlay
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bress_widget_sessions_active",
		Help: "Number of widget page sessions currently connected",
	})

	overlayRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bress_overlay_recomputes_total",
		Help: "Total number of overlay plan recomputations, by trigger",
	}, []string{"trigger"})

	embedLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bress_embed_load_failures_total",
		Help: "Total number of embed script load failures reported by pages",
	})
)

// Init logs that metrics collection is active. Collectors register
// themselves at package load; this exists to make startup explicit.
func Init(logger *logrus.Logger) {
	logger.Info("Prometheus metrics initialized")
}

// URLBuilt increments the URL construction counter for a given identity
// source ("clerk", "anonymous", "clerk-fallback").
func URLBuilt(source string) {
	urlsBuilt.WithLabelValues(source).Inc()
}

// URLBuildFailed increments the rejected-build counter.
func URLBuildFailed() {
	urlBuildFailures.Inc()
}

// ValidationWarning increments the non-blocking warning counter.
func ValidationWarning() {
	validationWarnings.Inc()
}

// ConversationStarted increments the started-conversation counter.
func ConversationStarted() {
	conversationsStarted.Inc()
}

// ConversationEnded records a finished conversation and its duration.
func ConversationEnded(duration time.Duration) {
	conversationsEnded.Inc()
	resolutionSeconds.Observe(duration.Seconds())
}

// FirstAnswerObserved records the time to the bot's first answer.
func FirstAnswerObserved(duration time.Duration) {
	firstAnswerSeconds.Observe(duration.Seconds())
}

// EventForwarded increments the forwarded-event counter.
func EventForwarded(event string) {
	eventsForwarded.WithLabelValues(event).Inc()
}

// EventsDropped increments the dropped-event counter for a reason.
func EventsDropped(reason string) {
	eventsDropped.WithLabelValues(reason).Inc()
}

// SessionConnected tracks a new page session.
func SessionConnected() {
	activeSessions.Inc()
}

// SessionDisconnected tracks a closed page session.
func SessionDisconnected() {
	activeSessions.Dec()
}

// OverlayRecomputed increments the overlay recomputation counter.
func OverlayRecomputed(trigger string) {
	overlayRecomputes.WithLabelValues(trigger).Inc()
}

// EmbedLoadFailed increments the embed load failure counter.
func EmbedLoadFailed() {
	embedLoadFailures.Inc()
}
