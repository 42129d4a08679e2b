package analytics

import (
	"github.com/sirupsen/logrus"
)

// Sink receives sanitized analytics events for forwarding. It is the
// gateway-side analog of the page's global tag-manager hook: when none is
// configured the tracker degrades to log-only.
type Sink interface {
	Publish(eventName string, params map[string]interface{}) error
	Close() error
}

// LogSink writes events to the log instead of forwarding them. Used in
// development and whenever no broker is configured.
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates a log-only sink.
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish logs the event at debug level.
func (s *LogSink) Publish(eventName string, params map[string]interface{}) error {
	s.logger.WithFields(logrus.Fields{
		"event":  eventName,
		"params": params,
	}).Debug("Analytics event (log-only sink)")
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error { return nil }
