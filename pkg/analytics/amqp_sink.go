package analytics

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"bress-gateway/pkg/errors"
	"bress-gateway/pkg/metrics"
)

// AMQPSink forwards sanitized analytics events to a message broker so
// downstream consumers (warehouse loaders, alerting) can subscribe
// without touching the gateway.
type AMQPSink struct {
	logger   *logrus.Logger
	url      string
	exchange string

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQPSink connects to the broker and declares the analytics exchange.
func NewAMQPSink(logger *logrus.Logger, url, exchange string) (*AMQPSink, error) {
	sink := &AMQPSink{
		logger:   logger,
		url:      url,
		exchange: exchange,
	}

	if err := sink.connect(); err != nil {
		return nil, err
	}

	logger.WithField("exchange", exchange).Info("AMQP analytics sink connected")
	return sink, nil
}

func (s *AMQPSink) connect() error {
	conn, err := amqp.Dial(s.url)
	if err != nil {
		return errors.Wrap(err, "failed to connect to AMQP broker")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to open AMQP channel")
	}

	if err := channel.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return errors.Wrap(err, "failed to declare analytics exchange", map[string]interface{}{
			"exchange": s.exchange,
		})
	}

	s.mu.Lock()
	s.conn = conn
	s.channel = channel
	s.mu.Unlock()
	return nil
}

// Publish forwards one sanitized event, reconnecting once on a stale
// connection. The event name doubles as the routing key.
func (s *AMQPSink) Publish(eventName string, params map[string]interface{}) error {
	body, err := json.Marshal(map[string]interface{}{
		"event":  eventName,
		"params": params,
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode analytics event")
	}

	if err := s.publish(eventName, body); err != nil {
		s.logger.WithError(err).Warn("AMQP publish failed, reconnecting")
		metrics.EventsDropped("amqp_publish")
		if err := s.connect(); err != nil {
			return err
		}
		return s.publish(eventName, body)
	}
	return nil
}

func (s *AMQPSink) publish(routingKey string, body []byte) error {
	s.mu.Lock()
	channel := s.channel
	s.mu.Unlock()

	if channel == nil {
		return errors.New("AMQP channel not available")
	}

	return channel.Publish(s.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Close releases the channel and connection.
func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastErr error
	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			lastErr = err
		}
		s.channel = nil
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			lastErr = err
		}
		s.conn = nil
	}
	return lastErr
}
