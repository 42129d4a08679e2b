package analytics

import (
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/metrics"
)

// Tracker owns the lifecycle of a single active conversation and the
// forwarding of sanitized events. One tracker is bound to one widget
// session; concurrent sessions each get their own.
type Tracker struct {
	logger *logrus.Logger
	sink   Sink
	store  Store
	policy PIIPolicy

	mu             sync.Mutex
	conversationID string
	startTime      time.Time
	firstAnswerAt  time.Time
	vars           Variables

	now     func() time.Time
	randVal func() float64
}

// NewTracker creates a tracker. A nil sink degrades to log-only
// forwarding; a nil store skips summary persistence.
func NewTracker(logger *logrus.Logger, sink Sink, store Store, policy PIIPolicy) *Tracker {
	if sink == nil {
		sink = NewLogSink(logger)
	}
	return &Tracker{
		logger:  logger,
		sink:    sink,
		store:   store,
		policy:  policy,
		now:     time.Now,
		randVal: rand.Float64,
	}
}

// Track sanitizes the parameter bag and forwards the event. Forwarding
// failures are logged and absorbed; tracking must never break the caller.
func (t *Tracker) Track(eventName string, params map[string]interface{}) {
	t.publish(eventName, params)
}

// StartConversation begins a new tracked conversation and returns its
// generated identifier. Starting over an in-flight conversation discards
// the previous one without emitting its summary.
func (t *Tracker) StartConversation(userID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conversationID != "" {
		t.logger.WithField("conversation_id", t.conversationID).
			Warn("Conversation restarted before previous one ended")
	}

	now := t.now()
	t.conversationID = t.generateConversationID(userID, now)
	t.startTime = now
	t.firstAnswerAt = time.Time{}
	t.vars = Variables{}

	metrics.ConversationStarted()
	t.logger.WithFields(logrus.Fields{
		"conversation_id": t.conversationID,
		"user_id":         userID,
	}).Info("Conversation started")

	return t.conversationID
}

// ConversationID returns the active conversation's identifier, or empty
// when none is in flight.
func (t *Tracker) ConversationID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conversationID
}

// MarkFirstAnswer records the moment the bot first responded. Idempotent;
// only the first call per conversation takes effect.
func (t *Tracker) MarkFirstAnswer() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conversationID == "" || !t.firstAnswerAt.IsZero() {
		return
	}
	t.firstAnswerAt = t.now()
	metrics.FirstAnswerObserved(t.firstAnswerAt.Sub(t.startTime))
}

// UpdateVariables merges a partial variable update into the active
// conversation. Updates without an active conversation are dropped.
func (t *Tracker) UpdateVariables(update Variables) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conversationID == "" {
		t.logger.Debug("Variable update without active conversation, dropped")
		return
	}
	t.vars = t.vars.merge(update)
}

// EndConversation finalizes the active conversation: computes timing
// metrics, emits the outcome events, appends the summary to the rolling
// log, and resets the tracker. Ending without a started conversation is
// a no-op.
func (t *Tracker) EndConversation(final Variables) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conversationID == "" {
		t.logger.Debug("Conversation end without start, ignored")
		return
	}

	now := t.now()
	vars := t.vars.merge(final)

	firstAnswerMs := int64(0)
	if !t.firstAnswerAt.IsZero() {
		firstAnswerMs = t.firstAnswerAt.Sub(t.startTime).Milliseconds()
	}
	if vars.FirstAnswerMs != nil {
		firstAnswerMs = *vars.FirstAnswerMs
	}

	ttrMs := now.Sub(t.startTime).Milliseconds()
	if vars.TtrMs != nil {
		ttrMs = *vars.TtrMs
	}

	summary := t.buildSummary(vars, now, firstAnswerMs, ttrMs)

	t.emitOutcomeEvents(summary)

	if t.store != nil {
		if err := t.store.Append(summary); err != nil {
			t.logger.WithError(err).Error("Failed to persist conversation summary")
		}
	}

	metrics.ConversationEnded(time.Duration(ttrMs) * time.Millisecond)
	t.logger.WithFields(logrus.Fields{
		"conversation_id": summary.ConversationID,
		"ttr_ms":          ttrMs,
		"resolved":        summary.Resolved,
	}).Info("Conversation ended")

	t.conversationID = ""
	t.startTime = time.Time{}
	t.firstAnswerAt = time.Time{}
	t.vars = Variables{}
}

func (t *Tracker) buildSummary(vars Variables, end time.Time, firstAnswerMs, ttrMs int64) ConversationSummary {
	country := vars.Country
	if country == "" {
		country = "unknown"
	}
	lang := vars.Lang
	if lang == "" {
		lang = "es"
	}
	topic := vars.PrimaryTopic
	if topic == "" {
		topic = TopicOther
	}

	// Unreported outcomes count as resolved; only an explicit false marks
	// a conversation unresolved.
	resolved := true
	if vars.Resolved != nil {
		resolved = *vars.Resolved
	}

	riskFlag := vars.RiskFlag != nil && *vars.RiskFlag

	return ConversationSummary{
		ConversationID:  t.conversationID,
		TsStart:         t.startTime.UnixMilli(),
		TsEnd:           end.UnixMilli(),
		Country:         country,
		Lang:            lang,
		BabyAgeMonths:   vars.BabyAgeMonths,
		PregnancyWeeks:  vars.PregnancyWeeks,
		PrimaryTopic:    topic,
		RiskFlag:        riskFlag,
		EscalatedReason: vars.EscalatedReason,
		FirstAnswerMs:   firstAnswerMs,
		TtrMs:           ttrMs,
		Resolved:        resolved,
		CSAT:            vars.CSAT,
		CES:             vars.CES,
		PricingBucket:   vars.PricingBucket,
		PricingIntent:   vars.PricingIntent,
	}
}

// emitOutcomeEvents sends the resolution event plus the optional
// satisfaction and pricing events. Caller holds the lock; Track is not
// reused here to avoid re-entry.
func (t *Tracker) emitOutcomeEvents(summary ConversationSummary) {
	risk := 0
	if summary.RiskFlag {
		risk = 1
	}

	t.publish(EventChatResolved, map[string]interface{}{
		"conversation_id": summary.ConversationID,
		"primary_topic":   summary.PrimaryTopic,
		"risk_flag":       risk,
		"first_answer_ms": summary.FirstAnswerMs,
		"ttr_ms":          summary.TtrMs,
		"resolved":        summary.Resolved,
		"country":         summary.Country,
		"lang":            summary.Lang,
	})

	if summary.CSAT != nil {
		params := map[string]interface{}{
			"conversation_id": summary.ConversationID,
			"csat":            *summary.CSAT,
		}
		if summary.CES != nil {
			params["ces"] = *summary.CES
		}
		t.publish(EventChatCSAT, params)
	}

	if summary.PricingBucket != "" && summary.PricingIntent != "" {
		t.publish(EventPricingIntent, map[string]interface{}{
			"conversation_id": summary.ConversationID,
			"pricing_bucket":  summary.PricingBucket,
			"pricing_intent":  summary.PricingIntent,
		})
	}
}

func (t *Tracker) publish(eventName string, params map[string]interface{}) {
	sanitized := t.policy.Sanitize(params)
	if err := t.sink.Publish(eventName, sanitized); err != nil {
		t.logger.WithError(err).WithField("event", eventName).Warn("Failed to forward analytics event")
		metrics.EventsDropped("sink_error")
		return
	}
	metrics.EventForwarded(eventName)
}

// generateConversationID derives a compact identifier from the user,
// the current time, and a random component. The hash is the classic
// 31-multiplier string hash over the combined seed, rendered base36.
func (t *Tracker) generateConversationID(userID string, now time.Time) string {
	if userID == "" {
		userID = "anonymous"
	}
	data := fmt.Sprintf("%s_%d_%v", userID, now.UnixMilli(), t.randVal())

	var hash int32
	for _, ch := range data {
		hash = (hash << 5) - hash + ch
	}

	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return "conv_" + strconv.FormatInt(abs, 36)
}

// Close releases the sink and store.
func (t *Tracker) Close() error {
	var lastErr error
	if err := t.sink.Close(); err != nil {
		lastErr = err
	}
	if t.store != nil {
		if err := t.store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
