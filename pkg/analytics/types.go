package analytics

// Variables is the typed partial-update bag for an in-progress
// conversation. The chat widget reports loosely typed key/value pairs;
// only the recognized fields below are carried, unrecognized keys are
// dropped at the transport boundary.
type Variables struct {
	Country         string `json:"country,omitempty"`
	Lang            string `json:"lang,omitempty"`
	BabyAgeMonths   *int   `json:"baby_age_months,omitempty"`
	PregnancyWeeks  *int   `json:"pregnancy_weeks,omitempty"`
	PrimaryTopic    string `json:"primary_topic,omitempty"`
	RiskFlag        *bool  `json:"risk_flag,omitempty"`
	EscalatedReason string `json:"escalated_reason,omitempty"`
	FirstAnswerMs   *int64 `json:"first_answer_ms,omitempty"`
	TtrMs           *int64 `json:"ttr_ms,omitempty"`
	Resolved        *bool  `json:"resolved,omitempty"`
	CSAT            *int   `json:"csat,omitempty"`
	CES             *int   `json:"ces,omitempty"`
	PricingBucket   string `json:"pricing_bucket,omitempty"`
	PricingIntent   string `json:"pricing_intent,omitempty"`
}

// merge shallow-merges o into v, later values winning.
func (v Variables) merge(o Variables) Variables {
	if o.Country != "" {
		v.Country = o.Country
	}
	if o.Lang != "" {
		v.Lang = o.Lang
	}
	if o.BabyAgeMonths != nil {
		v.BabyAgeMonths = o.BabyAgeMonths
	}
	if o.PregnancyWeeks != nil {
		v.PregnancyWeeks = o.PregnancyWeeks
	}
	if o.PrimaryTopic != "" {
		v.PrimaryTopic = o.PrimaryTopic
	}
	if o.RiskFlag != nil {
		v.RiskFlag = o.RiskFlag
	}
	if o.EscalatedReason != "" {
		v.EscalatedReason = o.EscalatedReason
	}
	if o.FirstAnswerMs != nil {
		v.FirstAnswerMs = o.FirstAnswerMs
	}
	if o.TtrMs != nil {
		v.TtrMs = o.TtrMs
	}
	if o.Resolved != nil {
		v.Resolved = o.Resolved
	}
	if o.CSAT != nil {
		v.CSAT = o.CSAT
	}
	if o.CES != nil {
		v.CES = o.CES
	}
	if o.PricingBucket != "" {
		v.PricingBucket = o.PricingBucket
	}
	if o.PricingIntent != "" {
		v.PricingIntent = o.PricingIntent
	}
	return v
}

// ConversationSummary is one finalized record of a chat session's timing
// and outcome metrics, appended to the rolling log when a session ends.
type ConversationSummary struct {
	ConversationID  string `json:"conversation_id"`
	TsStart         int64  `json:"ts_start"`
	TsEnd           int64  `json:"ts_end"`
	Country         string `json:"country"`
	Lang            string `json:"lang"`
	BabyAgeMonths   *int   `json:"baby_age_months,omitempty"`
	PregnancyWeeks  *int   `json:"pregnancy_weeks,omitempty"`
	PrimaryTopic    string `json:"primary_topic"`
	RiskFlag        bool   `json:"risk_flag"`
	EscalatedReason string `json:"escalated_reason,omitempty"`
	FirstAnswerMs   int64  `json:"first_answer_ms"`
	TtrMs           int64  `json:"ttr_ms"`
	Resolved        bool   `json:"resolved"`
	CSAT            *int   `json:"csat,omitempty"`
	CES             *int   `json:"ces,omitempty"`
	PricingBucket   string `json:"pricing_bucket,omitempty"`
	PricingIntent   string `json:"pricing_intent,omitempty"`
}

// DashboardMetrics is the derived aggregate over the stored summaries.
// Recomputed on demand, never persisted.
type DashboardMetrics struct {
	Total             int            `json:"total"`
	AvgFirstAnswerMs  int64          `json:"avgFirstAnswerMs"`
	AvgTtrMs          int64          `json:"avgTtrMs"`
	CSATAverage       float64        `json:"csatAverage"`
	TopicDistribution map[string]int `json:"topicDistribution"`
	RiskFlagRate      float64        `json:"riskFlagRate"`
}

// Threshold judgment values.
const (
	StatusPass    = "pass"
	StatusWarning = "warning"
	StatusFail    = "fail"
)

// ThresholdStatus holds the four independent pass/warning/fail judgments
// shown on the internal dashboard.
type ThresholdStatus struct {
	Velocity string `json:"velocity"`
	Value    string `json:"value"`
	Coverage string `json:"coverage"`
	Revenue  string `json:"revenue"`
}

// Event names emitted by the tracker.
const (
	EventChatResolved  = "chat_resolved"
	EventChatCSAT      = "chat_csat"
	EventPricingIntent = "pricing_intent"

	EventLandingView = "landing_view"
	EventOpenWebchat = "open_webchat"
	EventCTAClick    = "cta_click"
	EventSignIn      = "sign_in"
)

// The catch-all topic bucket used when the bot could not classify a
// conversation; its share drives the coverage threshold.
const TopicOther = "otro"
