package analytics

import "math"

// Velocity and value targets for the threshold judgments. Milliseconds
// for the timing pairs, absolute score for satisfaction, topic share for
// coverage.
const (
	firstAnswerPassMs    = 30000
	firstAnswerWarningMs = 45000
	ttrPassMs            = 360000
	ttrWarningMs         = 480000

	csatPass    = 4.0
	csatWarning = 3.5

	otherSharePass    = 0.2
	otherShareWarning = 0.3

	revenueSampleFloor = 10
)

// Summarize derives dashboard aggregates from the stored summaries. An
// empty log yields all-zero metrics, never NaN.
func Summarize(summaries []ConversationSummary) DashboardMetrics {
	m := DashboardMetrics{
		TopicDistribution: make(map[string]int),
	}
	if len(summaries) == 0 {
		return m
	}

	m.Total = len(summaries)

	var firstAnswerSum, ttrSum int64
	var csatSum, csatCount int
	var riskCount int

	for _, s := range summaries {
		firstAnswerSum += s.FirstAnswerMs
		ttrSum += s.TtrMs
		m.TopicDistribution[s.PrimaryTopic]++
		if s.RiskFlag {
			riskCount++
		}
		if s.CSAT != nil {
			csatSum += *s.CSAT
			csatCount++
		}
	}

	n := int64(len(summaries))
	m.AvgFirstAnswerMs = firstAnswerSum / n
	m.AvgTtrMs = ttrSum / n
	m.RiskFlagRate = round2(float64(riskCount) / float64(len(summaries)))
	if csatCount > 0 {
		m.CSATAverage = round2(float64(csatSum) / float64(csatCount))
	}

	return m
}

// EvaluateThresholds judges the aggregates against the dashboard's four
// traffic lights. Each judgment is independent.
func EvaluateThresholds(m DashboardMetrics) ThresholdStatus {
	return ThresholdStatus{
		Velocity: velocityStatus(m),
		Value:    valueStatus(m),
		Coverage: coverageStatus(m),
		Revenue:  revenueStatus(m),
	}
}

func velocityStatus(m DashboardMetrics) string {
	switch {
	case m.AvgFirstAnswerMs < firstAnswerPassMs && m.AvgTtrMs < ttrPassMs:
		return StatusPass
	case m.AvgFirstAnswerMs < firstAnswerWarningMs && m.AvgTtrMs < ttrWarningMs:
		return StatusWarning
	default:
		return StatusFail
	}
}

func valueStatus(m DashboardMetrics) string {
	switch {
	case m.CSATAverage >= csatPass:
		return StatusPass
	case m.CSATAverage >= csatWarning:
		return StatusWarning
	default:
		return StatusFail
	}
}

// coverageStatus judges the share of conversations the bot could not
// classify. No conversations means nothing uncovered yet.
func coverageStatus(m DashboardMetrics) string {
	if m.Total == 0 {
		return StatusPass
	}
	share := float64(m.TopicDistribution[TopicOther]) / float64(m.Total)
	switch {
	case share < otherSharePass:
		return StatusPass
	case share < otherShareWarning:
		return StatusWarning
	default:
		return StatusFail
	}
}

// revenueStatus is a sample-size placeholder until billing data lands;
// it only distinguishes "enough conversations to judge" from "not yet".
func revenueStatus(m DashboardMetrics) string {
	if m.Total >= revenueSampleFloor {
		return StatusPass
	}
	return StatusWarning
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
