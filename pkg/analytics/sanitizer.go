package analytics

import (
	"regexp"
	"time"
)

// PIIPolicy is the explicit sanitization policy applied to outgoing event
// parameters. The patterns are heuristic and will both over- and
// under-match; keeping them on a policy value rather than hardcoded makes
// the tolerance a deliberate, testable choice.
type PIIPolicy struct {
	MaxStringLength int
	Patterns        []*regexp.Regexp
}

// DefaultPIIPolicy returns the stock policy: email addresses, US and
// LATAM phone formats, and a "Firstname Lastname" heuristic, with string
// values capped at 50 characters.
func DefaultPIIPolicy() PIIPolicy {
	return PIIPolicy{
		MaxStringLength: 50,
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
			regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
			regexp.MustCompile(`\b\d{2,3}[-\s]?\d{3,4}[-\s]?\d{4}\b`),
			regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`),
		},
	}
}

// ContainsPII reports whether the text matches any policy pattern.
func (p PIIPolicy) ContainsPII(text string) bool {
	for _, pattern := range p.Patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// Sanitize filters an event parameter bag down to privacy-safe values:
// booleans, numbers, and short strings free of PII. Everything else is
// dropped. A timestamp is stamped onto the result for temporal analysis.
func (p PIIPolicy) Sanitize(params map[string]interface{}) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(params)+1)

	for key, value := range params {
		switch v := value.(type) {
		case string:
			if len(v) <= p.MaxStringLength && !p.ContainsPII(v) {
				sanitized[key] = v
			}
		case bool:
			sanitized[key] = v
		case int, int32, int64, float32, float64:
			sanitized[key] = v
		}
	}

	sanitized["timestamp"] = time.Now().UnixMilli()

	return sanitized
}
