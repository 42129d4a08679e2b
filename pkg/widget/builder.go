package widget

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/errors"
	"bress-gateway/pkg/metrics"
)

// BuildURL constructs a shareable widget URL from a parameter bag.
//
// The supplied configuration is merged over the documented defaults. A
// mandatory configUrl parameter always comes first and a cache-busting
// t=<epoch-ms> parameter is always appended last, so no two builds are
// byte-for-byte idempotent. Fails with a VALIDATION_ERROR when structural
// parameter checks fail; cosmetic warnings never block.
func BuildURL(params Params, cfg Configuration, logger *logrus.Logger) (string, error) {
	return buildURL(params, cfg, logger, time.Now())
}

func buildURL(params Params, cfg Configuration, logger *logrus.Logger, now time.Time) (string, error) {
	merged := cfg.merged()

	validation := ValidateParams(params)
	if !validation.IsValid {
		metrics.URLBuildFailed()
		return "", errors.NewValidation(strings.Join(validation.Errors, ", "), map[string]interface{}{
			"errors":   validation.Errors,
			"warnings": validation.Warnings,
		})
	}

	for range validation.Warnings {
		metrics.ValidationWarning()
	}
	if merged.Debug && len(validation.Warnings) > 0 && logger != nil {
		logger.WithField("warnings", validation.Warnings).Warn("Widget URL built with parameter warnings")
	}

	configURL := params.ConfigURL
	if configURL == "" {
		configURL = merged.ConfigURL
	}

	base, err := url.Parse(merged.BaseURL)
	if err != nil {
		return "", errors.NewURLBuild("unparseable embed base URL", map[string]interface{}{
			"base_url": merged.BaseURL,
		})
	}

	// Query parameters are assembled by hand to keep a stable order:
	// configUrl first, user fields in between, cache buster last.
	pairs := []struct{ key, value string }{
		{"configUrl", configURL},
		{"userId", params.UserID},
		{"userName", params.UserName},
		{"userEmail", params.UserEmail},
		{"stage", params.Stage},
		{"childAge", params.ChildAge},
		{"feedingMethod", params.FeedingMethod},
		{"language", params.Language},
		{"theme", params.Theme},
		{"autoOpen", params.AutoOpen},
		{"botName", params.BotName},
		{"color", params.Color},
		{"variant", params.Variant},
		{"source", params.Source},
		{"t", fmt.Sprintf("%d", now.UnixMilli())},
	}

	var query strings.Builder
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		if query.Len() > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(p.key))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(p.value))
	}

	base.RawQuery = query.String()
	return base.String(), nil
}
