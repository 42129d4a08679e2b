package config

import (
	"net/url"
	"os"

	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/widget"
)

// EnvironmentValidator checks the external configuration the chat surface
// depends on before first use.
type EnvironmentValidator struct {
	logger *logrus.Logger
}

// NewEnvironmentValidator creates an environment validator.
func NewEnvironmentValidator(logger *logrus.Logger) *EnvironmentValidator {
	return &EnvironmentValidator{logger: logger}
}

// Validate checks the required external configuration values.
//
// A missing variable only produces a warning because documented defaults
// exist for every value; a present-but-malformed URL is a hard error.
// Callers treat IsValid=false as "show the configuration error state",
// not as a crash.
func (v *EnvironmentValidator) Validate() widget.ValidationResult {
	errs := make([]string, 0)
	warnings := make([]string, 0)

	clientID := os.Getenv("BOTPRESS_CLIENT_ID")
	configURL := os.Getenv("BOTPRESS_CONFIG_URL")
	baseURL := os.Getenv("BOTPRESS_BASE_URL")

	if clientID == "" {
		warnings = append(warnings, "BOTPRESS_CLIENT_ID not set, using default")
	}
	if configURL == "" {
		warnings = append(warnings, "BOTPRESS_CONFIG_URL not set, using default")
	} else if !isParseableURL(configURL) {
		errs = append(errs, "BOTPRESS_CONFIG_URL is not a valid URL")
	}
	if baseURL == "" {
		warnings = append(warnings, "BOTPRESS_BASE_URL not set, using default")
	} else if !isParseableURL(baseURL) {
		errs = append(errs, "BOTPRESS_BASE_URL is not a valid URL")
	}

	result := widget.ValidationResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}

	if len(errs) > 0 {
		v.logger.WithField("error_count", len(errs)).Error("Environment validation failed")
		for _, e := range errs {
			v.logger.Error(e)
		}
	}
	for _, w := range warnings {
		v.logger.Warn(w)
	}

	return result
}

func isParseableURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
