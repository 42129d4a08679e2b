package widget

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidationResult holds the outcome of a parameter or environment check.
// Errors block URL construction; warnings are advisory only.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

var (
	// Loose on purpose: emails are never required for the widget to work,
	// so a mismatch only downgrades to a warning.
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	validThemes   = []string{"light", "dark"}
	validLangs    = []string{"es", "en"}
	validStages   = []string{"pregnancy", "newborn", "infant", "toddler", "unknown"}
	validAutoOpen = []string{"true", "false"}
)

// ValidateParams checks a parameter bag before URL construction.
//
// Structural problems (unparseable URLs, malformed identifiers) produce
// errors and make the result invalid. Cosmetic fields out of range only
// produce warnings: a bad theme must never block chat availability.
func ValidateParams(params Params) ValidationResult {
	errs := make([]string, 0)
	warnings := make([]string, 0)

	if params.ConfigURL != "" && !isValidURL(params.ConfigURL) {
		errs = append(errs, "configUrl must be a valid URL")
	}

	if params.UserID != "" && !isValidIdentifier(params.UserID) {
		errs = append(errs, "userId must be a plain identifier string")
	}

	if params.UserEmail != "" && !emailRegex.MatchString(params.UserEmail) {
		warnings = append(warnings, "userEmail appears to be invalid")
	}

	if params.Theme != "" && !contains(validThemes, params.Theme) {
		warnings = append(warnings, `theme should be either "light" or "dark"`)
	}

	if params.Language != "" && !contains(validLangs, params.Language) {
		warnings = append(warnings, `language should be either "es" or "en"`)
	}

	if params.Stage != "" && !contains(validStages, params.Stage) {
		warnings = append(warnings, "stage should be a valid parenting stage")
	}

	if params.AutoOpen != "" && !contains(validAutoOpen, params.AutoOpen) {
		warnings = append(warnings, `autoOpen should be either "true" or "false"`)
	}

	return ValidationResult{
		IsValid:  len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// isValidIdentifier rejects identifiers containing whitespace or control
// characters, which would indicate a mangled upstream value rather than a
// provider-issued id.
func isValidIdentifier(id string) bool {
	if strings.TrimSpace(id) != id {
		return false
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f || r == ' ' {
			return false
		}
	}
	return true
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// Summary renders a short human-readable summary of the result.
func (r ValidationResult) Summary() string {
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		return "validation passed"
	}
	summary := ""
	if len(r.Errors) > 0 {
		summary += fmt.Sprintf("%d error(s)", len(r.Errors))
	}
	if len(r.Warnings) > 0 {
		if summary != "" {
			summary += " and "
		}
		summary += fmt.Sprintf("%d warning(s)", len(r.Warnings))
	}
	return summary + " found"
}
