package identity

import (
	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/metrics"
	"bress-gateway/pkg/widget"
)

// URLFactory produces widget URLs for provider users, anonymous visitors
// included. It is the single entry point the page shell uses; whatever
// goes wrong underneath, it always returns a usable URL.
type URLFactory struct {
	logger    *logrus.Logger
	extractor *Extractor
}

// NewURLFactory creates a factory backed by the given extractor.
func NewURLFactory(logger *logrus.Logger, extractor *Extractor) *URLFactory {
	return &URLFactory{
		logger:    logger,
		extractor: extractor,
	}
}

// URLForUser builds a widget URL personalized for the given user.
//
// A nil user takes the anonymous branch. A present user gets metadata
// extraction mapped field-for-field into URL parameters; if extraction or
// the build fails, the factory falls back to a minimal URL built directly
// from the raw identifier so the chat still loads.
func (f *URLFactory) URLForUser(user *User, cfg widget.Configuration, overrides widget.Params) string {
	if user == nil {
		params := applyOverrides(widget.Params{
			AutoOpen: "true",
			Theme:    themeOrDefault(cfg),
			Language: languageOrDefault(cfg),
			Source:   SourceAnonymous,
		}, overrides)

		return f.buildOrFallback(params, cfg)
	}

	meta := f.extractor.Extract(user)

	autoOpen := "true"
	if !cfg.AutoOpen && cfg != (widget.Configuration{}) {
		autoOpen = "false"
	}

	theme := meta.Preferences.Theme
	if theme == "" {
		theme = themeOrDefault(cfg)
	}

	params := applyOverrides(widget.Params{
		UserID:        meta.ID,
		UserName:      meta.Name,
		UserEmail:     meta.Email,
		Stage:         meta.Stage,
		ChildAge:      meta.ChildAge,
		FeedingMethod: meta.FeedingMethod,
		Language:      meta.Language,
		Theme:         theme,
		AutoOpen:      autoOpen,
		Source:        SourceProvider,
	}, overrides)

	url, err := widget.BuildURL(params, cfg, f.logger)
	if err == nil {
		metrics.URLBuilt(params.Source)
		return url
	}

	f.logger.WithError(err).WithField("user_id", user.ID).Error("Personalized widget URL failed, using fallback")

	fallback := applyOverrides(widget.Params{
		UserID:    user.ID,
		UserName:  fallbackName(user),
		UserEmail: primaryEmail(user),
		AutoOpen:  "true",
		Theme:     "light",
		Language:  "es",
		Source:    SourceFallback,
	}, overrides)

	return f.buildOrFallback(fallback, cfg)
}

// buildOrFallback builds the given params, retrying with a bare anonymous
// bag over pure defaults when even the fallback params are rejected. The
// last build cannot fail: defaults validate cleanly and the default base
// URL parses.
func (f *URLFactory) buildOrFallback(params widget.Params, cfg widget.Configuration) string {
	url, err := widget.BuildURL(params, cfg, f.logger)
	if err == nil {
		metrics.URLBuilt(params.Source)
		return url
	}

	f.logger.WithError(err).Warn("Widget URL build failed, degrading to anonymous defaults")

	url, err = widget.BuildURL(widget.Params{
		AutoOpen: "true",
		Theme:    "light",
		Language: "es",
		Source:   SourceAnonymous,
	}, widget.Configuration{}, f.logger)
	if err != nil {
		// Unreachable with default configuration; keep the chat alive anyway.
		return widget.DefaultBaseURL + "?configUrl=" + widget.DefaultConfigURL
	}
	return url
}

func applyOverrides(base, overrides widget.Params) widget.Params {
	if overrides.ConfigURL != "" {
		base.ConfigURL = overrides.ConfigURL
	}
	if overrides.UserID != "" {
		base.UserID = overrides.UserID
	}
	if overrides.UserName != "" {
		base.UserName = overrides.UserName
	}
	if overrides.UserEmail != "" {
		base.UserEmail = overrides.UserEmail
	}
	if overrides.Stage != "" {
		base.Stage = overrides.Stage
	}
	if overrides.ChildAge != "" {
		base.ChildAge = overrides.ChildAge
	}
	if overrides.FeedingMethod != "" {
		base.FeedingMethod = overrides.FeedingMethod
	}
	if overrides.Language != "" {
		base.Language = overrides.Language
	}
	if overrides.Theme != "" {
		base.Theme = overrides.Theme
	}
	if overrides.AutoOpen != "" {
		base.AutoOpen = overrides.AutoOpen
	}
	if overrides.BotName != "" {
		base.BotName = overrides.BotName
	}
	if overrides.Color != "" {
		base.Color = overrides.Color
	}
	if overrides.Variant != "" {
		base.Variant = overrides.Variant
	}
	if overrides.Source != "" {
		base.Source = overrides.Source
	}
	return base
}

func themeOrDefault(cfg widget.Configuration) string {
	if cfg.DefaultTheme != "" {
		return cfg.DefaultTheme
	}
	return "light"
}

func languageOrDefault(cfg widget.Configuration) string {
	if cfg.DefaultLanguage != "" {
		return cfg.DefaultLanguage
	}
	return "es"
}

func fallbackName(user *User) string {
	if user.FirstName != "" {
		return user.FirstName
	}
	return user.Username
}
