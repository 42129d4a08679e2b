package identity

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Extractor derives normalized chat-context metadata from provider user
// records.
type Extractor struct {
	logger *logrus.Logger
	now    func() time.Time
}

// NewExtractor creates a metadata extractor.
func NewExtractor(logger *logrus.Logger) *Extractor {
	return &Extractor{
		logger: logger,
		now:    time.Now,
	}
}

// Extract maps a provider user record into chat-context metadata.
//
// Returns nil only for a nil user (anonymous visitor). For a present user
// it reads profile fields defensively: extraction must never be the
// reason the chat fails to load, so any internal failure degrades to a
// reduced record carrying at least the id and timestamp.
func (e *Extractor) Extract(user *User) (meta *Metadata) {
	if user == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"user_id": user.ID,
				"panic":   r,
			}).Warn("Metadata extraction degraded to reduced record")
			meta = e.reducedRecord(user)
		}
	}()

	public := user.PublicMetadata
	unsafe := user.UnsafeMetadata

	stage := stringField(public, "parentingStage")
	if stage == "" {
		stage = stringField(public, "stage")
	}
	if stage == "" {
		stage = StageUnknown
	}

	childAge := stringField(public, "childAge")
	if childAge == "" {
		childAge = stringField(unsafe, "childAge")
	}

	feeding := stringField(public, "feedingMethod")
	if feeding == "" {
		feeding = FeedingUnknown
	}

	language := stringField(public, "language")
	if language == "" {
		language = "es"
	}

	theme := stringField(public, "theme")
	if theme == "" {
		theme = "light"
	}

	return &Metadata{
		ID:            user.ID,
		Name:          displayName(user),
		Email:         primaryEmail(user),
		Stage:         stage,
		ChildAge:      childAge,
		FeedingMethod: feeding,
		Language:      language,
		Preferences: Preferences{
			Theme:         theme,
			Notifications: boolField(public, "notifications", true),
			ExpertMode:    boolField(public, "expertMode", false),
		},
		Source:    SourceProvider,
		Timestamp: e.now(),
	}
}

// reducedRecord is the degraded extraction result: id, best-effort name
// and email, nothing derived from metadata maps.
func (e *Extractor) reducedRecord(user *User) *Metadata {
	name := user.FirstName
	if name == "" {
		name = user.Username
	}
	return &Metadata{
		ID:        user.ID,
		Name:      name,
		Email:     primaryEmail(user),
		Source:    SourceProvider,
		Timestamp: e.now(),
	}
}

func displayName(user *User) string {
	if user.FirstName != "" {
		return strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	return user.Username
}

func primaryEmail(user *User) string {
	if len(user.EmailAddresses) > 0 {
		return user.EmailAddresses[0]
	}
	return ""
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolField(m map[string]interface{}, key string, def bool) bool {
	if m == nil {
		return def
	}
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}
