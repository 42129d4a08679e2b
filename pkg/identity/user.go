package identity

import "time"

// User is the opaque record exposed by the identity provider. Only the
// public fields the chat integration needs are modeled; everything else
// stays inside the provider.
type User struct {
	ID             string                 `json:"id"`
	FirstName      string                 `json:"first_name,omitempty"`
	LastName       string                 `json:"last_name,omitempty"`
	Username       string                 `json:"username,omitempty"`
	EmailAddresses []string               `json:"email_addresses,omitempty"`
	PublicMetadata map[string]interface{} `json:"public_metadata,omitempty"`
	UnsafeMetadata map[string]interface{} `json:"unsafe_metadata,omitempty"`
}

// Preferences holds the cosmetic preferences carried in the derived
// metadata record.
type Preferences struct {
	Theme         string `json:"theme"`
	Notifications bool   `json:"notifications"`
	ExpertMode    bool   `json:"expertMode"`
}

// Metadata is the normalized chat-context record derived from a provider
// user. It is created fresh on every extraction and never persisted.
type Metadata struct {
	ID            string      `json:"id"`
	Name          string      `json:"name,omitempty"`
	Email         string      `json:"email,omitempty"`
	Stage         string      `json:"stage,omitempty"`
	ChildAge      string      `json:"childAge,omitempty"`
	FeedingMethod string      `json:"feedingMethod,omitempty"`
	Language      string      `json:"language,omitempty"`
	Preferences   Preferences `json:"preferences"`
	Source        string      `json:"source"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Parenting lifecycle stages recognized in chat context.
const (
	StagePregnancy = "pregnancy"
	StageNewborn   = "newborn"
	StageInfant    = "infant"
	StageToddler   = "toddler"
	StageUnknown   = "unknown"
)

// Feeding methods recognized in chat context.
const (
	FeedingBreast  = "breast"
	FeedingFormula = "formula"
	FeedingMixed   = "mixed"
	FeedingSolids  = "solids"
	FeedingUnknown = "unknown"
)

// Source tags stamped on widget URLs and metadata records.
const (
	SourceProvider  = "clerk"
	SourceAnonymous = "anonymous"
	SourceFallback  = "clerk-fallback"
)
