package widget

// Params is the flat parameter bag used to build a shareable widget URL.
// Every recognized field maps 1:1 to a query parameter; unset fields are
// omitted from the final URL.
type Params struct {
	ConfigURL     string `json:"configUrl,omitempty"`
	UserID        string `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
	UserEmail     string `json:"userEmail,omitempty"`
	Stage         string `json:"stage,omitempty"`
	ChildAge      string `json:"childAge,omitempty"`
	FeedingMethod string `json:"feedingMethod,omitempty"`
	Language      string `json:"language,omitempty"`
	Theme         string `json:"theme,omitempty"`
	AutoOpen      string `json:"autoOpen,omitempty"`
	BotName       string `json:"botName,omitempty"`
	Color         string `json:"color,omitempty"`
	Variant       string `json:"variant,omitempty"`
	Source        string `json:"source,omitempty"`
}

// Configuration holds the widget embed configuration. Zero values fall
// back to the documented defaults when building URLs.
type Configuration struct {
	BaseURL         string `json:"base_url"`
	ConfigURL       string `json:"config_url"`
	ClientID        string `json:"client_id"`
	DefaultTheme    string `json:"default_theme"`
	DefaultLanguage string `json:"default_language"`
	AutoOpen        bool   `json:"auto_open"`
	Debug           bool   `json:"debug"`
}

// Documented defaults for the hosted widget embed.
const (
	DefaultBaseURL   = "https://cdn.botpress.cloud/webchat/v3.2/shareable.html"
	DefaultConfigURL = "https://files.bpcontent.cloud/2025/08/23/00/20250823001639-J61VAXD4.json"
	DefaultClientID  = "f657ad35-3575-4861-92bd-e52dac005765"
	DefaultTheme     = "light"
	DefaultLanguage  = "es"
)

// DefaultConfiguration returns the fully populated default widget configuration.
func DefaultConfiguration() Configuration {
	return Configuration{
		BaseURL:         DefaultBaseURL,
		ConfigURL:       DefaultConfigURL,
		ClientID:        DefaultClientID,
		DefaultTheme:    DefaultTheme,
		DefaultLanguage: DefaultLanguage,
		AutoOpen:        true,
	}
}

// merged returns a copy of c with zero-valued fields replaced by defaults.
func (c Configuration) merged() Configuration {
	def := DefaultConfiguration()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.ConfigURL == "" {
		c.ConfigURL = def.ConfigURL
	}
	if c.ClientID == "" {
		c.ClientID = def.ClientID
	}
	if c.DefaultTheme == "" {
		c.DefaultTheme = def.DefaultTheme
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = def.DefaultLanguage
	}
	return c
}

// EmbedConfig is the configuration object handed to the embeddable widget
// component (not wire-serialized by the widget vendor, served as JSON to
// the page shell).
type EmbedConfig struct {
	BotName             string `json:"botName,omitempty"`
	BotAvatar           string `json:"botAvatar,omitempty"`
	BotDescription      string `json:"botDescription,omitempty"`
	ComposerPlaceholder string `json:"composerPlaceholder,omitempty"`
	Color               string `json:"color,omitempty"`
	Variant             string `json:"variant,omitempty"`
	ThemeMode           string `json:"themeMode,omitempty"`
	FontFamily          string `json:"fontFamily,omitempty"`
	ShowPoweredBy       bool   `json:"showPoweredBy"`
	Footer              string `json:"footer,omitempty"`
	Width               string `json:"width,omitempty"`
	Height              string `json:"height,omitempty"`
	AutoOpen            bool   `json:"autoOpen"`
}

// DefaultEmbedConfig returns the embed options for the Bress assistant.
func DefaultEmbedConfig() EmbedConfig {
	return EmbedConfig{
		BotName:             "Bress",
		BotDescription:      "Tu asistente de crianza 24/7",
		ComposerPlaceholder: "Escribe tu pregunta...",
		Color:               "#8B5CF6",
		Variant:             "solid",
		ThemeMode:           "light",
		FontFamily:          "inter",
		ShowPoweredBy:       false,
		Width:               "100%",
		Height:              "100%",
		AutoOpen:            true,
	}
}
