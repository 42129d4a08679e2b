package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"bress-gateway/pkg/widget"
)

// Config represents the complete gateway configuration
type Config struct {
	Widget    WidgetConfig    `json:"widget"`
	HTTP      HTTPConfig      `json:"http"`
	Analytics AnalyticsConfig `json:"analytics"`
	Overlay   OverlayConfig   `json:"overlay"`
	Logging   LoggingConfig   `json:"logging"`
}

// WidgetConfig holds the hosted chat widget embed configuration
type WidgetConfig struct {
	// Base URL of the hosted shareable embed page
	BaseURL string `json:"base_url" env:"BOTPRESS_BASE_URL"`

	// URL of the externally hosted bot configuration document
	ConfigURL string `json:"config_url" env:"BOTPRESS_CONFIG_URL"`

	// Client identifier issued by the widget vendor
	ClientID string `json:"client_id" env:"BOTPRESS_CLIENT_ID"`

	DefaultTheme    string `json:"default_theme" env:"WIDGET_DEFAULT_THEME" default:"light"`
	DefaultLanguage string `json:"default_language" env:"WIDGET_DEFAULT_LANGUAGE" default:"es"`
	AutoOpen        bool   `json:"auto_open" env:"WIDGET_AUTO_OPEN" default:"true"`
	Debug           bool   `json:"debug" env:"WIDGET_DEBUG" default:"false"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port          int           `json:"port" env:"HTTP_PORT" default:"8080"`
	ReadTimeout   time.Duration `json:"read_timeout" env:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout  time.Duration `json:"write_timeout" env:"HTTP_WRITE_TIMEOUT" default:"30s"`
	EnableMetrics bool          `json:"enable_metrics" env:"HTTP_ENABLE_METRICS" default:"true"`
}

// AnalyticsConfig holds the conversation analytics configuration
type AnalyticsConfig struct {
	// Path of the local rolling conversation log. Empty keeps the log in memory.
	StorePath string `json:"store_path" env:"ANALYTICS_STORE_PATH"`

	// Maximum retained conversation summaries, oldest evicted first
	Capacity int `json:"capacity" env:"ANALYTICS_CAPACITY" default:"100"`

	// Maximum string length accepted by the event sanitizer
	MaxStringLength int `json:"max_string_length" env:"ANALYTICS_MAX_STRING_LENGTH" default:"50"`

	// AMQP event forwarding; empty URL disables forwarding (log-only sink)
	AMQPUrl      string `json:"amqp_url" env:"AMQP_URL"`
	AMQPExchange string `json:"amqp_exchange" env:"AMQP_EXCHANGE" default:"bress.analytics"`
}

// OverlayConfig holds the widget overlay controller configuration
type OverlayConfig struct {
	// Origins accepted on the widget WebSocket, comma separated
	AllowedOrigins []string `json:"allowed_origins" env:"WIDGET_ALLOWED_ORIGINS"`

	// Host-name fragment identifying the embedded widget frame
	FrameHostFragment string `json:"frame_host_fragment" env:"WIDGET_FRAME_HOST" default:"botpress.cloud"`

	// Bounded retry budget for third-party script loading
	EmbedLoadMaxAttempts   int           `json:"embed_load_max_attempts" env:"EMBED_LOAD_MAX_ATTEMPTS" default:"3"`
	EmbedLoadRetryInterval time.Duration `json:"embed_load_retry_interval" env:"EMBED_LOAD_RETRY_INTERVAL" default:"2s"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL" default:"info"`
	Format string `json:"format" env:"LOG_FORMAT" default:"text"`
}

// Load reads configuration from the environment, consulting a .env file
// when one is present next to the binary or the working directory.
func Load(logger *logrus.Logger) (*Config, error) {
	loadDotenv(logger)

	config := &Config{
		Widget: WidgetConfig{
			BaseURL:         getEnv("BOTPRESS_BASE_URL", widget.DefaultBaseURL),
			ConfigURL:       getEnv("BOTPRESS_CONFIG_URL", widget.DefaultConfigURL),
			ClientID:        getEnv("BOTPRESS_CLIENT_ID", widget.DefaultClientID),
			DefaultTheme:    getEnv("WIDGET_DEFAULT_THEME", "light"),
			DefaultLanguage: getEnv("WIDGET_DEFAULT_LANGUAGE", "es"),
			AutoOpen:        getEnvBool("WIDGET_AUTO_OPEN", true),
			Debug:           getEnvBool("WIDGET_DEBUG", false),
		},
		HTTP: HTTPConfig{
			Port:          getEnvInt("HTTP_PORT", 8080),
			ReadTimeout:   getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			EnableMetrics: getEnvBool("HTTP_ENABLE_METRICS", true),
		},
		Analytics: AnalyticsConfig{
			StorePath:       getEnv("ANALYTICS_STORE_PATH", ""),
			Capacity:        getEnvInt("ANALYTICS_CAPACITY", 100),
			MaxStringLength: getEnvInt("ANALYTICS_MAX_STRING_LENGTH", 50),
			AMQPUrl:         getEnv("AMQP_URL", ""),
			AMQPExchange:    getEnv("AMQP_EXCHANGE", "bress.analytics"),
		},
		Overlay: OverlayConfig{
			AllowedOrigins:         splitList(getEnv("WIDGET_ALLOWED_ORIGINS", "")),
			FrameHostFragment:      getEnv("WIDGET_FRAME_HOST", "botpress.cloud"),
			EmbedLoadMaxAttempts:   getEnvInt("EMBED_LOAD_MAX_ATTEMPTS", 3),
			EmbedLoadRetryInterval: getEnvDuration("EMBED_LOAD_RETRY_INTERVAL", 2*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	logger.WithFields(logrus.Fields{
		"http_port":      config.HTTP.Port,
		"store_path":     config.Analytics.StorePath,
		"amqp_enabled":   config.Analytics.AMQPUrl != "",
		"widget_base":    config.Widget.BaseURL,
		"frame_fragment": config.Overlay.FrameHostFragment,
	}).Info("Configuration loaded")

	return config, nil
}

// WidgetConfiguration maps the environment-level widget settings into the
// builder's configuration type.
func (c *Config) WidgetConfiguration() widget.Configuration {
	return widget.Configuration{
		BaseURL:         c.Widget.BaseURL,
		ConfigURL:       c.Widget.ConfigURL,
		ClientID:        c.Widget.ClientID,
		DefaultTheme:    c.Widget.DefaultTheme,
		DefaultLanguage: c.Widget.DefaultLanguage,
		AutoOpen:        c.Widget.AutoOpen,
		Debug:           c.Widget.Debug,
	}
}

func loadDotenv(logger *logrus.Logger) {
	candidates := []string{".env", "../.env"}
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err == nil {
			abs, _ := filepath.Abs(envFile)
			logger.WithField("path", abs).Info("Loaded environment from .env file")
			return
		}
	}
	logger.Debug("No .env file found, using process environment")
}

func getEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return def
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvInt(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
