package widget

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestBuildURLDefaults(t *testing.T) {
	raw, err := BuildURL(Params{}, Configuration{}, testLogger())
	if err != nil {
		t.Fatalf("BuildURL failed: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Built URL does not parse: %v", err)
	}
	if !strings.HasPrefix(raw, DefaultBaseURL) {
		t.Errorf("Expected default base URL, got %s", raw)
	}
	if got := parsed.Query().Get("configUrl"); got != DefaultConfigURL {
		t.Errorf("Expected default configUrl, got %s", got)
	}
}

func TestBuildURLExactlyOneConfigURLAndTimestamp(t *testing.T) {
	raw, err := BuildURL(Params{
		ConfigURL: "https://example.com/custom.json",
		UserID:    "user_123",
	}, Configuration{}, testLogger())
	if err != nil {
		t.Fatalf("BuildURL failed: %v", err)
	}

	query := strings.SplitN(raw, "?", 2)[1]
	var configCount, tCount int
	for _, pair := range strings.Split(query, "&") {
		key := strings.SplitN(pair, "=", 2)[0]
		switch key {
		case "configUrl":
			configCount++
		case "t":
			tCount++
		}
	}
	if configCount != 1 {
		t.Errorf("Expected exactly one configUrl, got %d", configCount)
	}
	if tCount != 1 {
		t.Errorf("Expected exactly one t, got %d", tCount)
	}
}

func TestBuildURLTimestampLast(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	raw, err := buildURL(Params{UserID: "u1", Theme: "dark"}, Configuration{}, testLogger(), now)
	if err != nil {
		t.Fatalf("buildURL failed: %v", err)
	}
	if !strings.HasSuffix(raw, "&t=1700000000000") {
		t.Errorf("Expected cache buster appended last, got %s", raw)
	}
}

func TestBuildURLEncodesValues(t *testing.T) {
	raw, err := BuildURL(Params{
		UserName:  "María García",
		UserEmail: "maria@example.com",
	}, Configuration{}, testLogger())
	if err != nil {
		t.Fatalf("BuildURL failed: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Built URL does not parse: %v", err)
	}
	if got := parsed.Query().Get("userName"); got != "María García" {
		t.Errorf("userName did not round-trip, got %q", got)
	}
	if strings.Contains(raw, "María") {
		t.Error("Expected non-ASCII value to be percent-encoded")
	}
}

func TestBuildURLSkipsEmptyParams(t *testing.T) {
	raw, err := BuildURL(Params{UserID: "u1"}, Configuration{}, testLogger())
	if err != nil {
		t.Fatalf("BuildURL failed: %v", err)
	}
	for _, absent := range []string{"userName=", "stage=", "childAge=", "botName="} {
		if strings.Contains(raw, absent) {
			t.Errorf("Expected empty param %s to be omitted, got %s", absent, raw)
		}
	}
}

func TestBuildURLRejectsInvalidParams(t *testing.T) {
	_, err := BuildURL(Params{ConfigURL: "://not-a-url"}, Configuration{}, testLogger())
	if err == nil {
		t.Fatal("Expected validation error for malformed configUrl")
	}
}

func TestBuildURLCosmeticValuesNeverBlock(t *testing.T) {
	raw, err := BuildURL(Params{
		Theme:    "neon",
		Language: "xx",
		Stage:    "granparent",
		AutoOpen: "maybe",
	}, Configuration{}, testLogger())
	if err != nil {
		t.Fatalf("Cosmetic values must not block the build: %v", err)
	}
	if raw == "" {
		t.Fatal("Expected a URL despite warnings")
	}
}

func TestBuildURLConfigOverridesDefaults(t *testing.T) {
	cfg := Configuration{
		BaseURL:   "https://chat.example.com/embed.html",
		ConfigURL: "https://chat.example.com/bot.json",
	}
	raw, err := BuildURL(Params{}, cfg, testLogger())
	if err != nil {
		t.Fatalf("BuildURL failed: %v", err)
	}
	if !strings.HasPrefix(raw, cfg.BaseURL) {
		t.Errorf("Expected configured base URL, got %s", raw)
	}
}
