package identity

import (
	"net/url"
	"strings"
	"testing"

	"bress-gateway/pkg/widget"
)

func newTestFactory() *URLFactory {
	logger := testLogger()
	return NewURLFactory(logger, NewExtractor(logger))
}

func TestURLForUserAnonymous(t *testing.T) {
	f := newTestFactory()
	raw := f.URLForUser(nil, widget.Configuration{}, widget.Params{})
	if raw == "" {
		t.Fatal("Expected a URL for the anonymous branch")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("URL does not parse: %v", err)
	}
	q := parsed.Query()
	if q.Get("source") != SourceAnonymous {
		t.Errorf("source = %q, want anonymous", q.Get("source"))
	}
	if q.Get("autoOpen") != "true" {
		t.Errorf("autoOpen = %q, want true for anonymous visitors", q.Get("autoOpen"))
	}
	if q.Get("userId") != "" {
		t.Error("Anonymous URL must not carry a userId")
	}
}

func TestURLForUserPersonalized(t *testing.T) {
	f := newTestFactory()
	user := &User{
		ID:             "user_2abc",
		FirstName:      "Ana",
		LastName:       "Ruiz",
		EmailAddresses: []string{"ana@example.com"},
		PublicMetadata: map[string]interface{}{"parentingStage": "infant"},
	}

	raw := f.URLForUser(user, widget.Configuration{}, widget.Params{})
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("URL does not parse: %v", err)
	}
	q := parsed.Query()
	if q.Get("userId") != "user_2abc" {
		t.Errorf("userId = %q", q.Get("userId"))
	}
	if q.Get("userName") != "Ana Ruiz" {
		t.Errorf("userName = %q", q.Get("userName"))
	}
	if q.Get("stage") != "infant" {
		t.Errorf("stage = %q", q.Get("stage"))
	}
	if q.Get("source") != SourceProvider {
		t.Errorf("source = %q", q.Get("source"))
	}
}

func TestURLForUserMangledIdentifierFallsBack(t *testing.T) {
	f := newTestFactory()
	user := &User{ID: "user with spaces"}

	raw := f.URLForUser(user, widget.Configuration{}, widget.Params{})
	if raw == "" {
		t.Fatal("Factory must always return a URL")
	}
	// The mangled id fails validation on every branch carrying it, so the
	// final URL is the anonymous degradation.
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("URL does not parse: %v", err)
	}
	if parsed.Query().Get("userId") != "" {
		t.Error("Mangled userId must not survive into the URL")
	}
}

func TestURLForUserOverrides(t *testing.T) {
	f := newTestFactory()
	raw := f.URLForUser(nil, widget.Configuration{}, widget.Params{
		Theme:    "dark",
		Language: "en",
	})
	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("URL does not parse: %v", err)
	}
	q := parsed.Query()
	if q.Get("theme") != "dark" || q.Get("language") != "en" {
		t.Errorf("Overrides not applied: theme=%q language=%q", q.Get("theme"), q.Get("language"))
	}
}

func TestURLForUserAlwaysHasConfigURL(t *testing.T) {
	f := newTestFactory()
	for name, user := range map[string]*User{
		"anonymous":    nil,
		"regular":      {ID: "user_ok"},
		"mangled":      {ID: "bad id"},
		"empty-fields": {ID: "user_empty", PublicMetadata: map[string]interface{}{}},
	} {
		t.Run(name, func(t *testing.T) {
			raw := f.URLForUser(user, widget.Configuration{}, widget.Params{})
			if !strings.Contains(raw, "configUrl=") {
				t.Errorf("URL missing configUrl: %s", raw)
			}
		})
	}
}
