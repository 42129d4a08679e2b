package errors

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWrapPreservesOriginal(t *testing.T) {
	err := Wrap(ErrValidation, "widget params rejected")

	if !errors.Is(err, ErrValidation) {
		t.Error("Wrapped error must match its sentinel")
	}
	if err.Error() == "" {
		t.Error("Expected a composed message")
	}
}

func TestWithFieldReturnsCopy(t *testing.T) {
	base := NewValidation("bad userId")
	enriched := base.WithField("userId", "u 1")

	if _, ok := base.fields["userId"]; ok {
		t.Error("WithField must not mutate the receiver")
	}
	if enriched.fields["userId"] != "u 1" {
		t.Error("WithField must carry the new field")
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  *Error
		code string
	}{
		{NewValidation("x"), "VALIDATION_ERROR"},
		{NewConfiguration("x"), "CONFIGURATION_ERROR"},
		{NewURLBuild("x"), "BUILD_ERROR"},
		{NewEmbedLoadFailure(3), "EMBED_LOAD_FAILURE"},
	}
	for _, tt := range tests {
		if got := GetErrorCode(tt.err); got != tt.code {
			t.Errorf("GetErrorCode = %q, want %q", got, tt.code)
		}
	}
}

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NewValidation("x"), 400},
		{NewEmbedLoadFailure(3), 502},
		{ErrConversationNotStarted, 409},
		{errors.New("plain"), 500},
	}
	for _, tt := range tests {
		if got := HTTPStatusFromError(tt.err); got != tt.status {
			t.Errorf("HTTPStatusFromError(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}

func TestWriteErrorStatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewValidation("configUrl must be a valid URL"))

	if rec.Code != 400 {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("Expected a JSON body")
	}
}

func TestLocationCaptured(t *testing.T) {
	err := New("something broke")
	if loc := err.Location(); !strings.Contains(loc, "errors_test.go:") {
		t.Errorf("Location = %q, expected caller file and line", loc)
	}
}
