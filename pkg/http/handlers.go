package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bress-gateway/pkg/analytics"
	"bress-gateway/pkg/errors"
	"bress-gateway/pkg/identity"
	"bress-gateway/pkg/widget"
)

// handleWidgetURL builds a ready-to-embed widget URL. User identity
// fields in the query select the personalized branch; without a userId
// the anonymous branch applies. Always returns a usable URL.
func (s *Server) handleWidgetURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()

	var user *identity.User
	if userID := q.Get("userId"); userID != "" {
		user = &identity.User{
			ID:        userID,
			FirstName: q.Get("firstName"),
			LastName:  q.Get("lastName"),
			Username:  q.Get("username"),
		}
		if email := q.Get("email"); email != "" {
			user.EmailAddresses = []string{email}
		}
	}

	overrides := widget.Params{
		ConfigURL:     q.Get("configUrl"),
		Stage:         q.Get("stage"),
		ChildAge:      q.Get("childAge"),
		FeedingMethod: q.Get("feedingMethod"),
		Language:      q.Get("language"),
		Theme:         q.Get("theme"),
		AutoOpen:      q.Get("autoOpen"),
		BotName:       q.Get("botName"),
		Color:         q.Get("color"),
		Variant:       q.Get("variant"),
	}

	url := s.factory.URLForUser(user, s.cfg.WidgetConfiguration(), overrides)
	s.writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleWidgetConfig serves the embed appearance defaults the page
// client applies to the widget.
func (s *Server) handleWidgetConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, widget.DefaultEmbedConfig())
}

func (s *Server) handleDashboardMetrics(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List()
	if err != nil {
		errors.WriteError(w, errors.Wrap(err, "failed to load conversation log"))
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.Summarize(summaries))
}

func (s *Server) handleDashboardThresholds(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List()
	if err != nil {
		errors.WriteError(w, errors.Wrap(err, "failed to load conversation log"))
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.EvaluateThresholds(analytics.Summarize(summaries)))
}

// handleExport downloads the stored summaries verbatim as a JSON array
// attachment.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.List()
	if err != nil {
		errors.WriteError(w, errors.Wrap(err, "failed to load conversation log"))
		return
	}
	if summaries == nil {
		summaries = []analytics.ConversationSummary{}
	}

	filename := fmt.Sprintf("conversations-%s-%s.json",
		time.Now().UTC().Format("2006-01-02"), uuid.New().String()[:8])
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		s.logger.WithError(err).Error("Failed to write export")
	}
}

type trackRequest struct {
	Event  string                 `json:"event"`
	Params map[string]interface{} `json:"params"`
}

// handleTrackEvent accepts page-level events (landing_view, cta_click,
// open_webchat, sign_in and the like). Parameters are sanitized before
// forwarding; UTM fields survive as short strings.
func (s *Server) handleTrackEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, errors.NewValidation("invalid JSON body"))
		return
	}
	if req.Event == "" {
		errors.WriteError(w, errors.NewValidation("event name is required"))
		return
	}

	s.tracker.Track(req.Event, req.Params)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
