package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bress-gateway/pkg/analytics"
	"bress-gateway/pkg/config"
	"bress-gateway/pkg/identity"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{
			Port:          8080,
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  30 * time.Second,
			EnableMetrics: false,
		},
		Analytics: config.AnalyticsConfig{Capacity: 100, MaxStringLength: 50},
		Overlay: config.OverlayConfig{
			FrameHostFragment:    "botpress.cloud",
			EmbedLoadMaxAttempts: 3,
		},
	}
}

func newTestServer(t *testing.T) (*Server, analytics.Store) {
	t.Helper()
	logger := testLogger()
	store := analytics.NewMemoryStore(100)
	policy := analytics.DefaultPIIPolicy()
	tracker := analytics.NewTracker(logger, nil, store, policy)
	factory := identity.NewURLFactory(logger, identity.NewExtractor(logger))
	newTracker := func() *analytics.Tracker {
		return analytics.NewTracker(logger, nil, store, policy)
	}
	return NewServer(testConfig(), logger, factory, tracker, store, newTracker), store
}

func doRequest(t *testing.T, s *Server, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func TestWidgetURLAnonymous(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/widget/url", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["url"], "configUrl=")
	assert.Contains(t, resp["url"], "source=anonymous")
	assert.NotContains(t, resp["url"], "userId=")
}

func TestWidgetURLPersonalized(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet,
		"/api/widget/url?userId=user_2abc&firstName=Ana&email=ana%40example.com&theme=dark", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["url"], "userId=user_2abc")
	assert.Contains(t, resp["url"], "theme=dark")
	assert.Contains(t, resp["url"], "source=clerk")
}

func TestWidgetURLProfileOverrides(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet,
		"/api/widget/url?stage=newborn&childAge=3m&feedingMethod=mixed", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["url"], "stage=newborn")
	assert.Contains(t, resp["url"], "childAge=3m")
	assert.Contains(t, resp["url"], "feedingMethod=mixed")
}

func TestWidgetConfig(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/widget/config", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var cfg map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "Bress", cfg["botName"])
}

func TestDashboardMetricsEmpty(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var m analytics.DashboardMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Zero(t, m.Total)
	assert.Zero(t, m.AvgFirstAnswerMs)
	assert.Zero(t, m.CSATAverage)
}

func TestDashboardMetricsAggregates(t *testing.T) {
	s, store := newTestServer(t)
	csat := 4
	store.Append(analytics.ConversationSummary{
		ConversationID: "conv_1",
		PrimaryTopic:   "lactancia",
		FirstAnswerMs:  2000,
		TtrMs:          60000,
		CSAT:           &csat,
	})

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var m analytics.DashboardMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 1, m.Total)
	assert.Equal(t, int64(2000), m.AvgFirstAnswerMs)
	assert.Equal(t, 4.0, m.CSATAverage)
}

func TestDashboardThresholds(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/dashboard/thresholds", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var status analytics.ThresholdStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	// Empty log: timing passes trivially, satisfaction has no data yet.
	assert.Equal(t, analytics.StatusPass, status.Velocity)
	assert.Equal(t, analytics.StatusFail, status.Value)
	assert.Equal(t, analytics.StatusPass, status.Coverage)
	assert.Equal(t, analytics.StatusWarning, status.Revenue)
}

func TestExportDownload(t *testing.T) {
	s, store := newTestServer(t)
	store.Append(analytics.ConversationSummary{ConversationID: "conv_1", PrimaryTopic: "otro"})

	rec := doRequest(t, s, http.MethodGet, "/api/conversations/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "conversations-")

	var entries []analytics.ConversationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "conv_1", entries[0].ConversationID)
}

func TestExportEmptyLogIsArray(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/conversations/export", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestTrackEvent(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/events",
		`{"event":"landing_view","params":{"page":"/","utm_source":"newsletter"}}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestTrackEventRejectsMissingName(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/events", `{"params":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrackEventRejectsBadJSON(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/events", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/api/widget/url", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
