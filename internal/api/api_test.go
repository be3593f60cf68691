package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"harvin-platform/internal/clientstate"
	apperrors "harvin-platform/internal/common/errors"
	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/onboarding"
	"harvin-platform/internal/session"
	leadnotify "harvin-platform/internal/workers/communication/lead-notify"
)

// ==========================
// Fixtures
// ==========================

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Execute(ctx context.Context, input *leadnotify.Input) (*leadnotify.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leadnotify.Output), args.Error(1)
}

type testAPI struct {
	server *httptest.Server
	client *http.Client
}

type apiOptions struct {
	notifier leadnotify.ServiceInterface
	lock     time.Duration
	pingers  map[string]Pinger
}

func newTestAPI(t *testing.T, o apiOptions) *testAPI {
	t.Helper()
	log := logger.NewTestLogger(t)

	notifier := o.notifier
	if notifier == nil {
		notifier = leadnotify.NewService(leadnotify.ServiceDependencies{Logger: log}, leadnotify.DefaultConfig(), nil)
	}

	store := clientstate.NewMemoryStore()
	router := NewRouter(Options{
		Notifier:    notifier,
		Wizard:      onboarding.NewController(store, onboarding.NewMemoryGate(o.lock), log),
		Sessions:    session.NewService(store, log),
		Pingers:     o.pingers,
		Logger:      log,
		Development: true,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testAPI{server: srv, client: &http.Client{Jar: jar}}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func answersOf(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	state, ok := body["state"].(map[string]interface{})
	require.True(t, ok, "state missing in %v", body)
	answers, ok := state["answers"].(map[string]interface{})
	require.True(t, ok)
	return answers
}

func stepIndex(t *testing.T, body map[string]interface{}) int {
	t.Helper()
	step, ok := body["step"].(map[string]interface{})
	require.True(t, ok, "step missing in %v", body)
	return int(step["index"].(float64))
}

// ==========================
// Notify
// ==========================

func TestNotify(t *testing.T) {
	valid := map[string]string{
		"name": "Asha Rao", "email": "asha@acme.io", "company": "Acme", "role": "CEO", "type": "early-access",
	}

	t.Run("skips when mail is not configured", func(t *testing.T) {
		api := newTestAPI(t, apiOptions{})
		resp, body := api.do(t, http.MethodPost, "/api/notify", valid)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]interface{}{"ok": true, "skipped": true}, body)
	})

	t.Run("missing company", func(t *testing.T) {
		api := newTestAPI(t, apiOptions{})
		resp, body := api.do(t, http.MethodPost, "/api/notify", map[string]string{
			"name": "A", "email": "a@x.com", "company": "", "role": "CEO", "type": "early-access",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, map[string]interface{}{"error": "Missing required fields"}, body)
	})

	t.Run("malformed body", func(t *testing.T) {
		api := newTestAPI(t, apiOptions{})
		resp, body := api.do(t, http.MethodPost, "/api/notify", "{not json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Invalid JSON", body["error"])
	})

	t.Run("sent", func(t *testing.T) {
		notifier := new(MockNotifier)
		notifier.On("Execute", mock.Anything, mock.Anything).Return(&leadnotify.Output{OK: true, LeadID: "lead-1"}, nil)

		api := newTestAPI(t, apiOptions{notifier: notifier})
		resp, body := api.do(t, http.MethodPost, "/api/notify", valid)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]interface{}{"ok": true}, body)
	})

	t.Run("send failure", func(t *testing.T) {
		notifier := new(MockNotifier)
		notifier.On("Execute", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewNotificationSendFailedError("early-access", stderrors.New("550")))

		api := newTestAPI(t, apiOptions{notifier: notifier})
		resp, body := api.do(t, http.MethodPost, "/api/notify", valid)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, map[string]interface{}{"error": "Failed to send email"}, body)
	})

	t.Run("transport unavailable", func(t *testing.T) {
		notifier := new(MockNotifier)
		notifier.On("Execute", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewTransportUnavailableError("smtp", stderrors.New("refused")))

		api := newTestAPI(t, apiOptions{notifier: notifier})
		resp, body := api.do(t, http.MethodPost, "/api/notify", valid)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Failed to send email", body["error"])
	})
}

// ==========================
// Client identity
// ==========================

func TestClientIdentity(t *testing.T) {
	var seen string
	h := ClientIdentity(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClientIDFromContext(r.Context())
	}))

	t.Run("issues a new id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		c := cookies[0]
		assert.Equal(t, ClientCookieName, c.Name)
		assert.Regexp(t, regexp.MustCompile(`^c_[a-f0-9]{32}$`), c.Value)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, 30*24*60*60, c.MaxAge)
		assert.Equal(t, c.Value, seen)
	})

	t.Run("keeps a valid id", func(t *testing.T) {
		id := "c_0123456789abcdef0123456789abcdef"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: ClientCookieName, Value: id})

		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.Equal(t, id, seen)
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: ClientCookieName, Value: "../../etc"})

		h.ServeHTTP(httptest.NewRecorder(), req)
		assert.NotEqual(t, "../../etc", seen)
		assert.True(t, strings.HasPrefix(seen, "c_"))
	})
}

// ==========================
// Session and dashboard
// ==========================

func TestSession(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	resp, body := api.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/signin", body["redirect"])

	resp, body = api.do(t, http.MethodPost, "/api/session", map[string]string{"name": "  ", "email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, string(apperrors.ErrCodeValidationFailed), body["code"])

	resp, body = api.do(t, http.MethodPost, "/api/session", map[string]string{"name": "Asha Rao", "email": "asha@acme.io"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/onboarding", body["redirect"])
	assert.Equal(t, "oauth", body["user"].(map[string]interface{})["type"])

	resp, body = api.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Asha Rao", body["name"])

	resp, body = api.do(t, http.MethodDelete, "/api/session", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/signin", body["redirect"])

	resp, _ = api.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDashboard_RequiresSession(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	resp, body := api.do(t, http.MethodGet, "/api/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "/signin", body["redirect"])
}

// ==========================
// Onboarding
// ==========================

func TestOnboarding_DemoToDashboard(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	resp, _ := api.do(t, http.MethodPost, "/api/session/demo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := api.do(t, http.MethodGet, "/api/onboarding", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, stepIndex(t, body))
	assert.Equal(t, false, body["canProceed"])
	assert.Equal(t, session.DemoIdentity.Name, answersOf(t, body)["fullName"])
	assert.Equal(t, session.DemoIdentity.Email, answersOf(t, body)["email"])

	resp, body = api.do(t, http.MethodPost, "/api/onboarding/next", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, string(apperrors.ErrCodeOnboardingPreconditionNotMet), body["code"])

	resp, body = api.do(t, http.MethodPatch, "/api/onboarding/answers", map[string]interface{}{"persona": "saas"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "outreach", answersOf(t, body)["goal"])
	assert.Equal(t, true, body["canProceed"])

	resp, body = api.do(t, http.MethodPost, "/api/onboarding/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stepIndex(t, body))

	resp, body = api.do(t, http.MethodPost, "/api/onboarding/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, stepIndex(t, body))

	resp, body = api.do(t, http.MethodPost, "/api/onboarding/toggle-catalog", map[string]string{"catalog": "digital"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, answersOf(t, body)["industries"], len(onboarding.DigitalIndustries))

	resp, body = api.do(t, http.MethodPost, "/api/onboarding/toggle", map[string]string{"key": "geoFocus", "value": "India"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []interface{}{"India"}, answersOf(t, body)["geoFocus"])

	resp, _ = api.do(t, http.MethodPost, "/api/onboarding/skip", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = api.do(t, http.MethodPost, "/api/onboarding/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, stepIndex(t, body))

	resp, body = api.do(t, http.MethodPost, "/api/onboarding/skip", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", body["redirect"])
	assert.Equal(t, "All Stages", answersOf(t, body)["companyStage"])

	resp, body = api.do(t, http.MethodGet, "/api/onboarding", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", body["redirect"])

	resp, body = api.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Demo", body["firstName"])
	assert.Equal(t, "Finding companies to outreach", body["goalLabel"])
	assert.Equal(t, true, body["onboardingCompleted"])
}

func TestOnboarding_InvalidValues(t *testing.T) {
	api := newTestAPI(t, apiOptions{})

	resp, body := api.do(t, http.MethodPost, "/api/onboarding/toggle", map[string]string{"key": "persona", "value": "saas"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, string(apperrors.ErrCodeOnboardingInvalidValue), body["code"])

	resp, _ = api.do(t, http.MethodPatch, "/api/onboarding/answers", map[string]interface{}{"goal": "world-domination"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPost, "/api/onboarding/toggle-catalog", map[string]string{"catalog": "b2b"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, body = api.do(t, http.MethodPatch, "/api/onboarding/answers", "[")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid JSON", body["error"])
}

func TestOnboarding_NavigationInsideLockIsIgnored(t *testing.T) {
	api := newTestAPI(t, apiOptions{lock: time.Hour})

	resp, _ := api.do(t, http.MethodPatch, "/api/onboarding/answers", map[string]interface{}{
		"fullName": "Asha Rao", "email": "asha@acme.io", "persona": "agency",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := api.do(t, http.MethodPost, "/api/onboarding/next", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stepIndex(t, body))

	resp, body = api.do(t, http.MethodPost, "/api/onboarding/back", nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, true, body["ignored"])
	assert.Equal(t, 1, stepIndex(t, body))

	resp, body = api.do(t, http.MethodGet, "/api/onboarding", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, stepIndex(t, body))
}

// ==========================
// Health
// ==========================

func TestHealthAndReady(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	api := newTestAPI(t, apiOptions{pingers: map[string]Pinger{
		"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}})

	resp, body := api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = api.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"redis": "ok"}, body["checks"])

	mr.Close()
	resp, body = api.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unavailable", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, apiOptions{})
	api.do(t, http.MethodGet, "/health", nil)

	resp, err := api.client.Get(api.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "http_request_duration_seconds")
}
