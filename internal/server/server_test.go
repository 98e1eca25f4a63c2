package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/config"
	"portfolio/internal/domain"
	"portfolio/internal/mail"
	"portfolio/internal/services"
	"portfolio/internal/store"
)

type memStore struct {
	mu      sync.Mutex
	records []domain.Contact
}

func (m *memStore) Create(_ context.Context, c *domain.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *c)
	return nil
}

func (m *memStore) List(_ context.Context, _ int) ([]domain.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Contact, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memStore) Ping(context.Context) error  { return nil }
func (m *memStore) Close(context.Context) error { return nil }

type captureMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (c *captureMailer) Send(_ context.Context, msg mail.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

type panicContacts struct{}

func (panicContacts) Submit(context.Context, *domain.Submission) (*services.SubmitResult, error) {
	panic("boom")
}

func (panicContacts) List(context.Context, int) ([]domain.Contact, error) {
	panic("boom")
}

type fixture struct {
	handler http.Handler
	store   *memStore
	mailer  *captureMailer
}

func testConfig(staticDir string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Portfolio Backend", StaticDir: staticDir},
		CORS: config.CORSConfig{
			ClientURL:      "http://localhost:3000",
			AllowedMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
			MaxAge:         86400,
		},
	}
}

func newFixture(t *testing.T, withStore bool) *fixture {
	t.Helper()
	f := &fixture{mailer: &captureMailer{}}

	var st store.Store
	if withStore {
		f.store = &memStore{}
		st = f.store
	}
	contacts := services.NewContactService(st, f.mailer, services.ContactOptions{
		Recipient:    "owner@example.com",
		StoreTimeout: time.Second,
		MailTimeout:  time.Second,
	}, zerolog.Nop())
	health := services.NewHealthService(st, time.Second)

	f.handler = New(testConfig(t.TempDir()), contacts, health, zerolog.Nop()).Handler()
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) messageBody {
	t.Helper()
	var body messageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestSubmitSuccess(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(postJSON(`{"name":"Jane Doe","email":"jane@example.com","subject":"Hello","message":"Hi there"}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	body := decodeMessage(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, "Message sent successfully! Thank you for reaching out.", body.Message)

	require.Len(t, f.mailer.sent, 2)
	assert.Equal(t, "owner@example.com", f.mailer.sent[0].To)
	assert.Equal(t, "jane@example.com", f.mailer.sent[1].To)
	require.Len(t, f.store.records, 1)
	assert.Equal(t, domain.StatusNew, f.store.records[0].Status)
}

func TestSubmitFormEncoded(t *testing.T) {
	f := newFixture(t, false)
	form := url.Values{
		"name":    {"Jane Doe"},
		"email":   {"jane@example.com"},
		"subject": {"Hello"},
		"message": {"Hi there"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := f.do(req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeMessage(t, rec).Success)
	assert.Len(t, f.mailer.sent, 2)
}

func TestSubmitMissingField(t *testing.T) {
	f := newFixture(t, true)

	for _, payload := range []string{
		`{"name":"","email":"jane@example.com","subject":"Hello","message":"Hi"}`,
		`{"name":"Jane","email":"jane@example.com","subject":"Hi"}`,
	} {
		rec := f.do(postJSON(payload))

		assert.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.JSONEq(t, `{"success":false,"message":"All fields are required"}`, rec.Body.String())
	}
	assert.Empty(t, f.mailer.sent)
	assert.Empty(t, f.store.records)
}

func TestSubmitEmptyBody(t *testing.T) {
	f := newFixture(t, true)
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)

	rec := f.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", decodeMessage(t, rec).Message)
}

func TestSubmitInvalidEmail(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(postJSON(`{"name":"Jane","email":"not-an-email","subject":"Hi","message":"Hello"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeMessage(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Please provide a valid email address", body.Message)
	assert.Empty(t, f.mailer.sent)
	assert.Empty(t, f.store.records)
}

func TestSubmitEmailWithSurroundingWhitespace(t *testing.T) {
	f := newFixture(t, true)

	for _, email := range []string{` jane@example.com`, `jane@example.com\n`, `jane\u00a0doe@example.com`} {
		rec := f.do(postJSON(`{"name":"Jane","email":"` + email + `","subject":"Hi","message":"Hello"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code, email)
		assert.JSONEq(t, `{"success":false,"message":"Please provide a valid email address"}`, rec.Body.String())
	}
	assert.Empty(t, f.mailer.sent)
	assert.Empty(t, f.store.records)
}

func TestSubmitMalformedBody(t *testing.T) {
	f := newFixture(t, true)

	for _, body := range []string{`{"name":`, `[1,2,3]`, `{"name":42}`} {
		rec := f.do(postJSON(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Invalid request body", decodeMessage(t, rec).Message, body)
	}
	assert.Empty(t, f.mailer.sent)
}

func TestSubmitBodyTooLarge(t *testing.T) {
	f := newFixture(t, true)
	big := `{"name":"Jane","email":"jane@example.com","subject":"Hi","message":"` +
		strings.Repeat("a", maxBodyBytes) + `"}`

	rec := f.do(postJSON(big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.False(t, decodeMessage(t, rec).Success)
	assert.Empty(t, f.mailer.sent)
}

func TestSubmitDeliveryFailure(t *testing.T) {
	f := newFixture(t, true)
	f.mailer.err = errors.New("535 5.7.8 Username and Password not accepted")

	rec := f.do(postJSON(`{"name":"Jane","email":"jane@example.com","subject":"Hi","message":"Hello"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeMessage(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Failed to send message. Please try again later.", body.Message)
	assert.NotContains(t, rec.Body.String(), "535")
	assert.Len(t, f.store.records, 1)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body services.HealthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "Portfolio Backend is running!", body.Message)
	assert.Equal(t, services.DatabaseDisabled, body.Database)
	_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	assert.NoError(t, err)
}

func TestListWithoutStore(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeMessage(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "Database not connected", body.Message)
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())

	for _, subject := range []string{"first", "second"} {
		r := f.do(postJSON(`{"name":"Jane","email":"jane@example.com","subject":"` + subject + `","message":"Hello"}`))
		require.Equal(t, http.StatusOK, r.Code)
	}

	rec = f.do(httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool             `json:"success"`
		Data    []domain.Contact `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "second", body.Data[0].Subject)
	assert.Equal(t, "first", body.Data[1].Subject)
}

func TestRouteNotFound(t *testing.T) {
	f := newFixture(t, true)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/nope", nil),
		httptest.NewRequest(http.MethodGet, "/api/contact", nil),
		httptest.NewRequest(http.MethodDelete, "/api/contacts", nil),
		httptest.NewRequest(http.MethodPost, "/index.html", nil),
	} {
		rec := f.do(req)
		assert.Equal(t, http.StatusNotFound, rec.Code, req.Method+" "+req.URL.Path)
		assert.JSONEq(t, `{"success":false,"message":"Route not found"}`, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, true)
	req := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "content-type")

	rec := f.do(req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Equal(t, "content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, f.mailer.sent)
}

func TestCORSHeadersOnResponses(t *testing.T) {
	f := newFixture(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")

	rec := f.do(req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRequestIDEchoed(t *testing.T) {
	f := newFixture(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")

	rec := f.do(req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestPanicRecovered(t *testing.T) {
	srv := New(testConfig(""), panicContacts{}, services.NewHealthService(nil, time.Second), zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, rec.Body.String())
}

func TestRecovererAbortsStartedResponse(t *testing.T) {
	h := recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,`))
		panic("boom")
	}), zerolog.Nop())

	rec := httptest.NewRecorder()
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"success":true,`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, false)
	f.do(httptest.NewRequest(http.MethodGet, "/api/health", nil))

	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>home</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EMAIL_PASS=secret"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "blog"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "index.html"), []byte("blog"), 0o644))

	srv := New(testConfig(dir), panicContacts{}, services.NewHealthService(nil, time.Second), zerolog.Nop())
	h := srv.Handler()
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>home</h1>", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	rec = get("/app.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())

	assert.Equal(t, "blog", get("/blog").Body.String())

	for _, path := range []string{"/.env", "/blog/../.env", "/missing.css"} {
		rec = get(path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "secret", path)
	}
}

func TestStaticFilesStayInsideRoot(t *testing.T) {
	outside := t.TempDir()
	secret := filepath.Join(outside, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top secret"), 0o644))

	dir := t.TempDir()
	if err := os.Symlink(secret, filepath.Join(dir, "leak.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "shared")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("ok"), 0o644))
	require.NoError(t, os.Symlink("real.txt", filepath.Join(dir, "alias.txt")))

	srv := New(testConfig(dir), panicContacts{}, services.NewHealthService(nil, time.Second), zerolog.Nop())
	h := srv.Handler()
	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	for _, path := range []string{"/leak.txt", "/shared/secret.txt"} {
		rec := get(path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "top secret", path)
	}

	rec := get("/alias.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
