package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geleit/geleit/pkg/api"
	"github.com/geleit/geleit/pkg/auth"
	"github.com/geleit/geleit/pkg/auth/bearer"
	"github.com/geleit/geleit/pkg/password"
	"github.com/geleit/geleit/pkg/storage"
	"github.com/geleit/geleit/pkg/storage/memory"
	"github.com/geleit/geleit/pkg/token"
)

var (
	testPwdKey   = []byte(strings.Repeat("0123456789abcdef", 4))
	testTokenKey = []byte(strings.Repeat("fedcba9876543210", 4))
)

const testPassword = "correct horse battery staple"

// testEnv bundles a configured web handler with its seeded store.
type testEnv struct {
	handler http.Handler
	store   *memory.Store
	hasher  *password.Hasher
	signer  *token.Signer
	user    *storage.Credential
}

// newTestEnv seeds one user ("alice") with testPassword hashed under
// the default scheme. mutate may adjust the config before the server
// is built.
func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()

	store := memory.New()
	hasher := password.NewHasher(testPwdKey, nil)
	signer := token.NewSigner(testTokenKey, time.Minute)
	ctx := context.Background()

	cred, err := store.Create(ctx, storage.NewCredential{Username: "alice"})
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	hash, err := hasher.Hash(ctx, password.ContentToHash{Content: testPassword, Salt: cred.PasswordSalt})
	if err != nil {
		t.Fatalf("hashing seed password: %v", err)
	}
	if err := store.UpdatePasswordHash(ctx, cred.ID, hash); err != nil {
		t.Fatalf("storing seed hash: %v", err)
	}
	cred, err = store.ByID(ctx, cred.ID)
	if err != nil {
		t.Fatalf("re-reading seed user: %v", err)
	}

	cfg := Config{Users: store, Hasher: hasher, Signer: signer}
	if mutate != nil {
		mutate(&cfg)
	}
	srv := New(cfg)

	return &testEnv{
		handler: srv.Handler(),
		store:   store,
		hasher:  hasher,
		signer:  signer,
		user:    cred,
	}
}

// postJSON sends a JSON body to path through the full handler chain.
func (e *testEnv) postJSON(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest("POST", path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

// sessionCookie returns the issued (non-removal) session cookie from a
// response.
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge >= 0 {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

// errorType decodes the error envelope and returns its type.
func errorType(t *testing.T, rec *httptest.ResponseRecorder) api.ErrorType {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error envelope from %q: %v", rec.Body.String(), err)
	}
	if resp.Error == nil {
		t.Fatalf("no error in envelope %q", rec.Body.String())
	}
	return resp.Error.Type
}

func TestLoginResolveFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	login := env.postJSON(t, "/api/login", `{"username":"alice","password":"`+testPassword+`"}`)
	if login.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", login.Code, login.Body.String())
	}
	issued := sessionCookie(t, login)

	r := httptest.NewRequest("GET", "/api/me", nil)
	r.AddCookie(issued)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body.String())
	}

	var me api.MeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decoding me response: %v", err)
	}
	if me.UserID != env.user.ID {
		t.Errorf("UserID = %d, want %d", me.UserID, env.user.ID)
	}
	if me.Username != "alice" {
		t.Errorf("Username = %q, want alice", me.Username)
	}
	if me.LastLoginAt == nil {
		t.Error("LastLoginAt not set after login")
	}

	// Every authenticated request rotates the session token.
	rotated := sessionCookie(t, rec)
	tok, err := token.Parse(rotated.Value)
	if err != nil {
		t.Fatalf("parsing rotated token: %v", err)
	}
	if err := env.signer.Validate(tok, env.user.TokenSalt); err != nil {
		t.Errorf("rotated token does not validate: %v", err)
	}
}

func TestMeWithoutSession(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errorType(t, rec); got != api.ErrorTypeNoAuth {
		t.Errorf("error type = %q, want no_auth", got)
	}
}

func TestMeWithBearerToken(t *testing.T) {
	svcKey := []byte(strings.Repeat("a1b2c3d4e5f60718", 2))
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Bearer = bearer.NewValidator(svcKey)
	})

	tok, err := bearer.Issue(svcKey, env.user.ID, "", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/me", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var me api.MeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("decoding me response: %v", err)
	}
	if me.UserID != env.user.ID {
		t.Errorf("UserID = %d, want %d", me.UserID, env.user.ID)
	}
}

func TestMeBearerForVanishedUser(t *testing.T) {
	svcKey := []byte(strings.Repeat("a1b2c3d4e5f60718", 2))
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Bearer = bearer.NewValidator(svcKey)
	})

	tok, err := bearer.Issue(svcKey, 999999, "", time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/api/me", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errorType(t, rec); got != api.ErrorTypeNoAuth {
		t.Errorf("error type = %q, want no_auth", got)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health api.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Status = %q, want ok", health.Status)
	}
}

// unhealthyStore wraps a store with a failing health check.
type unhealthyStore struct {
	*memory.Store
}

func (unhealthyStore) HealthCheck(context.Context) error {
	return context.DeadlineExceeded
}

func TestHealthzUnavailable(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Users = unhealthyStore{Store: memory.New()}
	})

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Metrics = true
	})

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics exposition is missing runtime collectors")
	}
}

func TestMetricsDisabledByDefault(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
