package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anoncampus/campusforum/internal/api"
)

// fakeBackend implements just enough of the REST contract for the
// manager: POST /auth/token, GET /users/me, POST /users/.
type fakeBackend struct {
	mu sync.Mutex

	password     string // accepted password for a@b.edu
	token        string // token issued on successful grant
	validTokens  map[string]bool
	signupDetail string // non-empty makes POST /users/ fail with this detail
	meCalls      int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		password:    "pw",
		token:       "T",
		validTokens: map[string]bool{"T": true},
	}
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		r.ParseForm()
		if r.PostFormValue("username") != "a@b.edu" || r.PostFormValue("password") != f.password {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": f.token, "token_type": "bearer"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.meCalls++
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !f.validTokens[token] {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Could not validate credentials"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 1, "username": "alice"})
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.signupDetail != "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"detail": f.signupDetail})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{"id": 2, "username": "bob"})
	})
	return mux
}

func newTestManager(t *testing.T, backend *fakeBackend) (*Manager, *Store, *api.Client) {
	t.Helper()
	ts := httptest.NewServer(backend.handler())
	t.Cleanup(ts.Close)

	client := api.NewClient(ts.URL, "test-client", time.Second)
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	return NewManager(client, store), store, client
}

func TestBootstrapWithoutTokenIsAnonymous(t *testing.T) {
	m, _, _ := newTestManager(t, newFakeBackend())

	m.Bootstrap(context.Background())

	snap := m.Snapshot()
	if snap.State != StateAnonymous || snap.Loading || snap.User != nil {
		t.Errorf("snapshot = %+v, want anonymous, not loading, no user", snap)
	}
}

func TestLoginThenBootstrapYieldsSameUser(t *testing.T) {
	backend := newFakeBackend()
	m, store, client := newTestManager(t, backend)
	m.Bootstrap(context.Background())

	if err := m.Login(context.Background(), "a@b.edu", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	first := m.Snapshot()
	if !first.Authenticated() || first.User.ID != 1 || first.User.Username != "alice" {
		t.Fatalf("post-login snapshot = %+v", first)
	}
	if first.Loading {
		t.Error("loading not cleared on login success path")
	}
	if store.Load() != "T" {
		t.Errorf("persisted token = %q, want %q", store.Load(), "T")
	}

	// Simulate a process restart: fresh manager over the same store.
	m2 := NewManager(client, store)
	m2.Bootstrap(context.Background())
	second := m2.Snapshot()
	if !second.Authenticated() || second.User.ID != first.User.ID {
		t.Errorf("rehydrated snapshot = %+v, want same user id %d", second, first.User.ID)
	}
}

func TestLoginNavigatesHome(t *testing.T) {
	m, _, _ := newTestManager(t, newFakeBackend())
	m.Bootstrap(context.Background())

	var routes []Route
	m.SetNavigate(func(r Route) { routes = append(routes, r) })

	if err := m.Login(context.Background(), "a@b.edu", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if len(routes) != 1 || routes[0] != RouteHome {
		t.Errorf("routes = %v, want [RouteHome]", routes)
	}
}

func TestFailedLoginLeavesUserUnchanged(t *testing.T) {
	m, store, _ := newTestManager(t, newFakeBackend())
	m.Bootstrap(context.Background())

	err := m.Login(context.Background(), "a@b.edu", "wrong")
	if err == nil {
		t.Fatal("expected login failure")
	}

	snap := m.Snapshot()
	if snap.User != nil || snap.State != StateAnonymous {
		t.Errorf("snapshot after failed login = %+v", snap)
	}
	if snap.Error != "Invalid email or password." {
		t.Errorf("error = %q, backend detail must not leak", snap.Error)
	}
	if snap.Loading {
		t.Error("loading not cleared on failure path")
	}
	if store.Load() != "" {
		t.Errorf("token persisted despite failed login: %q", store.Load())
	}
}

func TestBootstrapWithRejectedTokenClearsStore(t *testing.T) {
	backend := newFakeBackend()
	m, store, _ := newTestManager(t, backend)
	if err := store.Save("stale"); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	m.Bootstrap(context.Background())

	snap := m.Snapshot()
	if snap.Loading || snap.User != nil || snap.State != StateAnonymous {
		t.Errorf("snapshot = %+v, want silent anonymous downgrade", snap)
	}
	if snap.Error != "" {
		t.Errorf("bootstrap failure surfaced an error: %q", snap.Error)
	}
	if store.Load() != "" {
		t.Errorf("rejected token still stored: %q", store.Load())
	}
}

func TestSignupSurfacesDetailVerbatim(t *testing.T) {
	backend := newFakeBackend()
	backend.signupDetail = "Email already registered"
	m, _, _ := newTestManager(t, backend)
	m.Bootstrap(context.Background())

	var routes []Route
	m.SetNavigate(func(r Route) { routes = append(routes, r) })

	err := m.Signup(context.Background(), "bob", "b@b.edu", "pw")
	if err == nil {
		t.Fatal("expected signup failure")
	}

	snap := m.Snapshot()
	if snap.Error != "Email already registered" {
		t.Errorf("error = %q, want backend detail verbatim", snap.Error)
	}
	if snap.User != nil {
		t.Errorf("user set by failed signup: %+v", snap.User)
	}
	if len(routes) != 0 {
		t.Errorf("navigation fired on failed signup: %v", routes)
	}
}

func TestSignupSuccessDoesNotAuthenticate(t *testing.T) {
	m, store, _ := newTestManager(t, newFakeBackend())
	m.Bootstrap(context.Background())

	var routes []Route
	m.SetNavigate(func(r Route) { routes = append(routes, r) })

	if err := m.Signup(context.Background(), "bob", "b@b.edu", "pw"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	snap := m.Snapshot()
	if snap.State != StateAnonymous || snap.User != nil {
		t.Errorf("signup authenticated the caller: %+v", snap)
	}
	if store.Load() != "" {
		t.Errorf("signup persisted a token: %q", store.Load())
	}
	if len(routes) != 1 || routes[0] != RouteLogin {
		t.Errorf("routes = %v, want [RouteLogin]", routes)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	m, store, _ := newTestManager(t, newFakeBackend())
	m.Bootstrap(context.Background())
	if err := m.Login(context.Background(), "a@b.edu", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	m.Logout()
	first := m.Snapshot()
	m.Logout()
	second := m.Snapshot()

	for i, snap := range []Snapshot{first, second} {
		if snap.User != nil || snap.Loading || snap.State != StateAnonymous || snap.Error != "" {
			t.Errorf("logout %d: snapshot = %+v", i+1, snap)
		}
	}
	if store.Load() != "" {
		t.Errorf("token survives logout: %q", store.Load())
	}
}

func TestClearErrorTouchesNothingElse(t *testing.T) {
	m, store, _ := newTestManager(t, newFakeBackend())
	m.Bootstrap(context.Background())
	if err := m.Login(context.Background(), "a@b.edu", "pw"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	before := m.Snapshot()
	m.ClearError()
	after := m.Snapshot()

	if after.Error != "" {
		t.Errorf("error = %q after ClearError", after.Error)
	}
	if after.State != before.State || after.Loading != before.Loading {
		t.Errorf("ClearError mutated state: %+v -> %+v", before, after)
	}
	if after.User == nil || after.User.ID != before.User.ID {
		t.Errorf("ClearError mutated user: %+v -> %+v", before.User, after.User)
	}
	if store.Load() != "T" {
		t.Errorf("ClearError mutated token: %q", store.Load())
	}
}

func TestOverlappingLoginRejected(t *testing.T) {
	m, _, _ := newTestManager(t, newFakeBackend())
	m.Bootstrap(context.Background())

	release, err := m.begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer release()

	if err := m.Login(context.Background(), "a@b.edu", "pw"); err != ErrBusy {
		t.Errorf("Login during in-flight op = %v, want ErrBusy", err)
	}
	if err := m.Signup(context.Background(), "bob", "b@b.edu", "pw"); err != ErrBusy {
		t.Errorf("Signup during in-flight op = %v, want ErrBusy", err)
	}
}
