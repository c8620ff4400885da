package session

import (
	"context"
	"errors"
	"sync"

	"github.com/anoncampus/campusforum/internal/api"
	"github.com/anoncampus/campusforum/internal/logger"
	"github.com/anoncampus/campusforum/internal/model"
)

// State is the manager's authentication state
type State int

const (
	// StateBootstrapping holds until startup rehydration completes
	StateBootstrapping State = iota
	// StateAnonymous means no validated session
	StateAnonymous
	// StateAuthenticated means the token was validated this run
	StateAuthenticated
)

// Route is a navigation signal emitted to the consumer surface
type Route int

const (
	RouteHome Route = iota
	RouteLogin
)

// ErrBusy is returned when a mutating operation is already in flight.
// Overlapping auth operations are rejected, not queued.
var ErrBusy = errors.New("another auth operation is in progress")

// Fixed user-facing messages. Login failures never echo backend
// detail, so "unknown user" and "wrong password" are indistinguishable.
const (
	loginFailedMessage  = "Invalid email or password."
	signupFailedMessage = "An unexpected error occurred. Please try again."
)

// Snapshot is the read-only session state handed to consumers.
// User is meaningful only once Loading is false.
type Snapshot struct {
	State   State
	User    *model.User
	Loading bool
	Error   string
}

// Authenticated reports whether a validated user is present
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// Manager owns the in-memory session and is the only component that
// touches the token store or the client's bearer token. Every token
// mutation passes through here, so header and durable storage cannot
// drift apart.
type Manager struct {
	client *api.Client
	store  *Store

	mu       sync.Mutex
	busy     bool
	state    State
	user     *model.User
	errMsg   string
	navigate func(Route)
}

// NewManager creates a manager in the bootstrapping state
func NewManager(client *api.Client, store *Store) *Manager {
	return &Manager{
		client: client,
		store:  store,
		state:  StateBootstrapping,
	}
}

// SetNavigate installs the navigation callback. The callback fires
// synchronously at the end of login, signup and logout.
func (m *Manager) SetNavigate(fn func(Route)) {
	m.mu.Lock()
	m.navigate = fn
	m.mu.Unlock()
}

// Snapshot returns a copy of the current session state
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		State:   m.state,
		Loading: m.busy || m.state == StateBootstrapping,
		Error:   m.errMsg,
	}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// begin claims the single in-flight operation slot and clears any
// prior error. The returned func releases the slot; deferring it
// guarantees loading is cleared on every exit path.
func (m *Manager) begin() (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return nil, ErrBusy
	}
	m.busy = true
	m.errMsg = ""
	return func() {
		m.mu.Lock()
		m.busy = false
		m.mu.Unlock()
	}, nil
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.errMsg = msg
	m.mu.Unlock()
}

func (m *Manager) emit(route Route) {
	m.mu.Lock()
	fn := m.navigate
	m.mu.Unlock()
	if fn != nil {
		fn(route)
	}
}

// Bootstrap rehydrates the session from durable storage. Runs once at
// startup; any failure silently downgrades to anonymous and drops the
// stored token. Consumers must not read User until this returns.
func (m *Manager) Bootstrap(ctx context.Context) {
	done, err := m.begin()
	if err != nil {
		return
	}
	defer done()

	token := m.store.Load()
	if token == "" {
		m.mu.Lock()
		m.state = StateAnonymous
		m.mu.Unlock()
		return
	}

	m.client.SetToken(token)
	user, err := m.client.Me(ctx)
	if err != nil {
		// Invalid, expired, or unreachable: drop the token and move on.
		logger.Debug("stored token rejected", logger.F("error", err))
		_ = m.store.Clear()
		m.client.ClearToken()
		m.mu.Lock()
		m.state = StateAnonymous
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()
	logger.Info("session rehydrated", logger.F("user", user.Username))
}

// Login exchanges credentials for a token, validates it, and persists
// it. On success the consumer is signalled to navigate home. On any
// failure the session stays anonymous and a fixed generic message is
// surfaced; backend detail is deliberately not leaked.
func (m *Manager) Login(ctx context.Context, identifier, password string) error {
	done, err := m.begin()
	if err != nil {
		return err
	}
	defer done()

	token, err := m.client.Token(ctx, identifier, password)
	if err != nil {
		logger.Warn("login rejected", logger.F("error", err))
		m.setError(loginFailedMessage)
		return errors.New(loginFailedMessage)
	}

	if err := m.store.Save(token); err != nil {
		logger.Error("failed to persist token", logger.F("error", err))
		m.setError(loginFailedMessage)
		return errors.New(loginFailedMessage)
	}
	m.client.SetToken(token)

	user, err := m.client.Me(ctx)
	if err != nil {
		// Token issued but identity fetch failed: roll back fully so a
		// failed login leaves no partial authentication behind.
		logger.Warn("identity fetch failed after login", logger.F("error", err))
		_ = m.store.Clear()
		m.client.ClearToken()
		m.setError(loginFailedMessage)
		return errors.New(loginFailedMessage)
	}

	m.mu.Lock()
	m.user = &user
	m.state = StateAuthenticated
	m.mu.Unlock()

	logger.Info("logged in", logger.F("user", user.Username))
	m.emit(RouteHome)
	return nil
}

// Signup registers a new account. It never authenticates the caller;
// on success the consumer is pointed at the login view. Backend
// validation detail is surfaced verbatim when present.
func (m *Manager) Signup(ctx context.Context, username, email, password string) error {
	done, err := m.begin()
	if err != nil {
		return err
	}
	defer done()

	if err := m.client.CreateUser(ctx, username, email, password); err != nil {
		msg := api.Detail(err)
		if msg == "" {
			msg = signupFailedMessage
		}
		logger.Warn("signup rejected", logger.F("error", err))
		m.setError(msg)
		return errors.New(msg)
	}

	logger.Info("account created", logger.F("user", username))
	m.emit(RouteLogin)
	return nil
}

// Logout drops the session everywhere: durable store, client header,
// and memory. Synchronous, idempotent, cannot fail.
func (m *Manager) Logout() {
	_ = m.store.Clear()
	m.client.ClearToken()

	m.mu.Lock()
	m.user = nil
	m.state = StateAnonymous
	m.errMsg = ""
	m.mu.Unlock()

	logger.Info("logged out")
	m.emit(RouteLogin)
}

// ClearError clears the surfaced error and nothing else
func (m *Manager) ClearError() {
	m.setError("")
}
