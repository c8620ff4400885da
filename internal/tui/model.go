package tui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/anoncampus/campusforum/internal/api"
	"github.com/anoncampus/campusforum/internal/logger"
	"github.com/anoncampus/campusforum/internal/model"
	"github.com/anoncampus/campusforum/internal/session"
)

// Screen represents which view is active
type Screen int

const (
	// ScreenLoading is shown until session rehydration completes
	ScreenLoading Screen = iota
	ScreenLogin
	ScreenSignup
	ScreenFeed
	ScreenCompose
	ScreenHelp
)

// Form field indices for the login screen
const (
	loginFieldEmail = iota
	loginFieldPassword
	loginFieldCount
)

// Form field indices for the signup screen
const (
	signupFieldUsername = iota
	signupFieldEmail
	signupFieldPassword
	signupFieldConfirm
	signupFieldCount
)

// Form field indices for the compose screen
const (
	composeFieldTitle = iota
	composeFieldContent
	composeFieldCount
)

// Model is the main TUI model
type Model struct {
	mgr        *session.Manager
	client     *api.Client
	feedClient *api.Client

	// Navigation signals from the session manager
	navChan chan session.Route

	// UI state
	width  int
	height int
	screen Screen
	prev   Screen // screen to return to when help closes

	// Feed
	posts      []model.Post
	postCursor int
	feedErr    string
	fetching   bool

	// Forms
	loginInputs   []textinput.Model
	signupInputs  []textinput.Model
	composeInputs []textinput.Model
	focusIndex    int

	message string
}

// NewModel creates a new TUI model. The feed is read from postsURL when
// set, falling back to the main backend otherwise.
func NewModel(mgr *session.Manager, client *api.Client, postsURL string) Model {
	logger.Info("Initializing TUI model")

	feedClient := client
	if postsURL != "" {
		// Read-only edge endpoint; no token, no install ID needed.
		feedClient = api.NewClient(postsURL, "", 0)
	}

	m := Model{
		mgr:        mgr,
		client:     client,
		feedClient: feedClient,
		screen:     ScreenLoading,
		navChan:    make(chan session.Route, 1), // Buffered to avoid blocking
	}

	mgr.SetNavigate(func(r session.Route) {
		// Non-blocking send; a pending signal already covers the refresh
		select {
		case m.navChan <- r:
		default:
		}
	})

	m.loginInputs = newLoginInputs()
	m.signupInputs = newSignupInputs()
	m.composeInputs = newComposeInputs()
	return m
}

func newLoginInputs() []textinput.Model {
	email := textinput.New()
	email.Placeholder = "email@campus.edu"
	email.CharLimit = 128
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return []textinput.Model{email, password}
}

func newSignupInputs() []textinput.Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 40
	username.Focus()

	email := textinput.New()
	email.Placeholder = "email@campus.edu"
	email.CharLimit = 128
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "password (min 8 chars)"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	confirm := textinput.New()
	confirm.Placeholder = "confirm password"
	confirm.CharLimit = 128
	confirm.Width = 40
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'

	return []textinput.Model{username, email, password, confirm}
}

func newComposeInputs() []textinput.Model {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200
	title.Width = 60
	title.Focus()

	content := textinput.New()
	content.Placeholder = "What's on your mind?"
	content.CharLimit = 2000
	content.Width = 60

	return []textinput.Model{title, content}
}

func (m *Model) currentPost() *model.Post {
	if m.postCursor < len(m.posts) {
		return &m.posts[m.postCursor]
	}
	return nil
}

// resetForm blanks a form and focuses its first field
func resetForm(inputs []textinput.Model) {
	for i := range inputs {
		inputs[i].SetValue("")
		inputs[i].Blur()
	}
	inputs[0].Focus()
}
