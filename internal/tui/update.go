package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/anoncampus/campusforum/internal/model"
	"github.com/anoncampus/campusforum/internal/session"
)

// bootstrapDoneMsg is sent when session rehydration finishes
type bootstrapDoneMsg struct{}

// navMsg carries a navigation signal from the session manager
type navMsg struct {
	route session.Route
}

// loginResultMsg is sent when a login attempt finishes
type loginResultMsg struct {
	err error
}

// signupResultMsg is sent when a signup attempt finishes
type signupResultMsg struct {
	err error
}

// feedMsg carries the fetched feed or the failure that replaced it
type feedMsg struct {
	posts []model.Post
	err   error
}

// postCreatedMsg is sent when publishing a post finishes
type postCreatedMsg struct {
	post model.Post
	err  error
}

// Init starts session rehydration and the navigation listener
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.bootstrapCmd(), m.waitForNav())
}

func (m Model) bootstrapCmd() tea.Cmd {
	return func() tea.Msg {
		m.mgr.Bootstrap(context.Background())
		return bootstrapDoneMsg{}
	}
}

// waitForNav listens for navigation signals from the session manager
func (m Model) waitForNav() tea.Cmd {
	return func() tea.Msg {
		return navMsg{route: <-m.navChan}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return loginResultMsg{err: m.mgr.Login(context.Background(), email, password)}
	}
}

func (m Model) signupCmd(username, email, password string) tea.Cmd {
	return func() tea.Msg {
		return signupResultMsg{err: m.mgr.Signup(context.Background(), username, email, password)}
	}
}

func (m Model) fetchFeedCmd() tea.Cmd {
	return func() tea.Msg {
		posts, err := m.feedClient.ListPosts(context.Background())
		return feedMsg{posts: posts, err: err}
	}
}

func (m Model) createPostCmd(title, content string) tea.Cmd {
	return func() tea.Msg {
		post, err := m.client.CreatePost(context.Background(), title, content)
		return postCreatedMsg{post: post, err: err}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case bootstrapDoneMsg:
		if m.mgr.Snapshot().Authenticated() {
			m.screen = ScreenFeed
			m.fetching = true
			return m, m.fetchFeedCmd()
		}
		m.screen = ScreenLogin
		return m, textinput.Blink

	case navMsg:
		switch msg.route {
		case session.RouteHome:
			m.screen = ScreenFeed
			m.fetching = true
			return m, tea.Batch(m.fetchFeedCmd(), m.waitForNav())
		case session.RouteLogin:
			m.screen = ScreenLogin
			m.focusIndex = 0
			resetForm(m.loginInputs)
			return m, tea.Batch(textinput.Blink, m.waitForNav())
		}
		return m, m.waitForNav()

	case loginResultMsg:
		// On success the manager emits RouteHome; errors surface via
		// the snapshot on the login form.
		return m, nil

	case signupResultMsg:
		if msg.err == nil {
			m.message = "Account created. Log in to continue."
		}
		return m, nil

	case feedMsg:
		m.fetching = false
		if msg.err != nil {
			m.feedErr = fmt.Sprintf("Could not load the feed: %v", msg.err)
			return m, nil
		}
		m.feedErr = ""
		m.posts = msg.posts
		if m.postCursor >= len(m.posts) {
			m.postCursor = 0
		}
		return m, nil

	case postCreatedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Publish failed: %v", msg.err)
			return m, nil
		}
		m.message = fmt.Sprintf("Published: %s", msg.post.Title)
		m.screen = ScreenFeed
		m.fetching = true
		return m, m.fetchFeedCmd()

	case tea.KeyMsg:
		switch m.screen {
		case ScreenLogin:
			return m.updateLogin(msg)
		case ScreenSignup:
			return m.updateSignup(msg)
		case ScreenFeed:
			return m.updateFeed(msg)
		case ScreenCompose:
			return m.updateCompose(msg)
		case ScreenHelp:
			m.screen = m.prev
			return m, nil
		}
	}

	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
		return m.cycleFocus(m.loginInputs, 1)

	case key.Matches(msg, keys.Up):
		return m.cycleFocus(m.loginInputs, -1)

	case key.Matches(msg, keys.Switch):
		m.screen = ScreenSignup
		m.focusIndex = 0
		m.mgr.ClearError()
		resetForm(m.signupInputs)
		return m, textinput.Blink

	case key.Matches(msg, keys.Enter):
		if m.focusIndex < loginFieldCount-1 {
			return m.cycleFocus(m.loginInputs, 1)
		}
		email := strings.TrimSpace(m.loginInputs[loginFieldEmail].Value())
		password := m.loginInputs[loginFieldPassword].Value()
		if email == "" || password == "" {
			m.message = "Email and password are required"
			return m, nil
		}
		m.message = ""
		return m, m.loginCmd(email, password)
	}

	if m.mgr.Snapshot().Error != "" && isTextKey(msg) {
		// Typing resumes the attempt; stale errors just get in the way.
		m.mgr.ClearError()
	}

	var cmd tea.Cmd
	m.loginInputs[m.focusIndex], cmd = m.loginInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) updateSignup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
		return m.cycleFocus(m.signupInputs, 1)

	case key.Matches(msg, keys.Up):
		return m.cycleFocus(m.signupInputs, -1)

	case key.Matches(msg, keys.Switch):
		m.screen = ScreenLogin
		m.focusIndex = 0
		m.mgr.ClearError()
		resetForm(m.loginInputs)
		return m, textinput.Blink

	case key.Matches(msg, keys.Enter):
		if m.focusIndex < signupFieldCount-1 {
			return m.cycleFocus(m.signupInputs, 1)
		}
		username := strings.TrimSpace(m.signupInputs[signupFieldUsername].Value())
		email := strings.TrimSpace(m.signupInputs[signupFieldEmail].Value())
		password := m.signupInputs[signupFieldPassword].Value()
		confirm := m.signupInputs[signupFieldConfirm].Value()

		if username == "" || email == "" || password == "" {
			m.message = "All fields are required"
			return m, nil
		}
		if password != confirm {
			m.message = "Passwords do not match"
			return m, nil
		}
		m.message = ""
		return m, m.signupCmd(username, email, password)
	}

	if m.mgr.Snapshot().Error != "" && isTextKey(msg) {
		m.mgr.ClearError()
	}

	var cmd tea.Cmd
	m.signupInputs[m.focusIndex], cmd = m.signupInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) updateFeed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up), msg.String() == "k":
		if m.postCursor > 0 {
			m.postCursor--
		}

	case key.Matches(msg, keys.Down), msg.String() == "j":
		if m.postCursor < len(m.posts)-1 {
			m.postCursor++
		}

	case msg.String() == "G":
		if len(m.posts) > 0 {
			m.postCursor = len(m.posts) - 1
		}

	case key.Matches(msg, keys.Refresh):
		m.fetching = true
		m.message = ""
		return m, m.fetchFeedCmd()

	case key.Matches(msg, keys.Compose):
		if !m.mgr.Snapshot().Authenticated() {
			m.message = "Log in to publish a post"
			return m, nil
		}
		m.screen = ScreenCompose
		m.focusIndex = 0
		resetForm(m.composeInputs)
		return m, textinput.Blink

	case key.Matches(msg, keys.Logout):
		m.posts = nil
		m.postCursor = 0
		m.message = "Logged out"
		m.mgr.Logout()
		return m, nil

	case key.Matches(msg, keys.Help):
		m.prev = m.screen
		m.screen = ScreenHelp
	}

	return m, nil
}

func (m Model) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, keys.Escape):
		m.screen = ScreenFeed
		return m, nil

	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
		return m.cycleFocus(m.composeInputs, 1)

	case key.Matches(msg, keys.Up):
		return m.cycleFocus(m.composeInputs, -1)

	case key.Matches(msg, keys.Enter):
		if m.focusIndex < composeFieldCount-1 {
			return m.cycleFocus(m.composeInputs, 1)
		}
		title := strings.TrimSpace(m.composeInputs[composeFieldTitle].Value())
		content := strings.TrimSpace(m.composeInputs[composeFieldContent].Value())
		if title == "" || content == "" {
			m.message = "Title and content are required"
			return m, nil
		}
		m.message = ""
		return m, m.createPostCmd(title, content)
	}

	var cmd tea.Cmd
	m.composeInputs[m.focusIndex], cmd = m.composeInputs[m.focusIndex].Update(msg)
	return m, cmd
}

// cycleFocus moves form focus by delta, wrapping around
func (m Model) cycleFocus(inputs []textinput.Model, delta int) (tea.Model, tea.Cmd) {
	inputs[m.focusIndex].Blur()
	m.focusIndex = (m.focusIndex + delta + len(inputs)) % len(inputs)
	inputs[m.focusIndex].Focus()
	return m, textinput.Blink
}

// isTextKey reports whether the key press would change field content
func isTextKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace, tea.KeyBackspace, tea.KeyDelete:
		return true
	}
	return false
}
