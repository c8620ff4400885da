package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.screen {
	case ScreenLoading:
		content = m.renderLoading()
	case ScreenLogin:
		content = m.renderLogin()
	case ScreenSignup:
		content = m.renderSignup()
	case ScreenFeed:
		content = m.renderFeed()
	case ScreenCompose:
		content = m.renderCompose()
	case ScreenHelp:
		content = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
}

func (m Model) renderLoading() string {
	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		TitleStyle.Render("CampusForum")+"\n\n"+HelpStyle.Render("Restoring session..."),
	)
}

func (m Model) renderLogin() string {
	content := TitleStyle.Render("CampusForum Login") + "\n\n"
	content += LabelStyle.Render("Email") + "\n"
	content += m.loginInputs[loginFieldEmail].View() + "\n\n"
	content += LabelStyle.Render("Password") + "\n"
	content += m.loginInputs[loginFieldPassword].View() + "\n"

	// Auth errors render inline, right under the form fields
	snap := m.mgr.Snapshot()
	if snap.Error != "" {
		content += "\n" + ErrorStyle.Render(snap.Error) + "\n"
	} else if m.message != "" {
		content += "\n" + SuccessStyle.Render(m.message) + "\n"
	}
	if snap.Loading {
		content += "\n" + HelpStyle.Render("Logging in...") + "\n"
	}

	content += "\n" + HelpStyle.Render("Enter:submit  Tab:next field  Ctrl+S:sign up  Ctrl+C:quit")

	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		FormStyle.Render(content),
	)
}

func (m Model) renderSignup() string {
	content := TitleStyle.Render("Create Account") + "\n\n"
	content += LabelStyle.Render("Username (shown on your posts)") + "\n"
	content += m.signupInputs[signupFieldUsername].View() + "\n\n"
	content += LabelStyle.Render("Email") + "\n"
	content += m.signupInputs[signupFieldEmail].View() + "\n\n"
	content += LabelStyle.Render("Password") + "\n"
	content += m.signupInputs[signupFieldPassword].View() + "\n\n"
	content += LabelStyle.Render("Confirm Password") + "\n"
	content += m.signupInputs[signupFieldConfirm].View() + "\n"

	snap := m.mgr.Snapshot()
	if snap.Error != "" {
		content += "\n" + ErrorStyle.Render(snap.Error) + "\n"
	} else if m.message != "" {
		content += "\n" + ErrorStyle.Render(m.message) + "\n"
	}
	if snap.Loading {
		content += "\n" + HelpStyle.Render("Creating account...") + "\n"
	}

	content += "\n" + HelpStyle.Render("Enter:submit  Tab:next field  Ctrl+S:back to login  Ctrl+C:quit")

	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		FormStyle.Render(content),
	)
}

func (m Model) renderFeed() string {
	width := m.width - 4
	var s string

	header := "CampusForum"
	if snap := m.mgr.Snapshot(); snap.Authenticated() {
		header = fmt.Sprintf("CampusForum  ·  %s", snap.User.Username)
	}
	s += TitleStyle.Render(header) + "\n"
	s += DividerStyle.Render(strings.Repeat("─", max(width-4, 1))) + "\n\n"

	switch {
	case m.fetching:
		s += HelpStyle.Render("  Loading feed...")

	case m.feedErr != "":
		// Feed failures replace the whole list, not a post slot
		s += ErrorStyle.Render("  "+m.feedErr) + "\n\n"
		s += HelpStyle.Render("  Press 'r' to retry.")

	case len(m.posts) == 0:
		s += HelpStyle.Render("  No posts yet. Press 'c' to write the first one.")

	default:
		visible := m.height - 8
		if visible < 1 {
			visible = 1
		}
		start := 0
		if m.postCursor >= visible {
			start = m.postCursor - visible + 1
		}

		shown := 0
		for i := start; i < len(m.posts); i++ {
			if shown >= visible {
				break
			}
			p := m.posts[i]

			cursor := "  "
			titleStyle := PostTitleStyle
			if i == m.postCursor {
				cursor = "❯ "
				titleStyle = PostSelectedStyle
			}

			s += cursor + titleStyle.Render(truncate(p.Title, width-6)) + "\n"
			meta := fmt.Sprintf("   %s · %s", p.Author.Username, p.CreatedAt.Format("Jan 2 15:04"))
			s += PostMetaStyle.Render(meta) + "\n"
			if i == m.postCursor {
				s += "   " + truncate(strings.ReplaceAll(p.Content, "\n", " "), width-6) + "\n"
			}
			s += "\n"
			shown++
		}
	}

	return FeedStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderCompose() string {
	content := TitleStyle.Render("New Post") + "\n\n"
	content += LabelStyle.Render("Title") + "\n"
	content += m.composeInputs[composeFieldTitle].View() + "\n\n"
	content += LabelStyle.Render("Content") + "\n"
	content += m.composeInputs[composeFieldContent].View() + "\n"

	if m.message != "" {
		content += "\n" + ErrorStyle.Render(m.message) + "\n"
	}

	content += "\n" + HelpStyle.Render("Enter:publish  Tab:next field  Esc:cancel")

	return lipgloss.Place(
		m.width, m.height-2,
		lipgloss.Center, lipgloss.Center,
		FormStyle.Render(content),
	)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Feed                    │
│  ────                    │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  G      Go to bottom     │
│  r      Refresh feed     │
│  c      Compose post     │
│  L      Logout           │
│                          │
│  Other                   │
│  ─────                   │
│  ?      Toggle help      │
│  q      Quit             │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}

func (m Model) renderStatusBar() string {
	var help string
	switch m.screen {
	case ScreenFeed:
		help = "r:refresh  c:compose  L:logout  ?:help  q:quit"
		if m.message != "" {
			help = m.message
		}
	case ScreenLogin:
		help = "Enter:login  Ctrl+S:sign up"
	case ScreenSignup:
		help = "Enter:create account  Ctrl+S:back to login"
	case ScreenCompose:
		help = "Enter:publish  Esc:cancel"
	default:
		help = ""
	}
	return StatusBarStyle.Width(m.width).Render(help)
}
