// internal/tui/login.go
//
// Username/password prompt shown when no live session token exists. The
// credential exchange runs in a tea.Cmd and comes back as loginFinishedMsg.

package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nlicea/orderdeck/internal/session"
)

type loginFinishedMsg struct {
	err error
}

type loginModel struct {
	session *session.Session
	timeout time.Duration

	username   textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	notice     string
}

func newLoginModel(sess *session.Session, timeout time.Duration) *loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	return &loginModel{
		session:  sess,
		timeout:  timeout,
		username: username,
		password: password,
	}
}

func (l *loginModel) Init() tea.Cmd {
	return l.username.Focus()
}

func (l *loginModel) reset() {
	l.username.SetValue("")
	l.password.SetValue("")
	l.password.Blur()
	l.focus = 0
	l.submitting = false
	l.notice = ""
}

func (l *loginModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab":
			return l.toggleFocus()
		case "enter":
			if l.focus == 0 {
				return l.toggleFocus()
			}
			return l.submit()
		}
	}
	var cmd tea.Cmd
	if l.focus == 0 {
		l.username, cmd = l.username.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}

func (l *loginModel) toggleFocus() tea.Cmd {
	if l.focus == 0 {
		l.focus = 1
		l.username.Blur()
		return l.password.Focus()
	}
	l.focus = 0
	l.password.Blur()
	return l.username.Focus()
}

func (l *loginModel) submit() tea.Cmd {
	username := strings.TrimSpace(l.username.Value())
	password := l.password.Value()
	if username == "" || password == "" {
		l.notice = "username and password are required"
		return nil
	}
	if l.submitting {
		return nil
	}
	l.submitting = true
	l.notice = ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		return loginFinishedMsg{err: l.session.Login(ctx, username, password)}
	}
}

func (l *loginModel) View(width int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("⬡ ORDERDECK · sign in")
	var lines []string
	lines = append(lines, title, "", l.username.View(), l.password.View())
	if l.submitting {
		lines = append(lines, "", "signing in…")
	}
	if l.notice != "" {
		lines = append(lines, "", lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render(l.notice))
	}
	lines = append(lines, "", lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render("tab next field · enter submit · ctrl+c quit"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(1, 2).
		Render(strings.Join(lines, "\n"))
	if width <= 0 {
		return box
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
