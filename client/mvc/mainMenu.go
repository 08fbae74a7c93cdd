package mvc

import (
	"context"
	"fmt"

	"github.com/as283-ua/go-social-feed/client/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	optRegister = "Register"
	optLogin    = "Login"
	optPosts    = "Posts"
	optProfile  = "Profile"
	optLogout   = "Logout"
)

type HomePage struct {
	options     []string
	cursor      int
	cursorStyle lipgloss.Style
	msg         string

	deps *Deps
}

func InitialHomeModel(d *Deps, info string) HomePage {
	m := HomePage{deps: d, msg: info}

	if d.Session.Authenticated() {
		m.options = []string{optPosts, optProfile, optLogout}
	} else {
		m.options = []string{optRegister, optLogin}
	}

	m.cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000")).Background(lipgloss.Color("#FFF"))

	return m
}

func (m HomePage) Init() tea.Cmd {
	if m.msg != "" {
		return message.ResetAfter(infoTimeout)
	}
	return nil
}

func (m HomePage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case message.ResetMsg:
		m.msg = ""
	case tea.KeyMsg:
		switch msg.String() {
		case "down":
			m.cursor++
			if m.cursor >= len(m.options) {
				m.cursor = 0
			}
		case "up":
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.options) - 1
			}
		case "q":
			return m, tea.Quit
		case "enter", "right":
			return m.open(m.options[m.cursor])
		}
	}
	return m, nil
}

func (m HomePage) open(option string) (tea.Model, tea.Cmd) {
	switch option {
	case optRegister:
		return InitialRegisterModel(m.deps), nil
	case optLogin:
		return InitialLoginModel(m.deps, "", ""), nil
	case optPosts:
		p := InitialPostListModel(m.deps)
		return p, p.Init()
	case optProfile:
		p := InitialUserPageModel(m.deps)
		return p, p.Init()
	case optLogout:
		if err := m.deps.Logout(context.Background()); err != nil {
			m.deps.logger().Error("logout failed", zap.Error(err))
			m.msg = err.Error()
			return m, message.ResetAfter(infoTimeout)
		}
		home := InitialHomeModel(m.deps, "logged out")
		return home, home.Init()
	}
	return m, nil
}

func (m HomePage) View() string {
	var s string
	if id, ok := m.deps.Session.UserID(); ok {
		s = fmt.Sprintf("Hello, user #%d\n\n", id)
	}
	s += "Options:\n"

	for i, option := range m.options {
		if i == m.cursor {
			s += "\t" + m.cursorStyle.Render(option) + "\n"
		} else {
			s += "\t" + option + "\n"
		}
	}

	if m.msg != "" {
		s += fmt.Sprintf("\nInfo: %s\n", m.msg)
	}

	s += "\nPress 'q' or 'ctrl+c' to quit\n\n"

	return s
}
