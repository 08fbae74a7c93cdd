package mvc

import (
	"context"
	"strings"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/message"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type LoginPage struct {
	email    textinput.Model
	password textinput.Model
	msg      string
	busy     bool

	deps *Deps
}

// InitialLoginModel opens the login form, optionally prefilled with email and
// an info line (used after a register that returned no token).
func InitialLoginModel(d *Deps, email, info string) LoginPage {
	m := LoginPage{deps: d, msg: info}

	m.email = textinput.New()
	m.email.Placeholder = "Email"
	m.email.SetValue(email)

	m.password = textinput.New()
	m.password.Placeholder = "Password"
	m.password.EchoMode = textinput.EchoPassword

	if email == "" {
		m.email.Focus()
	} else {
		m.password.Focus()
	}

	return m
}

func (m LoginPage) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		passCmd  tea.Cmd
		emailCmd tea.Cmd
	)
	m.password, passCmd = m.password.Update(msg)
	m.email, emailCmd = m.email.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "down", "tab":
			m.password.Focus()
			m.email.Blur()
		case "up", "shift+tab":
			m.email.Focus()
			m.password.Blur()
		case "esc":
			return InitialHomeModel(m.deps, ""), nil
		case "enter":
			if m.busy {
				break
			}
			email := strings.TrimSpace(m.email.Value())
			if email == "" || m.password.Value() == "" {
				m.msg = "email and password are required"
				break
			}
			m.busy = true
			m.msg = "logging in..."
			return m, m.login(email, m.password.Value())
		}
	case message.LoginMsg:
		m.busy = false
		if msg.Err != nil {
			m.msg = api.LoginMessage(msg.Err)
			return m, nil
		}
		if err := m.deps.Session.Start(context.Background(), msg.Resp.ID, msg.Resp.TokenValue()); err != nil {
			m.deps.logger().Error("could not start session", zap.Error(err))
			m.msg = "the server did not return a token"
			return m, nil
		}
		home := InitialHomeModel(m.deps, "logged in")
		return home, home.Init()
	}
	return m, tea.Batch(passCmd, emailCmd)
}

func (m LoginPage) login(email, password string) tea.Cmd {
	client := m.deps.API
	return func() tea.Msg {
		resp, err := client.Login(context.Background(), email, password)
		return message.LoginMsg{Email: email, Resp: resp, Err: err}
	}
}

func (m LoginPage) View() string {
	var s string

	s = "Login\n\n"

	s += m.email.View() + "\n"
	s += m.password.View() + "\n\n"

	if m.msg != "" {
		s += "Info: " + m.msg + "\n\n"
	}

	s += "enter to log in, esc to go back\n\n"

	return s
}
