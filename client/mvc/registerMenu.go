package mvc

import (
	"context"
	"errors"
	"strings"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/message"
	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

const minPasswordLen = 6

const (
	fieldEmail = iota
	fieldName
	fieldLastname
	fieldAlias
	fieldBirthdate
	fieldPassword
	fieldConfirm
	fieldCount
)

var (
	errEmailRequired   = errors.New("email is required")
	errPasswordShort   = errors.New("password must be at least 6 characters")
	errConfirmShort    = errors.New("password confirmation must be at least 6 characters")
	errPasswordsDiffer = errors.New("passwords do not match")
)

type RegisterPage struct {
	inputs []textinput.Model
	focus  int
	msg    string
	busy   bool

	deps *Deps
}

func InitialRegisterModel(d *Deps) RegisterPage {
	m := RegisterPage{deps: d, inputs: make([]textinput.Model, fieldCount)}

	placeholders := [fieldCount]string{
		fieldEmail:     "Email",
		fieldName:      "Name",
		fieldLastname:  "Lastname",
		fieldAlias:     "Alias",
		fieldBirthdate: "Birthdate (YYYY-MM-DD)",
		fieldPassword:  "Password",
		fieldConfirm:   "Confirm password",
	}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		if i == fieldPassword || i == fieldConfirm {
			in.EchoMode = textinput.EchoPassword
		}
		m.inputs[i] = in
	}
	m.inputs[fieldEmail].Focus()

	return m
}

func (m RegisterPage) Init() tea.Cmd {
	return textinput.Blink
}

// validateRegister checks the form before anything is sent.
func validateRegister(req model.RegisterRequest, confirm string) error {
	switch {
	case strings.TrimSpace(req.Email) == "":
		return errEmailRequired
	case len(req.Password) < minPasswordLen:
		return errPasswordShort
	case len(confirm) < minPasswordLen:
		return errConfirmShort
	case req.Password != confirm:
		return errPasswordsDiffer
	}
	return nil
}

func (m RegisterPage) request() model.RegisterRequest {
	value := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }
	return model.RegisterRequest{
		Email:     value(fieldEmail),
		Name:      value(fieldName),
		Lastname:  value(fieldLastname),
		Alias:     value(fieldAlias),
		Birthdate: value(fieldBirthdate),
		Password:  m.inputs[fieldPassword].Value(),
		RoleID:    model.DefaultRoleID,
	}
}

func (m RegisterPage) setFocus(i int) RegisterPage {
	m.inputs[m.focus].Blur()
	m.focus = (i + fieldCount) % fieldCount
	m.inputs[m.focus].Focus()
	return m
}

func (m RegisterPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "down", "tab":
			m = m.setFocus(m.focus + 1)
		case "up", "shift+tab":
			m = m.setFocus(m.focus - 1)
		case "esc":
			return InitialHomeModel(m.deps, ""), nil
		case "enter":
			if m.busy {
				break
			}
			req := m.request()
			if err := validateRegister(req, m.inputs[fieldConfirm].Value()); err != nil {
				m.msg = err.Error()
				break
			}
			m.busy = true
			m.msg = "creating user..."
			return m, m.register(req)
		}
	case message.RegisterMsg:
		m.busy = false
		if msg.Err != nil {
			m.msg = api.Message(msg.Err, "")
			return m, nil
		}
		token := msg.Resp.TokenValue()
		if token == "" {
			return InitialLoginModel(m.deps, msg.Email, "registered, now log in"), nil
		}
		if err := m.deps.Session.Start(context.Background(), msg.Resp.ID, token); err != nil {
			m.deps.logger().Error("could not start session", zap.Error(err))
			return InitialLoginModel(m.deps, msg.Email, "registered, now log in"), nil
		}
		home := InitialHomeModel(m.deps, "registered")
		return home, home.Init()
	}
	return m, tea.Batch(cmds...)
}

func (m RegisterPage) register(req model.RegisterRequest) tea.Cmd {
	client := m.deps.API
	return func() tea.Msg {
		resp, err := client.Register(context.Background(), req)
		return message.RegisterMsg{Email: req.Email, Resp: resp, Err: err}
	}
}

func (m RegisterPage) View() string {
	s := "Register\n\n"

	for _, in := range m.inputs {
		s += in.View() + "\n"
	}
	s += "\n"

	if m.msg != "" {
		s += "Info: " + m.msg + "\n\n"
	}

	s += "enter to register, esc to go back\n\n"

	return s
}
