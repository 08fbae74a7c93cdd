package mvc

import (
	"context"
	"fmt"
	"time"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/message"
	"github.com/as283-ua/go-social-feed/util/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888")).Width(12)

type UserPage struct {
	user *model.User
	msg  string

	deps *Deps
}

func InitialUserPageModel(d *Deps) UserPage {
	return UserPage{deps: d, msg: "loading profile..."}
}

func (m UserPage) Init() tea.Cmd {
	id, ok := m.deps.Session.UserID()
	if !ok {
		return func() tea.Msg { return message.ProfileMsg{Err: fmt.Errorf("no user id in session")} }
	}
	client := m.deps.API
	return func() tea.Msg {
		u, err := client.GetUser(context.Background(), id)
		return message.ProfileMsg{User: u, Err: err}
	}
}

func (m UserPage) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case message.ProfileMsg:
		if msg.Err != nil {
			m.msg = api.Message(msg.Err, "")
			return m, nil
		}
		m.user = msg.User
		m.msg = ""
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "esc":
			return InitialHomeModel(m.deps, ""), nil
		case "x":
			if err := m.deps.Logout(context.Background()); err != nil {
				m.deps.logger().Error("logout failed", zap.Error(err))
				m.msg = err.Error()
				return m, nil
			}
			home := InitialHomeModel(m.deps, "logged out")
			return home, home.Init()
		}
	}
	return m, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m UserPage) View() string {
	s := "Profile\n\n"

	if u := m.user; u != nil {
		rows := [][2]string{
			{"Name", orDash(u.Name)},
			{"Lastname", orDash(u.Lastname)},
			{"Alias", orDash(u.Alias)},
			{"Email", orDash(u.Email)},
			{"Role", orDash(u.RoleLabel())},
			{"Birthdate", orDash(u.Birthdate)},
			{"Created", formatTime(u.Created)},
			{"Updated", formatTime(u.Updated)},
		}
		for _, r := range rows {
			s += labelStyle.Render(r[0]) + r[1] + "\n"
		}
		s += "\n"
	}

	if m.msg != "" {
		s += "Info: " + m.msg + "\n\n"
	}

	s += "x to log out, ← to go back\n\n"

	return s
}
