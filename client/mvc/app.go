package mvc

import (
	"context"

	"github.com/as283-ua/go-social-feed/client/message"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// leaver is implemented by pages holding in-flight work to cancel when the
// page is replaced from outside.
type leaver interface {
	Leave()
}

// App hosts the current page and handles what is common to all of them.
type App struct {
	deps   *Deps
	page   tea.Model
	authed bool
}

func NewApp(d *Deps) App {
	return App{deps: d, page: InitialHomeModel(d, ""), authed: d.Session.Authenticated()}
}

func (a App) Page() tea.Model {
	return a.page
}

func (a App) Init() tea.Cmd {
	return a.page.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.leave()
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		w := msg.Width - 8
		if a.deps.Config != nil && a.deps.Config.UI.WordWrap > 0 {
			w = min(w, a.deps.Config.UI.WordWrap)
		}
		if w > 0 {
			a.deps.Renderer = a.deps.Renderer.Resize(w)
		}
	case message.SessionChangedMsg:
		if err := a.deps.Session.Load(context.Background()); err != nil {
			a.deps.logger().Warn("session reload failed", zap.Error(err))
			return a, nil
		}
		authed := a.deps.Session.Authenticated()
		if authed == a.authed {
			return a, nil
		}
		a.authed = authed
		if !authed {
			a.deps.Authors.Cache().Purge()
		}
		a.leave()
		home := InitialHomeModel(a.deps, "session changed in another window")
		a.page = home
		return a, message.ResetAfter(infoTimeout)
	}

	var cmd tea.Cmd
	a.page, cmd = a.page.Update(msg)
	a.authed = a.deps.Session.Authenticated()
	return a, cmd
}

func (a App) View() string {
	return a.page.View()
}

func (a App) leave() {
	if l, ok := a.page.(leaver); ok {
		l.Leave()
	}
}
