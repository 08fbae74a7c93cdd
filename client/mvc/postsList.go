package mvc

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/card"
	"github.com/as283-ua/go-social-feed/client/compose"
	"github.com/as283-ua/go-social-feed/client/feed"
	"github.com/as283-ua/go-social-feed/client/message"
	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focus int

const (
	focusList focus = iota
	focusCompose
	focusEdit
)

const (
	composeBody = iota
	composeCaption
)

/*
Page layout:
  - feed and cards move together: cards[i] is the card of feed.Posts()[i].
    Publishing puts the new post first in both without a reload.
  - ctx is cancelled when the page is left, so author and like responses that
    arrive late are dropped.
  - focus decides who gets the keys: the list (l, e, arrows), the publish form
    or the editor of a card.
*/

type PostListModel struct {
	viewport viewport.Model
	textbox  textarea.Model
	path     textinput.Model
	caption  textinput.Model
	editBox  textarea.Model
	field    int
	focus    focus
	msg      string

	deps    *Deps
	ctx     context.Context
	cancel  context.CancelFunc
	feed    *feed.Feed
	form    *compose.Form
	cards   []*card.Card
	names   map[int64]string
	cursor  int
	editing int
}

func InitialPostListModel(d *Deps) PostListModel {
	m := PostListModel{deps: d, editing: -1, names: map[int64]string{}}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.feed = feed.New(d.API, d.Log)
	m.form = compose.New()

	width := d.Renderer.Width() + 4
	m.viewport = viewport.New(width, 14)

	m.textbox = textarea.New()
	m.textbox.Placeholder = "What's happening?"
	m.textbox.Prompt = "┃ "
	m.textbox.CharLimit = 280
	m.textbox.ShowLineNumbers = false
	m.textbox.SetHeight(3)
	m.textbox.SetWidth(width)
	// Remove cursor line styling
	m.textbox.FocusedStyle.CursorLine = lipgloss.NewStyle()

	m.path = textinput.New()
	m.path.Placeholder = "Path to an image"

	m.caption = textinput.New()
	m.caption.Placeholder = "Caption (optional)"

	m.editBox = textarea.New()
	m.editBox.ShowLineNumbers = false
	m.editBox.SetHeight(3)
	m.editBox.SetWidth(d.Renderer.Width())

	if d.Session.Expired(time.Now()) {
		m.msg = "your session has expired, log in again"
	}

	return m
}

func (m PostListModel) Init() tea.Cmd {
	return m.load()
}

// Leave cancels every request started by the page.
func (m PostListModel) Leave() {
	m.cancel()
}

func (m PostListModel) load() tea.Cmd {
	ctx, f := m.ctx, m.feed
	return func() tea.Msg {
		err := f.Load(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return message.PostsMsg{Posts: f.Posts(), Err: err}
	}
}

func (m PostListModel) resolveAuthor(post model.Post) tea.Cmd {
	ctx, resolver := m.ctx, m.deps.Authors
	return func() tea.Msg {
		name := resolver.Resolve(ctx, post)
		if ctx.Err() != nil {
			return nil
		}
		return message.AuthorMsg{PostID: post.ID, Name: name}
	}
}

func (m PostListModel) newCard(p model.Post) *card.Card {
	return card.New(p, m.deps.API, m.deps.Session, m.deps.Log)
}

func (m PostListModel) selected() *card.Card {
	if m.cursor < 0 || m.cursor >= len(m.cards) {
		return nil
	}
	return m.cards[m.cursor]
}

func (m PostListModel) info(s string) (PostListModel, tea.Cmd) {
	m.msg = s
	return m, message.ResetAfter(infoTimeout)
}

func (m PostListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		var next tea.Model
		next, cmd = m.handleKey(msg)
		if page, ok := next.(PostListModel); ok {
			page.refresh()
			return page, cmd
		}
		return next, cmd
	case message.ResetMsg:
		m.msg = ""
	case message.PostsMsg:
		m, cmd = m.loaded(msg)
	case message.AuthorMsg:
		m.names[msg.PostID] = msg.Name
	case message.LikeMsg:
		if msg.Err != nil {
			m, cmd = m.info(api.Message(msg.Err, ""))
		}
	case message.PostCreatedMsg:
		m, cmd = m.created(msg)
	case message.PostUpdatedMsg:
		if msg.Err != nil {
			m, cmd = m.info(api.Message(msg.Err, ""))
		} else {
			m.feed.Replace(msg.Post)
			m, cmd = m.info("post updated")
		}
	default:
		var cmds [4]tea.Cmd
		m.textbox, cmds[0] = m.textbox.Update(msg)
		m.path, cmds[1] = m.path.Update(msg)
		m.caption, cmds[2] = m.caption.Update(msg)
		m.editBox, cmds[3] = m.editBox.Update(msg)
		cmd = tea.Batch(cmds[:]...)
	}

	m.refresh()
	return m, cmd
}

func (m PostListModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.focus {
	case focusEdit:
		switch key {
		case "esc":
			m.cards[m.editing].CancelEdit()
			m = m.stopEditing()
			return m, nil
		case "ctrl+s":
			return m.saveEdit()
		}
		var cmd tea.Cmd
		m.editBox, cmd = m.editBox.Update(msg)
		return m, cmd

	case focusCompose:
		switch key {
		case "esc":
			m.focus = focusList
			m.textbox.Blur()
			m.path.Blur()
			m.caption.Blur()
			return m, nil
		case "tab":
			m.form.Toggle()
			cmd := m.focusField(composeBody)
			return m, cmd
		case "up", "down":
			cmd := m.focusField(1 - m.field)
			return m, cmd
		case "ctrl+s":
			return m.publish()
		case "ctrl+r":
			return m, m.load()
		}
		var cmd tea.Cmd
		switch {
		case m.field == composeCaption:
			m.caption, cmd = m.caption.Update(msg)
		case m.form.Mode() == compose.ModeImage:
			m.path, cmd = m.path.Update(msg)
		default:
			m.textbox, cmd = m.textbox.Update(msg)
		}
		return m, cmd
	}

	switch key {
	case "left", "esc":
		m.Leave()
		return InitialHomeModel(m.deps, ""), nil
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.cards)-1 {
			m.cursor++
		}
	case "l":
		return m.like()
	case "e":
		return m.edit()
	case "tab":
		m.form.Toggle()
	case "i", "enter":
		m.focus = focusCompose
		cmd := m.focusField(composeBody)
		return m, cmd
	case "ctrl+s":
		return m.publish()
	case "ctrl+r":
		m.msg = ""
		return m, m.load()
	}
	return m, nil
}

func (m *PostListModel) focusField(field int) tea.Cmd {
	m.field = field
	m.textbox.Blur()
	m.path.Blur()
	m.caption.Blur()

	switch {
	case field == composeCaption:
		return m.caption.Focus()
	case m.form.Mode() == compose.ModeImage:
		return m.path.Focus()
	default:
		return m.textbox.Focus()
	}
}

func (m PostListModel) loaded(msg message.PostsMsg) (PostListModel, tea.Cmd) {
	if msg.Err != nil {
		m.cards = nil
		m.cursor = 0
		return m, nil
	}

	m.cards = make([]*card.Card, len(msg.Posts))
	cmds := make([]tea.Cmd, len(msg.Posts))
	for i, p := range msg.Posts {
		m.cards[i] = m.newCard(p)
		cmds[i] = m.resolveAuthor(p)
	}
	m.cursor = min(m.cursor, max(len(m.cards)-1, 0))
	m.editing = -1
	if m.focus == focusEdit {
		m.focus = focusList
	}
	return m, tea.Batch(cmds...)
}

func (m PostListModel) like() (PostListModel, tea.Cmd) {
	c := m.selected()
	if c == nil {
		return m, nil
	}

	pending, err := c.BeginLike()
	switch {
	case errors.Is(err, card.ErrLikeInFlight), errors.Is(err, card.ErrNoPost):
		return m, nil
	case err != nil:
		return m.info(err.Error())
	}

	ctx := m.ctx
	return m, func() tea.Msg {
		state, err := c.FinishLike(ctx, pending)
		if ctx.Err() != nil {
			return nil
		}
		return message.LikeMsg{PostID: pending.PostID(), State: state, Err: err}
	}
}

func (m PostListModel) edit() (PostListModel, tea.Cmd) {
	c := m.selected()
	if c == nil {
		return m, nil
	}
	if err := c.BeginEdit(); err != nil {
		return m.info(err.Error())
	}

	m.focus = focusEdit
	m.editing = m.cursor
	m.editBox.SetValue(c.Draft())
	cmd := m.editBox.Focus()
	return m, cmd
}

func (m PostListModel) stopEditing() PostListModel {
	m.focus = focusList
	m.editing = -1
	m.editBox.Blur()
	m.editBox.Reset()
	return m
}

func (m PostListModel) saveEdit() (PostListModel, tea.Cmd) {
	c := m.cards[m.editing]
	c.SetDraft(m.editBox.Value())
	m = m.stopEditing()

	ctx := m.ctx
	return m, func() tea.Msg {
		post, err := c.SaveEdit(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return message.PostUpdatedMsg{Post: post, Err: err}
	}
}

func (m PostListModel) publish() (PostListModel, tea.Cmd) {
	if m.form.Busy() {
		return m, nil
	}

	m.form.SetText(m.textbox.Value())
	m.form.SetCaption(m.caption.Value())
	if m.form.Mode() == compose.ModeImage {
		if path := strings.TrimSpace(m.path.Value()); path == "" {
			m.form.SelectImage(nil)
		} else if err := m.form.SelectImageFile(path); err != nil {
			return m.info(err.Error())
		}
	}
	if err := m.form.Validate(); err != nil {
		return m.info(err.Error())
	}

	userID, _ := m.deps.Session.UserID()
	ctx, form, f := m.ctx, m.form, m.feed
	m.msg = "publishing..."
	return m, func() tea.Msg {
		post, err := form.Submit(ctx, userID, f)
		if ctx.Err() != nil {
			return nil
		}
		return message.PostCreatedMsg{Post: post, Err: err}
	}
}

func (m PostListModel) created(msg message.PostCreatedMsg) (PostListModel, tea.Cmd) {
	if msg.Err != nil {
		return m.info(m.form.Message())
	}

	m.cards = slices.Concat([]*card.Card{m.newCard(msg.Post)}, m.cards)
	m.cursor = 0
	if m.editing >= 0 {
		m.editing++
	}
	m.viewport.GotoTop()

	if m.form.Mode() == compose.ModeImage {
		m.path.Reset()
	} else {
		m.textbox.Reset()
	}
	m.caption.Reset()

	m, cmd := m.info("Posted!")
	return m, tea.Batch(cmd, m.resolveAuthor(msg.Post))
}

func (m PostListModel) author(p model.Post) string {
	if name, ok := m.names[p.ID]; ok {
		return name
	}
	return "…"
}

// refresh redraws the cards into the viewport and keeps the selected one visible.
func (m *PostListModel) refresh() {
	switch {
	case m.feed.State() == feed.StateLoading && len(m.cards) == 0:
		m.viewport.SetContent("Loading posts...")
		return
	case m.feed.State() == feed.StateFailed:
		m.viewport.SetContent(fmt.Sprintf("%s\n\nctrl+r to retry", api.Message(m.feed.Err(), "could not load posts")))
		return
	case len(m.cards) == 0:
		m.viewport.SetContent("No posts yet")
		return
	}

	m.cursor = min(max(m.cursor, 0), len(m.cards)-1)
	views := make([]string, len(m.cards))
	top := 0
	for i, c := range m.cards {
		pm := InitialPost(c, m.author(c.Post()), m.deps.Renderer).Selected(i == m.cursor)
		if i == m.editing {
			pm = pm.Editing(m.editBox.View())
		}
		views[i] = pm.View()
		if i < m.cursor {
			top += lipgloss.Height(views[i])
		}
	}
	m.viewport.SetContent(strings.Join(views, ""))

	bottom := top + lipgloss.Height(views[m.cursor])
	if top < m.viewport.YOffset {
		m.viewport.SetYOffset(top)
	} else if bottom > m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(bottom - m.viewport.Height)
	}
}

func (m PostListModel) View() string {
	s := "Posts\n\n"

	s += m.viewport.View() + "\n\n"

	if id, ok := m.deps.Session.UserID(); ok {
		s += fmt.Sprintf("Post as user #%d (%s, tab to switch):\n", id, m.form.Mode())
		if m.form.Mode() == compose.ModeImage {
			s += m.path.View() + "\n"
		} else {
			s += m.textbox.View() + "\n"
		}
		s += m.caption.View() + "\n\n"
	}

	if m.msg != "" {
		s += fmt.Sprintf("Info: %s\n\n", m.msg)
	}

	if m.focus == focusList {
		s += "↑/↓ select, l like, e edit, i write, ctrl+s post, ctrl+r reload, ← back\n\n"
	} else {
		s += "ctrl+s post, esc back to the list\n\n"
	}

	return s
}
