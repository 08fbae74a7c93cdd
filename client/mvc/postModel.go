package mvc

import (
	"github.com/as283-ua/go-social-feed/client/card"
	"github.com/as283-ua/go-social-feed/client/terminal"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444")).Padding(0, 1)
	selectedStyle = cardStyle.BorderForeground(lipgloss.Color("#45f"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
)

// PostModel renders one card of the feed.
type PostModel struct {
	card     *card.Card
	author   string
	selected bool
	editor   string
	renderer *terminal.Renderer
}

func InitialPost(c *card.Card, author string, r *terminal.Renderer) PostModel {
	return PostModel{card: c, author: author, renderer: r}
}

func (m PostModel) Selected(selected bool) PostModel {
	m.selected = selected
	return m
}

// Editing shows editor in place of the post body.
func (m PostModel) Editing(editor string) PostModel {
	m.editor = editor
	return m
}

func (m PostModel) Init() tea.Cmd {
	return nil
}

func (m PostModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m PostModel) View() string {
	post := m.card.Post()
	like := m.card.Like()

	s := terminal.Header(post, m.author) + "\n"
	if m.editor != "" {
		s += m.editor + "\n" + hintStyle.Render("ctrl+s to save, esc to cancel")
	} else {
		s += m.renderer.Body(post)
	}
	s += "\n" + terminal.Footer(like.Liked, like.Count, post.CommentCount)
	if m.card.LikeInFlight() {
		s += hintStyle.Render(" …")
	}
	if m.selected && m.editor == "" && m.card.CanEdit() {
		s += hintStyle.Render("  (e to edit)")
	}

	style := cardStyle
	if m.selected {
		style = selectedStyle
	}
	return style.Width(m.renderer.Width()).Render(s) + "\n"
}
