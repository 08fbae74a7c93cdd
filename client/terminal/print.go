// Package terminal renders posts for a terminal, both for the TUI cards and
// for the plain output of the CLI subcommands.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const minWidth = 20

var (
	authorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8")).Bold(true)
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	likedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f55"))
)

// Width returns the width of the terminal on f, or fallback when f is nil or
// not a terminal.
func Width(f *os.File, fallback int) int {
	if f == nil {
		return fallback
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w < minWidth {
		return fallback
	}
	return w
}

// Renderer formats post bodies through glamour. A nil glamour renderer falls
// back to plain word wrapping.
type Renderer struct {
	width int
	style string
	md    *glamour.TermRenderer
}

// NewRenderer builds a renderer for style (auto, dark, light, notty, ascii).
func NewRenderer(width int, style string) *Renderer {
	if width < minWidth {
		width = minWidth
	}

	opt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		opt = glamour.WithStylePath(style)
	}
	md, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(width))
	if err != nil {
		md = nil
	}
	return &Renderer{width: width, style: style, md: md}
}

func (r *Renderer) Width() int {
	return r.width
}

// Resize returns a renderer wrapping at width, or r itself when nothing changes.
func (r *Renderer) Resize(width int) *Renderer {
	if width == r.width {
		return r
	}
	return NewRenderer(width, r.style)
}

// Markdown renders s, falling back to wrapped plain text on error.
func (r *Renderer) Markdown(s string) string {
	if r.md != nil {
		if out, err := r.md.Render(s); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return Wrap(s, r.width)
}

// Wrap breaks s into lines of at most width characters at word boundaries.
// Words longer than width get a line of their own.
func Wrap(s string, width int) string {
	var b strings.Builder
	for i, para := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		curLen := 0
		for _, word := range strings.Fields(para) {
			wordLen := len([]rune(word))
			switch {
			case curLen == 0:
			case curLen+1+wordLen > width:
				b.WriteByte('\n')
				curLen = 0
			default:
				b.WriteByte(' ')
				curLen++
			}
			b.WriteString(word)
			curLen += wordLen
		}
	}
	return b.String()
}

// Body is the content of a post card without header or footer.
func (r *Renderer) Body(p model.Post) string {
	if p.Type == model.PostImage {
		s := "[image] " + p.Source
		if p.Caption != "" {
			s += "\n" + Wrap(p.Caption, r.width)
		}
		return s
	}
	body := r.Markdown(p.TextContent)
	if p.Caption != "" {
		body += "\n" + metaStyle.Render(Wrap(p.Caption, r.width))
	}
	return body
}

func Header(p model.Post, author string) string {
	s := "@" + authorStyle.Render(author)
	if !p.CreatedAt.IsZero() {
		s += " " + metaStyle.Render(p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return s
}

func Footer(liked bool, count, comments int) string {
	heart := "♡"
	if liked {
		heart = likedStyle.Render("♥")
	}
	return fmt.Sprintf("%s %d  💬 %d", heart, count, comments)
}

// PrintPosts writes posts newest first, one card each. name resolves the
// author label of a post.
func PrintPosts(w io.Writer, r *Renderer, posts []model.Post, name func(model.Post) string) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "No posts yet")
		return err
	}

	for _, p := range posts {
		_, err := fmt.Fprintf(w, "#%d %s\n%s\n%s\n\n",
			p.ID, Header(p, name(p)), r.Body(p), Footer(p.Liked(), p.LikeCount, p.CommentCount))
		if err != nil {
			return err
		}
	}
	return nil
}
