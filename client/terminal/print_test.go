package terminal

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.Equal(t, "one two\nthree", Wrap("one two three", 8))
	assert.Equal(t, "a\nverylongword\nb", Wrap("a verylongword b", 5))
	assert.Equal(t, "x\ny", Wrap("x\ny", 10))
	assert.Equal(t, "", Wrap("   ", 10))
}

func TestWidth_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, 72, Width(f, 72))
}

func TestPrintPosts(t *testing.T) {
	r := NewRenderer(40, "notty")
	liked := true
	posts := []model.Post{
		{ID: 2, Type: model.PostText, TextContent: "hello world", LikeCount: 3, LikedByMe: &liked},
		{ID: 1, Type: model.PostImage, Source: "/uploads/a.png", Caption: "sunset"},
	}

	var buf bytes.Buffer
	err := PrintPosts(&buf, r, posts, func(p model.Post) string {
		if p.ID == 2 {
			return "ana"
		}
		return "Unknown author"
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "hello world")
	assert.Contains(t, out, "[image] /uploads/a.png")
	assert.Contains(t, out, "sunset")
	assert.Less(t, strings.Index(out, "#2"), strings.Index(out, "#1"))
}

func TestPrintPosts_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintPosts(&buf, NewRenderer(40, "notty"), nil, nil))
	assert.Equal(t, "No posts yet\n", buf.String())
}

func TestRenderer_Resize(t *testing.T) {
	r := NewRenderer(40, "notty")
	assert.Same(t, r, r.Resize(40))

	wide := r.Resize(100)
	assert.Equal(t, 100, wide.Width())
	assert.Equal(t, 40, r.Width())
}

func TestWidth_Nil(t *testing.T) {
	assert.Equal(t, 80, Width(nil, 80))
}
