package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/as283-ua/go-social-feed/apitest"
	"github.com/as283-ua/go-social-feed/client/config"
	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	srv     *apitest.Server
	cfgPath string
	user    model.User
}

func setup(t *testing.T, edit func(*config.Config)) env {
	t.Helper()
	for _, k := range []string{"FEED_API_URL", "FEED_SESSION_PATH", "FEED_SESSION_DRIVER", "FEED_LOG_LEVEL"} {
		t.Setenv(k, "")
	}

	srv := apitest.New(t)
	u, err := srv.DB.AddUser("ana@example.com", "secret1", model.User{Alias: "ana", Email: "ana@example.com"})
	require.NoError(t, err)

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.Session.Driver = "sqlite"
	cfg.Session.Path = filepath.Join(dir, "session.db")
	cfg.Logging.File = filepath.Join(dir, "feed.log")
	cfg.UI.Style = "notty"
	if edit != nil {
		edit(cfg)
	}

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, cfg.Save(path))

	return env{srv: srv, cfgPath: path, user: u}
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.cfgPath}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e env) login(t *testing.T) {
	t.Helper()
	out, err := e.run(t, "login", "--email", "ana@example.com", "--password", "secret1")
	require.NoError(t, err, out)
}

func TestLoginWhoamiLogout(t *testing.T) {
	e := setup(t, nil)

	out, err := e.run(t, "login", "--email", "ana@example.com", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as user #")

	out, err = e.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ana <ana@example.com>")
	assert.Contains(t, out, "session expires:")

	out, err = e.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = e.run(t, "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLogin_UnknownUser(t *testing.T) {
	e := setup(t, nil)

	_, err := e.run(t, "login", "--email", "nobody@example.com", "--password", "secret1")
	assert.EqualError(t, err, "this user does not exist, please register")
}

func TestRegister(t *testing.T) {
	e := setup(t, nil)

	out, err := e.run(t, "register", "--email", "bob@example.com", "--alias", "bob", "--password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered, now log in")

	_, err = e.run(t, "register", "--email", "carl@example.com", "--password", "123")
	assert.EqualError(t, err, "password must be at least 6 characters")
}

func TestPostAndList(t *testing.T) {
	e := setup(t, nil)

	_, err := e.run(t, "post", "--text", "hello")
	assert.ErrorIs(t, err, errNotLoggedIn)

	e.login(t)

	out, err := e.run(t, "post", "--text", "hello from the cli")
	require.NoError(t, err)
	assert.Contains(t, out, "Published post #1")

	_, err = e.run(t, "post", "--text", "   ")
	assert.EqualError(t, err, "write something before publishing")

	out, err = e.run(t, "posts")
	require.NoError(t, err)
	assert.Contains(t, out, "hello from the cli")
	assert.Contains(t, out, "ana")
}

func TestPostImage(t *testing.T) {
	e := setup(t, nil)
	e.login(t)

	img := filepath.Join(t.TempDir(), "dot.gif")
	require.NoError(t, os.WriteFile(img, []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"), 0o600))

	out, err := e.run(t, "post", "--image", img, "--caption", "tiny")
	require.NoError(t, err)
	assert.Contains(t, out, "Published post #1")

	posts := e.srv.DB.Posts(0)
	require.Len(t, posts, 1)
	assert.Equal(t, model.PostImage, posts[0].Type)
	assert.Equal(t, "tiny", posts[0].Caption)
	assert.Empty(t, posts[0].TextContent)
}

func TestLikeToggles(t *testing.T) {
	e := setup(t, nil)
	e.login(t)
	post := e.srv.DB.AddPost(model.Post{AuthorID: 42, Type: model.PostText, TextContent: "like me"})

	out, err := e.run(t, "like", model.FormatID(post.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Liked post #1 (1 likes)")

	out, err = e.run(t, "like", model.FormatID(post.ID))
	require.NoError(t, err)
	assert.Contains(t, out, "Unliked post #1 (0 likes)")

	_, err = e.run(t, "like", "abc")
	assert.EqualError(t, err, `invalid post id "abc"`)

	_, err = e.run(t, "like", "99")
	assert.EqualError(t, err, "post 99 not found")
}

func TestEdit(t *testing.T) {
	e := setup(t, func(cfg *config.Config) {
		cfg.API.UpdatePost = config.UpdateRoute{Method: "PATCH", Path: "/post/{id}"}
	})
	e.login(t)
	theirs := e.srv.DB.AddPost(model.Post{AuthorID: 42, Type: model.PostText, TextContent: "theirs"})
	mine := e.srv.DB.AddPost(model.Post{AuthorID: e.user.ID, Type: model.PostText, TextContent: "mine"})

	_, err := e.run(t, "edit", model.FormatID(theirs.ID), "nope")
	assert.EqualError(t, err, "only the author can edit this post")

	out, err := e.run(t, "edit", model.FormatID(mine.ID), "mine,", "edited")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated post #2")

	posts := e.srv.DB.Posts(0)
	assert.Equal(t, "mine, edited", posts[0].TextContent)
}

func TestEdit_WithoutRouteIsLocal(t *testing.T) {
	e := setup(t, nil)
	e.login(t)
	mine := e.srv.DB.AddPost(model.Post{AuthorID: e.user.ID, Type: model.PostText, TextContent: "mine"})

	out, err := e.run(t, "edit", model.FormatID(mine.ID), "changed")
	require.NoError(t, err)
	assert.Contains(t, out, "edited locally")
	assert.Equal(t, "mine", e.srv.DB.Posts(0)[0].TextContent)
}

func TestInvalidConfig(t *testing.T) {
	e := setup(t, func(cfg *config.Config) {
		cfg.Session.Driver = "postgres"
	})

	_, err := e.run(t, "whoami")
	assert.ErrorContains(t, err, `unknown session.driver "postgres"`)
}
