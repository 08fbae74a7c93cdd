package mvc

import (
	"context"
	"testing"

	"github.com/as283-ua/go-social-feed/apitest"
	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/authors"
	"github.com/as283-ua/go-social-feed/client/config"
	"github.com/as283-ua/go-social-feed/client/message"
	"github.com/as283-ua/go-social-feed/client/session"
	"github.com/as283-ua/go-social-feed/client/terminal"
	"github.com/as283-ua/go-social-feed/util/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	deps  *Deps
	srv   *apitest.Server
	store *session.MemoryStore
	user  model.User
}

func setup(t *testing.T) fixture {
	t.Helper()

	srv := apitest.New(t)
	u, err := srv.DB.AddUser("ana@example.com", "secret1", model.User{Alias: "ana", Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	store := session.NewMemoryStore()
	sess := session.New(store, nil)
	client := api.New(srv.URL, sess)

	return fixture{
		deps: &Deps{
			Config:   config.DefaultConfig(),
			API:      client,
			Session:  sess,
			Authors:  authors.NewResolver(client, nil, nil),
			Renderer: terminal.NewRenderer(60, "notty"),
		},
		srv:   srv,
		store: store,
		user:  u,
	}
}

func (f fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.deps.Session.Start(context.Background(), f.user.ID, f.srv.TokenFor(t, f.user.ID)))
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and any batch it expands to, returning the messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestHome_OptionsFollowSession(t *testing.T) {
	f := setup(t)

	home := InitialHomeModel(f.deps, "")
	assert.Equal(t, []string{optRegister, optLogin}, home.options)

	f.login(t)
	home = InitialHomeModel(f.deps, "")
	assert.Equal(t, []string{optPosts, optProfile, optLogout}, home.options)
}

func TestHome_Logout(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.deps.Authors.Cache().Put(99, "someone")

	home := InitialHomeModel(f.deps, "")
	next, _ := home.open(optLogout)

	require.IsType(t, HomePage{}, next)
	assert.False(t, f.deps.Session.Authenticated())
	assert.Zero(t, f.deps.Authors.Cache().Len())
	assert.Contains(t, next.View(), "Info: logged out")

	_, ok, err := f.store.Get(context.Background(), session.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_Success(t *testing.T) {
	f := setup(t)
	page := InitialLoginModel(f.deps, "", "")

	msg := page.login("ana@example.com", "secret1")()
	next, _ := page.Update(msg)

	require.IsType(t, HomePage{}, next)
	id, ok := f.deps.Session.UserID()
	assert.True(t, ok)
	assert.Equal(t, f.user.ID, id)
}

func TestLogin_UnknownUser(t *testing.T) {
	f := setup(t)
	page := InitialLoginModel(f.deps, "", "")

	next, _ := page.Update(page.login("nobody@example.com", "secret1")())

	require.IsType(t, LoginPage{}, next)
	assert.Contains(t, next.View(), "this user does not exist, please register")
	assert.False(t, f.deps.Session.Authenticated())
}

func TestLogin_EmptyFieldsNeverSent(t *testing.T) {
	f := setup(t)
	page := InitialLoginModel(f.deps, "", "")

	next, _ := page.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, next.View(), "email and password are required")
	assert.Empty(t, f.srv.DB.Requests("POST /auth/login"))
}

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name    string
		req     model.RegisterRequest
		confirm string
		want    error
	}{
		{"ok", model.RegisterRequest{Email: "a@b.c", Password: "secret"}, "secret", nil},
		{"no email", model.RegisterRequest{Email: "  ", Password: "secret"}, "secret", errEmailRequired},
		{"short password", model.RegisterRequest{Email: "a@b.c", Password: "12345"}, "123456", errPasswordShort},
		{"short confirm", model.RegisterRequest{Email: "a@b.c", Password: "123456"}, "12345", errConfirmShort},
		{"mismatch", model.RegisterRequest{Email: "a@b.c", Password: "123456"}, "654321", errPasswordsDiffer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validateRegister(tt.req, tt.confirm))
		})
	}
}

func TestRegister_WithoutTokenGoesToLogin(t *testing.T) {
	f := setup(t)
	page := InitialRegisterModel(f.deps)

	req := model.RegisterRequest{Email: "bob@example.com", Alias: "bob", Password: "secret1"}
	next, _ := page.Update(page.register(req)())

	login, ok := next.(LoginPage)
	require.True(t, ok, "got %T", next)
	assert.Equal(t, "bob@example.com", login.email.Value())
	assert.Contains(t, login.View(), "registered, now log in")
	assert.False(t, f.deps.Session.Authenticated())
}

func TestRegister_WithTokenStartsSession(t *testing.T) {
	f := setup(t)
	f.srv.DB.IssueTokenOnRegister = true
	page := InitialRegisterModel(f.deps)

	req := model.RegisterRequest{Email: "bob@example.com", Alias: "bob", Password: "secret1"}
	next, _ := page.Update(page.register(req)())

	require.IsType(t, HomePage{}, next)
	assert.True(t, f.deps.Session.Authenticated())
}

func loadedFeed(t *testing.T, f fixture) PostListModel {
	t.Helper()
	page := InitialPostListModel(f.deps)
	t.Cleanup(page.Leave)

	next, cmd := page.Update(page.Init()())
	page = next.(PostListModel)
	for _, msg := range drain(cmd) {
		next, _ = page.Update(msg)
		page = next.(PostListModel)
	}
	return page
}

func TestFeed_LoadsAndResolvesAuthors(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.srv.DB.AddPost(model.Post{AuthorID: f.user.ID, Type: model.PostText, TextContent: "first"})
	f.srv.DB.AddPost(model.Post{AuthorID: 404, Type: model.PostText, TextContent: "second"})

	page := loadedFeed(t, f)

	require.Len(t, page.cards, 2)
	assert.Equal(t, "second", page.cards[0].Post().TextContent)
	assert.Equal(t, authors.FallbackName, page.names[page.cards[0].Post().ID])
	assert.Equal(t, "ana", page.names[page.cards[1].Post().ID])

	assert.Contains(t, page.View(), "second")

	older := page.cards[1]
	view := InitialPost(older, page.author(older.Post()), f.deps.Renderer).View()
	assert.Contains(t, view, "first")
	assert.Contains(t, view, "@ana")
}

func TestFeed_LoadFailureShown(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.srv.DB.FailNext("GET /post/all", apitest.Failure{Status: 500, Message: "database down"})

	page := loadedFeed(t, f)

	assert.Empty(t, page.cards)
	assert.Contains(t, page.View(), "database down")
}

func TestFeed_LikeOptimisticThenConfirmed(t *testing.T) {
	f := setup(t)
	f.login(t)
	post := f.srv.DB.AddPost(model.Post{AuthorID: f.user.ID, Type: model.PostText, TextContent: "hi"})

	page := loadedFeed(t, f)

	page, cmd := page.like()
	require.NotNil(t, cmd)
	assert.True(t, page.cards[0].Like().Liked)
	assert.Equal(t, 1, page.cards[0].Like().Count)

	// a second press while in flight is dropped
	_, again := page.like()
	assert.Nil(t, again)

	next, _ := page.Update(cmd())
	page = next.(PostListModel)
	assert.Equal(t, 1, f.srv.DB.LikeCount(post.ID))
	assert.Equal(t, 1, page.cards[0].Like().Count)
	assert.Empty(t, page.msg)
}

func TestFeed_LikeFailureRollsBack(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.srv.DB.AddPost(model.Post{AuthorID: f.user.ID, Type: model.PostText, TextContent: "hi"})
	page := loadedFeed(t, f)
	before := page.cards[0].Like()

	f.srv.DB.FailNext("POST /post-likes", apitest.Failure{Status: 500, Message: "boom"})
	page, cmd := page.like()
	next, _ := page.Update(cmd())
	page = next.(PostListModel)

	assert.Equal(t, before, page.cards[0].Like())
	assert.Contains(t, page.msg, "boom")
}

func TestFeed_PublishEmptyNeverSent(t *testing.T) {
	f := setup(t)
	f.login(t)
	page := loadedFeed(t, f)

	page, _ = page.publish()
	assert.Equal(t, "write something before publishing", page.msg)
	assert.Empty(t, f.srv.DB.Requests("POST /post"))
}

func TestFeed_PublishPrepends(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.srv.DB.AddPost(model.Post{AuthorID: f.user.ID, Type: model.PostText, TextContent: "old"})
	page := loadedFeed(t, f)

	page.textbox.SetValue("fresh post")
	page, cmd := page.publish()
	require.NotNil(t, cmd)

	next, _ := page.Update(cmd())
	page = next.(PostListModel)

	require.Len(t, page.cards, 2)
	assert.Equal(t, "fresh post", page.cards[0].Post().TextContent)
	assert.Equal(t, "old", page.cards[1].Post().TextContent)
	assert.Empty(t, page.textbox.Value())
	assert.Equal(t, "Posted!", page.msg)
	assert.Len(t, f.srv.DB.Requests("GET /post/all"), 1)
}

func TestFeed_EditOwnPost(t *testing.T) {
	f := setup(t)
	f.login(t)
	f.srv.DB.AddPost(model.Post{AuthorID: 77, Type: model.PostText, TextContent: "theirs"})
	f.srv.DB.AddPost(model.Post{AuthorID: f.user.ID, Type: model.PostText, TextContent: "mine"})
	page := loadedFeed(t, f)

	page, _ = page.edit()
	assert.Equal(t, focusEdit, page.focus)
	assert.Equal(t, "mine", page.editBox.Value())

	page.editBox.SetValue("mine, edited")
	page, cmd := page.saveEdit()
	assert.Equal(t, focusList, page.focus)

	next, _ := page.Update(cmd())
	page = next.(PostListModel)
	// no update route configured: applied locally
	assert.Equal(t, "mine, edited", page.cards[0].Post().TextContent)

	page.cursor = 1
	page, _ = page.edit()
	assert.Equal(t, focusList, page.focus)
	assert.Equal(t, "only the author can edit this post", page.msg)
}

func TestFeed_LeaveDropsLateResponses(t *testing.T) {
	f := setup(t)
	f.login(t)
	page := InitialPostListModel(f.deps)

	load := page.load()
	next, _ := page.Update(tea.KeyMsg{Type: tea.KeyLeft})
	require.IsType(t, HomePage{}, next)

	assert.Nil(t, load())
}

func TestProfile(t *testing.T) {
	f := setup(t)
	f.login(t)
	page := InitialUserPageModel(f.deps)

	next, _ := page.Update(page.Init()())
	view := next.View()
	assert.Contains(t, view, "ana@example.com")
	assert.Contains(t, view, "Ana")

	next, _ = next.Update(keys("x"))
	require.IsType(t, HomePage{}, next)
	assert.False(t, f.deps.Session.Authenticated())
}

func TestApp_SessionChangedElsewhere(t *testing.T) {
	f := setup(t)
	f.login(t)
	app := NewApp(f.deps)

	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = next.(App)
	require.IsType(t, PostListModel{}, app.Page())

	require.NoError(t, f.store.Delete(context.Background(), session.KeyUserID, session.KeyAccessToken))
	next, _ = app.Update(message.SessionChangedMsg{})
	app = next.(App)

	home, ok := app.Page().(HomePage)
	require.True(t, ok, "got %T", app.Page())
	assert.Equal(t, []string{optRegister, optLogin}, home.options)
	assert.Contains(t, home.View(), "session changed in another window")
}
