package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) ListPosts(ctx context.Context) ([]model.Post, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]model.Post)
	return posts, args.Error(1)
}

func (m *mockAPI) CreatePost(ctx context.Context, p model.CreatePostPayload) (*model.Post, error) {
	args := m.Called(ctx, p)
	post, _ := args.Get(0).(*model.Post)
	return post, args.Error(1)
}

func ids(posts []model.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestFeed_Load(t *testing.T) {
	api := &mockAPI{}
	api.On("ListPosts", mock.Anything).Return([]model.Post{{ID: 1}, {ID: 2}}, nil).Once()

	f := New(api, nil)
	assert.Equal(t, StateLoading, f.State())

	require.NoError(t, f.Load(context.Background()))
	assert.Equal(t, StateReady, f.State())
	assert.Equal(t, 2, f.Len())
}

func TestFeed_LoadEmpty(t *testing.T) {
	api := &mockAPI{}
	api.On("ListPosts", mock.Anything).Return([]model.Post{}, nil).Once()

	f := New(api, nil)
	require.NoError(t, f.Load(context.Background()))
	assert.Equal(t, StateReadyEmpty, f.State())
	assert.Equal(t, "ready-empty", f.State().String())
}

func TestFeed_LoadFailureIsSurfaced(t *testing.T) {
	api := &mockAPI{}
	api.On("ListPosts", mock.Anything).Return([]model.Post{{ID: 1}}, nil).Once()
	api.On("ListPosts", mock.Anything).Return(nil, errors.New("down")).Once()

	f := New(api, nil)
	require.NoError(t, f.Load(context.Background()))

	err := f.Load(context.Background())
	assert.EqualError(t, err, "down")
	assert.Equal(t, StateFailed, f.State())
	assert.EqualError(t, f.Err(), "down")
	assert.Zero(t, f.Len())
}

func TestFeed_CreatePrepends(t *testing.T) {
	api := &mockAPI{}
	api.On("ListPosts", mock.Anything).Return([]model.Post{{ID: 1}, {ID: 2}}, nil).Once()
	api.On("CreatePost", mock.Anything, mock.Anything).Return(&model.Post{ID: 3}, nil).Once()
	api.On("CreatePost", mock.Anything, mock.Anything).Return(&model.Post{ID: 4}, nil).Once()

	f := New(api, nil)
	require.NoError(t, f.Load(context.Background()))

	created, err := f.Create(context.Background(), model.CreatePostPayload{Type: model.PostText, TextContent: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), created.ID)

	if diff := cmp.Diff([]int64{3, 1, 2}, ids(f.Posts())); diff != "" {
		t.Errorf("order after one create (-want +got):\n%s", diff)
	}

	_, err = f.Create(context.Background(), model.CreatePostPayload{Type: model.PostText, TextContent: "y"})
	require.NoError(t, err)

	if diff := cmp.Diff([]int64{4, 3, 1, 2}, ids(f.Posts())); diff != "" {
		t.Errorf("order after two creates (-want +got):\n%s", diff)
	}
	api.AssertNumberOfCalls(t, "ListPosts", 1)
}

// blockingList makes the next ListPosts wait for release after closing started.
func blockingList(api *mockAPI, posts []model.Post) (started, release chan struct{}) {
	started, release = make(chan struct{}), make(chan struct{})
	api.On("ListPosts", mock.Anything).Return(posts, nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()
	return started, release
}

func TestFeed_CreateDuringLoadIsKept(t *testing.T) {
	api := &mockAPI{}
	started, release := blockingList(api, []model.Post{{ID: 1}, {ID: 2}})
	api.On("CreatePost", mock.Anything, mock.Anything).Return(&model.Post{ID: 3}, nil).Once()
	api.On("CreatePost", mock.Anything, mock.Anything).Return(&model.Post{ID: 4}, nil).Once()

	f := New(api, nil)
	loaded := make(chan error, 1)
	go func() { loaded <- f.Load(context.Background()) }()
	<-started

	ctx := context.Background()
	_, err := f.Create(ctx, model.CreatePostPayload{Type: model.PostText, TextContent: "x"})
	require.NoError(t, err)
	_, err = f.Create(ctx, model.CreatePostPayload{Type: model.PostText, TextContent: "y"})
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-loaded)

	if diff := cmp.Diff([]int64{4, 3, 1, 2}, ids(f.Posts())); diff != "" {
		t.Errorf("order after load (-want +got):\n%s", diff)
	}
	assert.Equal(t, StateReady, f.State())
}

func TestFeed_CreateBeforeLoadNotDuplicated(t *testing.T) {
	api := &mockAPI{}
	api.On("ListPosts", mock.Anything).Return([]model.Post{{ID: 1}}, nil).Once()
	api.On("CreatePost", mock.Anything, mock.Anything).Return(&model.Post{ID: 2}, nil).Once()
	api.On("ListPosts", mock.Anything).Return([]model.Post{{ID: 2}, {ID: 1}}, nil).Once()

	f := New(api, nil)
	ctx := context.Background()
	require.NoError(t, f.Load(ctx))
	_, err := f.Create(ctx, model.CreatePostPayload{})
	require.NoError(t, err)
	require.NoError(t, f.Load(ctx))

	assert.Equal(t, []int64{2, 1}, ids(f.Posts()))
}

func TestFeed_StaleLoadDropped(t *testing.T) {
	api := &mockAPI{}
	started, release := blockingList(api, []model.Post{{ID: 1}})
	api.On("ListPosts", mock.Anything).Return([]model.Post{{ID: 2}, {ID: 1}}, nil).Once()

	f := New(api, nil)
	loaded := make(chan error, 1)
	go func() { loaded <- f.Load(context.Background()) }()
	<-started

	require.NoError(t, f.Load(context.Background()))
	close(release)
	require.NoError(t, <-loaded)

	assert.Equal(t, []int64{2, 1}, ids(f.Posts()))
	assert.Equal(t, StateReady, f.State())
}

func TestFeed_CreateOnEmptyBecomesReady(t *testing.T) {
	api := &mockAPI{}
	api.On("ListPosts", mock.Anything).Return([]model.Post{}, nil).Once()
	api.On("CreatePost", mock.Anything, mock.Anything).Return(&model.Post{ID: 1}, nil).Once()

	f := New(api, nil)
	require.NoError(t, f.Load(context.Background()))
	_, err := f.Create(context.Background(), model.CreatePostPayload{})
	require.NoError(t, err)

	assert.Equal(t, StateReady, f.State())
}

func TestFeed_CreateFailureKeepsList(t *testing.T) {
	api := &mockAPI{}
	api.On("ListPosts", mock.Anything).Return([]model.Post{{ID: 1}}, nil).Once()
	api.On("CreatePost", mock.Anything, mock.Anything).Return(nil, errors.New("rejected")).Once()

	f := New(api, nil)
	require.NoError(t, f.Load(context.Background()))

	_, err := f.Create(context.Background(), model.CreatePostPayload{})
	assert.EqualError(t, err, "rejected")
	assert.Equal(t, []int64{1}, ids(f.Posts()))
}

func TestFeed_Replace(t *testing.T) {
	api := &mockAPI{}
	api.On("ListPosts", mock.Anything).Return([]model.Post{{ID: 1, TextContent: "a"}, {ID: 2}}, nil).Once()

	f := New(api, nil)
	require.NoError(t, f.Load(context.Background()))

	assert.True(t, f.Replace(model.Post{ID: 1, TextContent: "b"}))
	assert.False(t, f.Replace(model.Post{ID: 9}))
	assert.Equal(t, "b", f.Posts()[0].TextContent)

	// Posts returns a copy
	f.Posts()[0].TextContent = "mutated"
	assert.Equal(t, "b", f.Posts()[0].TextContent)
}
