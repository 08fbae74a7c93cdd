// Package feed holds the ordered post list shown on the feed page.
package feed

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/as283-ua/go-social-feed/client/logging"
	"github.com/as283-ua/go-social-feed/util/model"
	"go.uber.org/zap"
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateReadyEmpty
	// StateFailed leaves the list empty; Err holds the cause.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateReadyEmpty:
		return "ready-empty"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type API interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	CreatePost(ctx context.Context, p model.CreatePostPayload) (*model.Post, error)
}

type createdPost struct {
	post model.Post
	// load is the newest load started when the post was added.
	load uint64
}

type Feed struct {
	mu    sync.RWMutex
	api   API
	posts []model.Post
	state State
	err   error
	log   *zap.Logger

	loads   uint64
	loading bool
	created []createdPost
}

func New(api API, log *zap.Logger) *Feed {
	return &Feed{api: api, state: StateLoading, log: logging.OrDefault(log).Named("feed")}
}

// Load replaces the list with the server's posts. A result overtaken by a newer
// Load is dropped without error, and posts created while the request was in
// flight stay first.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	f.loads++
	seq := f.loads
	f.loading = true
	f.state = StateLoading
	f.err = nil
	f.mu.Unlock()

	posts, err := f.api.ListPosts(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.loads {
		f.log.Debug("dropping stale feed load", zap.Error(err))
		return nil
	}
	f.loading = false

	if err != nil {
		f.created = nil
		f.posts = nil
		f.state = StateFailed
		f.err = err
		f.log.Warn("feed load failed", zap.Error(err))
		return err
	}

	posts = f.keepCreatedLocked(seq, posts)
	f.posts = posts
	if len(posts) == 0 {
		f.state = StateReadyEmpty
	} else {
		f.state = StateReady
	}
	f.log.Debug("feed loaded", zap.Int("posts", len(posts)))
	return nil
}

// Create publishes a post and puts the server copy first; the rest of the list
// is kept as is.
func (f *Feed) Create(ctx context.Context, p model.CreatePostPayload) (model.Post, error) {
	created, err := f.api.CreatePost(ctx, p)
	if err != nil {
		return model.Post{}, err
	}

	f.mu.Lock()
	f.posts = slices.Concat([]model.Post{*created}, f.posts)
	if f.loading {
		f.created = append(f.created, createdPost{post: *created, load: f.loads})
	}
	f.state = StateReady
	f.err = nil
	f.mu.Unlock()

	f.log.Info("post created", zap.Int64("post_id", created.ID))
	return *created, nil
}

// keepCreatedLocked puts back posts created while load seq was in flight that
// the server snapshot does not have yet.
func (f *Feed) keepCreatedLocked(seq uint64, posts []model.Post) []model.Post {
	var missing []model.Post
	for _, c := range f.created {
		if c.load < seq {
			continue
		}
		if !slices.ContainsFunc(posts, func(p model.Post) bool { return p.ID == c.post.ID }) {
			missing = append(missing, c.post)
		}
	}
	f.created = nil
	if len(missing) == 0 {
		return posts
	}
	slices.Reverse(missing)
	return slices.Concat(missing, posts)
}

// Replace swaps the post with the same id, reporting whether it was found.
func (f *Feed) Replace(p model.Post) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.IndexFunc(f.posts, func(q model.Post) bool { return q.ID == p.ID })
	if i < 0 {
		return false
	}
	f.posts[i] = p
	return true
}

// Posts returns a copy of the list, newest first.
func (f *Feed) Posts() []model.Post {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.posts)
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.posts)
}

func (f *Feed) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *Feed) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}
