// Package card holds the per-post state behind a feed card: the like toggle
// and the author-only inline edit.
package card

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/logging"
	"github.com/as283-ua/go-social-feed/client/optimistic"
	"github.com/as283-ua/go-social-feed/util/model"
	"go.uber.org/zap"
)

var (
	ErrNoPost       = errors.New("post has no id")
	ErrNoUser       = errors.New("not logged in")
	ErrLikeInFlight = errors.New("like already in flight")
	ErrNotAuthor    = errors.New("only the author can edit this post")
	ErrNotEditing   = errors.New("card is not in edit mode")
)

type API interface {
	ToggleLike(ctx context.Context, postID, userID int64) (*model.LikeResult, error)
	CountLikes(ctx context.Context, postID int64) (int, error)
	UpdatePost(ctx context.Context, p model.UpdatePostPayload) (*model.Post, error)
}

type Identity interface {
	UserID() (int64, bool)
	IsCurrentUser(authorID int64) bool
}

// LikeState is what the card shows next to the heart.
type LikeState struct {
	Liked bool
	Count int
}

// Toggle flips Liked and moves Count by one, never below zero.
func (s LikeState) Toggle() LikeState {
	s.Liked = !s.Liked
	if s.Liked {
		s.Count++
	} else {
		s.Count--
	}
	if s.Count < 0 {
		s.Count = 0
	}
	return s
}

// Pending is a like toggle that has been applied locally but not confirmed.
type Pending struct {
	postID   int64
	userID   int64
	mutation *optimistic.Mutation[LikeState]
}

func (p *Pending) PostID() int64 {
	return p.postID
}

type Card struct {
	mu      sync.Mutex
	api     API
	ident   Identity
	guard   optimistic.Guard
	post    model.Post
	like    LikeState
	editing bool
	draft   string
	log     *zap.Logger
	diag    *zap.Logger
}

func New(post model.Post, a API, ident Identity, log *zap.Logger) *Card {
	log = logging.OrDefault(log)
	return &Card{
		api:   a,
		ident: ident,
		post:  post,
		like:  LikeState{Liked: post.Liked(), Count: max(post.LikeCount, 0)},
		log:   log.Named("card").With(zap.Int64("post_id", post.ID)),
		diag:  logging.Diagnostics(log).With(zap.Int64("post_id", post.ID)),
	}
}

func (c *Card) Post() model.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.post
}

func (c *Card) Like() LikeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.like
}

func (c *Card) LikeInFlight() bool {
	return c.guard.Busy()
}

// BeginLike applies the optimistic toggle. The returned Pending must be passed
// to FinishLike, which releases the in-flight guard.
func (c *Card) BeginLike() (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.post.ID == 0 {
		return nil, ErrNoPost
	}
	userID, ok := c.ident.UserID()
	if !ok {
		return nil, ErrNoUser
	}
	if !c.guard.TryAcquire() {
		return nil, ErrLikeInFlight
	}

	m := optimistic.Apply(c.like, LikeState.Toggle)
	c.like = m.State()
	return &Pending{postID: c.post.ID, userID: userID, mutation: m}, nil
}

// FinishLike sends the toggle. On success the liked flag follows the server
// and the count is fetched again; on failure the state before BeginLike is
// restored.
func (c *Card) FinishLike(ctx context.Context, p *Pending) (LikeState, error) {
	defer c.guard.Release()

	res, err := c.api.ToggleLike(ctx, p.postID, p.userID)
	if err != nil {
		c.mu.Lock()
		c.like = p.mutation.Rollback()
		state := c.like
		c.mu.Unlock()

		c.diag.Warn("like toggle failed, rolled back",
			zap.Bool("liked", state.Liked), zap.Int("count", state.Count), zap.Error(err))
		return state, err
	}

	reconciled := p.mutation.Commit(func(s LikeState) LikeState {
		s.Liked = res.Liked
		return s
	})

	count, cerr := c.api.CountLikes(ctx, p.postID)
	if cerr != nil {
		// the toggle itself went through; keep the predicted count
		c.diag.Warn("like count refresh failed", zap.Error(cerr))
	} else {
		reconciled.Count = max(count, 0)
	}

	c.mu.Lock()
	c.like = reconciled
	c.post.LikeCount = reconciled.Count
	liked := reconciled.Liked
	c.post.LikedByMe = &liked
	c.mu.Unlock()

	c.log.Debug("like toggled", zap.Bool("liked", reconciled.Liked), zap.Int("count", reconciled.Count))
	return reconciled, nil
}

// ToggleLike runs BeginLike and FinishLike back to back.
func (c *Card) ToggleLike(ctx context.Context) (LikeState, error) {
	p, err := c.BeginLike()
	if err != nil {
		return c.Like(), err
	}
	return c.FinishLike(ctx, p)
}

func (c *Card) CanEdit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canEditLocked()
}

func (c *Card) canEditLocked() bool {
	return c.post.AuthorID != 0 && c.ident.IsCurrentUser(c.post.AuthorID)
}

func (c *Card) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editing
}

func (c *Card) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// BeginEdit enters edit mode with the current text as draft. Image posts edit
// their caption.
func (c *Card) BeginEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.canEditLocked() {
		return ErrNotAuthor
	}
	c.editing = true
	c.draft = editableText(c.post)
	return nil
}

func (c *Card) SetDraft(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing {
		c.draft = s
	}
}

func (c *Card) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = false
	c.draft = ""
}

// SaveEdit sends the edited post and leaves edit mode whatever the outcome.
// Without an update route the edit only applies locally.
func (c *Card) SaveEdit(ctx context.Context) (model.Post, error) {
	c.mu.Lock()
	if !c.editing {
		post := c.post
		c.mu.Unlock()
		return post, ErrNotEditing
	}
	edited := withEditableText(c.post, strings.TrimSpace(c.draft))
	c.editing = false
	c.draft = ""
	c.mu.Unlock()

	updated, err := c.api.UpdatePost(ctx, model.UpdatePostPayload{
		ID:          edited.ID,
		AuthorID:    edited.AuthorID,
		Type:        edited.Type,
		TextContent: edited.TextContent,
		Caption:     edited.Caption,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case errors.Is(err, api.ErrUpdateNotConfigured):
		c.post = edited
		c.log.Debug("edit applied locally")
	case err != nil:
		c.diag.Warn("post update failed", zap.Error(err))
		return c.post, err
	default:
		c.post = *updated
		if c.post.Author == nil {
			c.post.Author = edited.Author
		}
		c.log.Info("post updated")
	}
	return c.post, nil
}

func editableText(p model.Post) string {
	if p.Type == model.PostImage {
		return p.Caption
	}
	return p.TextContent
}

func withEditableText(p model.Post, s string) model.Post {
	if p.Type == model.PostImage {
		p.Caption = s
	} else {
		p.TextContent = s
	}
	return p
}
