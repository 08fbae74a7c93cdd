// Package authors turns a post's author id into a display name.
//
// Lookup order: the author object embedded in the post, the name cache, then a
// network fetch of the user. Fetches are batched through a dataloader so cards
// showing the same author share a request.
package authors

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/as283-ua/go-social-feed/client/logging"
	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/graph-gophers/dataloader/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FallbackName is shown when an author cannot be resolved.
const FallbackName = "Unknown author"

const (
	batchWait     = 5 * time.Millisecond
	fetchParallel = 4
)

type UserFetcher interface {
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

type Resolver struct {
	users  UserFetcher
	cache  *Cache
	loader *dataloader.Loader[int64, string]
	log    *zap.Logger
}

func NewResolver(users UserFetcher, cache *Cache, log *zap.Logger) *Resolver {
	if cache == nil {
		cache = NewCache(DefaultCacheSize)
	}
	r := &Resolver{
		users: users,
		cache: cache,
		log:   logging.Diagnostics(log).Named("authors"),
	}
	r.loader = dataloader.NewBatchedLoader(r.fetch,
		dataloader.WithCache[int64, string](&dataloader.NoCache[int64, string]{}),
		dataloader.WithWait[int64, string](batchWait),
	)
	return r
}

func (r *Resolver) Cache() *Cache {
	return r.cache
}

// DisplayName prefers alias, then name, then lastname.
func DisplayName(u model.User) string {
	for _, s := range []string{u.Alias, u.Name, u.Lastname} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Resolve never fails: lookups that error resolve to FallbackName and are not
// cached, so a later call retries. A cancelled ctx also yields FallbackName.
func (r *Resolver) Resolve(ctx context.Context, post model.Post) string {
	if post.Author != nil {
		if name := DisplayName(*post.Author); name != "" {
			r.cache.Put(post.AuthorID, name)
			return name
		}
	}

	if post.AuthorID == 0 {
		return FallbackName
	}

	if name, ok := r.cache.Get(post.AuthorID); ok {
		return name
	}

	if ctx.Err() != nil {
		return FallbackName
	}
	name, err := r.loader.Load(ctx, post.AuthorID)()
	if ctx.Err() != nil {
		return FallbackName
	}
	if err != nil {
		r.log.Warn("author lookup failed", zap.Int64("author_id", post.AuthorID), zap.Error(err))
		return FallbackName
	}
	return name
}

// Prefetch resolves the authors of posts not yet cached, in one batch.
func (r *Resolver) Prefetch(ctx context.Context, posts []model.Post) {
	seen := make(map[int64]bool)
	var pending []model.Post
	for _, p := range posts {
		if seen[p.AuthorID] {
			continue
		}
		seen[p.AuthorID] = true
		pending = append(pending, p)
	}

	var g errgroup.Group
	for _, p := range pending {
		g.Go(func() error {
			r.Resolve(ctx, p)
			return nil
		})
	}
	g.Wait()
}

// fetch gets the context of the first Load in the batch. Its cancellation must
// not fail the other callers waiting on the same batch.
func (r *Resolver) fetch(ctx context.Context, ids []int64) []*dataloader.Result[string] {
	ctx = context.WithoutCancel(ctx)

	// the loader runs without a cache, so one batch may repeat an id
	unique := make(map[int64]*dataloader.Result[string], len(ids))
	for _, id := range ids {
		unique[id] = nil
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(fetchParallel)
	for id := range unique {
		g.Go(func() error {
			res := &dataloader.Result[string]{}
			u, err := r.users.GetUser(ctx, id)
			if err != nil {
				res.Error = err
			} else {
				res.Data = DisplayName(*u)
				if res.Data == "" {
					res.Data = FallbackName
				}
				r.cache.Put(id, res.Data)
			}

			mu.Lock()
			unique[id] = res
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	results := make([]*dataloader.Result[string], len(ids))
	for i, id := range ids {
		results[i] = unique[id]
	}
	return results
}
