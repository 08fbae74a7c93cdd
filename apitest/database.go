package apitest

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/as283-ua/go-social-feed/util/model"
	"golang.org/x/crypto/argon2"
)

type account struct {
	user model.User
	salt []byte
	hash []byte
}

// Failure is a canned error response served once for a route.
type Failure struct {
	Status  int
	Message string
	// Raw, when set, is written verbatim instead of a JSON message.
	Raw string
}

// Request is what the fake backend saw for one call.
type Request struct {
	Route         string
	Authorization string
	RequestID     string
}

// Database is the in-memory state behind the fake API.
type Database struct {
	mu         sync.Mutex
	accounts   map[int64]*account
	byEmail    map[string]int64
	posts      []model.Post // newest first
	likes      map[int64]map[int64]bool
	nextUserID int64
	nextPostID int64
	failures   map[string][]Failure
	requests   []Request
	secret     []byte

	// IssueTokenOnRegister makes POST /users answer with an access_token.
	IssueTokenOnRegister bool
	// EmbedAuthors embeds the author object in listed posts.
	EmbedAuthors bool
}

func NewDatabase(secret []byte) *Database {
	return &Database{
		accounts:   make(map[int64]*account),
		byEmail:    make(map[string]int64),
		likes:      make(map[int64]map[int64]bool),
		failures:   make(map[string][]Failure),
		nextUserID: 1,
		nextPostID: 1,
		secret:     secret,
	}
}

func hashPassword(password string, salt []byte) []byte {
	return argon2.Key([]byte(password), salt, 3, 32*1024, 4, 32)
}

// AddUser registers an account and returns the stored user.
func (db *Database) AddUser(email, password string, u model.User) (model.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.addUserLocked(email, password, u)
}

func (db *Database) addUserLocked(email, password string, u model.User) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := db.byEmail[email]; ok {
		return model.User{}, fmt.Errorf("EMAIL_ALREADY_EXISTS")
	}

	salt := make([]byte, 16)
	rand.Read(salt)

	u.ID = db.nextUserID
	u.Email = email
	now := time.Now().UTC()
	u.Created, u.Updated = now, now
	db.nextUserID++

	db.accounts[u.ID] = &account{user: u, salt: salt, hash: hashPassword(password, salt)}
	db.byEmail[email] = u.ID
	return u, nil
}

func (db *Database) checkCredentials(email, password string) (model.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	id, ok := db.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, fmt.Errorf("USER_NOT_FOUND")
	}
	acc := db.accounts[id]
	if !bytes.Equal(acc.hash, hashPassword(password, acc.salt)) {
		return model.User{}, fmt.Errorf("INVALID_CREDENTIALS")
	}
	return acc.user, nil
}

func (db *Database) User(id int64) (model.User, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	acc, ok := db.accounts[id]
	if !ok {
		return model.User{}, false
	}
	return acc.user, true
}

// AddPost stores p as the newest post, assigning id and creation time.
func (db *Database) AddPost(p model.Post) model.Post {
	db.mu.Lock()
	defer db.mu.Unlock()

	p.ID = db.nextPostID
	db.nextPostID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.LikedByMe = nil

	db.posts = append([]model.Post{p}, db.posts...)
	return p
}

// Posts returns the stored posts, newest first, as seen by viewer.
func (db *Database) Posts(viewer int64) []model.Post {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]model.Post, len(db.posts))
	for i, p := range db.posts {
		liked := db.likes[p.ID][viewer]
		p.LikedByMe = &liked
		p.LikeCount = len(db.likes[p.ID])
		if db.EmbedAuthors {
			if acc, ok := db.accounts[p.AuthorID]; ok {
				author := acc.user
				p.Author = &author
			}
		}
		out[i] = p
	}
	return out
}

func (db *Database) postIndex(id int64) int {
	for i, p := range db.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (db *Database) updatePost(in model.UpdatePostPayload, userID int64) (model.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.postIndex(in.ID)
	if i < 0 {
		return model.Post{}, fmt.Errorf("POST_NOT_FOUND")
	}
	if db.posts[i].AuthorID != userID {
		return model.Post{}, fmt.Errorf("FORBIDDEN")
	}
	db.posts[i].TextContent = in.TextContent
	db.posts[i].Caption = in.Caption
	return db.posts[i], nil
}

// ToggleLike flips the like of userID on postID.
func (db *Database) ToggleLike(postID, userID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.postIndex(postID) < 0 {
		return false, fmt.Errorf("POST_NOT_FOUND")
	}
	if db.likes[postID] == nil {
		db.likes[postID] = make(map[int64]bool)
	}
	if db.likes[postID][userID] {
		delete(db.likes[postID], userID)
		return false, nil
	}
	db.likes[postID][userID] = true
	return true, nil
}

func (db *Database) LikeCount(postID int64) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.likes[postID])
}

// FailNext queues a failure for the next request to route, e.g. "POST /post-likes".
func (db *Database) FailNext(route string, f Failure) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[route] = append(db.failures[route], f)
}

func (db *Database) popFailure(route string) (Failure, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	queue := db.failures[route]
	if len(queue) == 0 {
		return Failure{}, false
	}
	db.failures[route] = queue[1:]
	return queue[0], true
}

func (db *Database) record(r Request) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.requests = append(db.requests, r)
}

// Requests returns the recorded requests for route, or all of them when route is empty.
func (db *Database) Requests(route string) []Request {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []Request
	for _, r := range db.requests {
		if route == "" || r.Route == route {
			out = append(out, r)
		}
	}
	return out
}
