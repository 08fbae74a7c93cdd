// Package apitest runs an in-memory fake of the remote feed API for tests.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// UpdateRoute is the update route served by the fake; the real backend's
// contract is unconfirmed, so clients only use it when configured.
const UpdateRoute = "PATCH /post/{id}"

type Server struct {
	*httptest.Server
	DB *Database
}

// NewHandler wires the fake API routes over db.
func NewHandler(db *Database) http.Handler {
	router := http.NewServeMux()

	public := map[string]http.HandlerFunc{
		"POST /auth/login": LoginHandler,
		"POST /users":      RegisterHandler,
	}
	private := map[string]http.HandlerFunc{
		"GET /users/{id}":          GetUserHandler,
		"GET /post/all":            GetPostsHandler,
		"POST /post":               CreatePostHandler,
		UpdateRoute:                UpdatePostHandler,
		"POST /post-likes":         ToggleLikeHandler,
		"GET /post-likes/{postId}": CountLikesHandler,
	}

	for route, h := range public {
		router.Handle(route, Record(route, h))
	}
	for route, h := range private {
		router.Handle(route, Record(route, Authorization(h)))
	}

	return InjectData(db)(router)
}

// New starts a fake server closed at the end of the test.
func New(t testing.TB) *Server {
	t.Helper()

	db := NewDatabase([]byte("apitest-secret"))
	srv := httptest.NewServer(NewHandler(db))
	t.Cleanup(srv.Close)

	return &Server{Server: srv, DB: db}
}

// TokenFor returns a valid access token for userID.
func (s *Server) TokenFor(t testing.TB, userID int64) string {
	t.Helper()
	token, err := generateToken(s.DB.secret, userID)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}
