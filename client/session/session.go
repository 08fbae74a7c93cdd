// Package session holds the authenticated identity (user id + access token).
//
// A Session is created once and passed to every component that needs it; the
// persisted copy lives in a Store so it survives restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/as283-ua/go-social-feed/client/logging"
	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	KeyUserID      = "user_id"
	KeyAccessToken = "access_token"
)

var ErrNoToken = errors.New("no access token")

type Session struct {
	mu     sync.RWMutex
	store  Store
	userID int64
	token  string
	log    *zap.Logger
}

func New(store Store, log *zap.Logger) *Session {
	return &Session{store: store, log: logging.OrDefault(log).Named("session")}
}

// Load reads the persisted keys. A malformed user id is treated as absent.
func (s *Session) Load(ctx context.Context) error {
	token, _, err := s.store.Get(ctx, KeyAccessToken)
	if err != nil {
		return err
	}
	rawID, ok, err := s.store.Get(ctx, KeyUserID)
	if err != nil {
		return err
	}

	var id int64
	if ok {
		id, err = model.ParseID(rawID)
		if err != nil {
			s.log.Warn("ignoring malformed user id", zap.String("value", rawID))
			id = 0
		}
	}

	s.mu.Lock()
	s.userID = id
	s.token = token
	s.mu.Unlock()

	return nil
}

// Start persists a new identity, replacing any previous one.
func (s *Session) Start(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return ErrNoToken
	}

	err := s.store.SetMany(ctx, map[string]string{
		KeyUserID:      model.FormatID(userID),
		KeyAccessToken: token,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.userID = userID
	s.token = token
	s.mu.Unlock()

	s.log.Info("session started", zap.Int64("user_id", userID))
	return nil
}

// Clear removes both keys together, then forgets the in-memory copy. When the
// store fails the identity is kept.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, KeyUserID, KeyAccessToken); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	s.mu.Lock()
	s.userID = 0
	s.token = ""
	s.mu.Unlock()

	s.log.Info("session cleared")
	return nil
}

func (s *Session) UserID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.userID != 0
}

// Token returns the access token, empty when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// IsCurrentUser reports whether authorID is the logged-in user.
func (s *Session) IsCurrentUser(authorID int64) bool {
	id, ok := s.UserID()
	return ok && id == authorID
}

// Expiry returns the exp claim of a JWT access token. The signature is not
// checked; the server stays the authority.
func (s *Session) Expiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an exp claim before now.
func (s *Session) Expired(now time.Time) bool {
	exp, ok := s.Expiry()
	return ok && !now.Before(exp)
}
