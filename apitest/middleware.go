package apitest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/as283-ua/go-social-feed/util"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	ContextKeyData   = contextKey("db")
	ContextKeyUserID = contextKey("user_id")
)

func InjectData(data *Database) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), ContextKeyData, data)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func GetDb(req *http.Request) *Database {
	db := req.Context().Value(ContextKeyData)
	if db == nil {
		return nil
	}
	return db.(*Database)
}

func currentUserID(req *http.Request) int64 {
	id, _ := req.Context().Value(ContextKeyUserID).(int64)
	return id
}

// Record logs the request under route and serves any queued failure instead of
// calling next.
func Record(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		db := GetDb(req)
		db.record(Request{
			Route:         route,
			Authorization: req.Header.Get("Authorization"),
			RequestID:     req.Header.Get("X-Request-Id"),
		})

		if f, ok := db.popFailure(route); ok {
			if f.Raw != "" {
				w.WriteHeader(f.Status)
				fmt.Fprint(w, f.Raw)
				return
			}
			respondError(w, f.Status, f.Message)
			return
		}

		next.ServeHTTP(w, req)
	})
}

// Authorization validates the bearer JWT and stores its subject in the context.
func Authorization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		header := req.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		userID, err := validateToken(GetDb(req).secret, raw)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(req.Context(), ContextKeyUserID, userID)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func generateToken(secret []byte, userID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     fmt.Sprint(userID),
		"user_id": userID,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(secret)
}

func validateToken(secret []byte, raw string) (int64, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid claims")
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, fmt.Errorf("missing user_id claim")
	}
	return int64(id), nil
}

func respondError(w http.ResponseWriter, status int, msg string) {
	util.WriteJSON(w, status, map[string]any{
		"statusCode": status,
		"message":    msg,
	})
}
