package model

import (
	"encoding/json"
	"strings"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse accepts both access_token and token, backends differ.
type LoginResponse struct {
	ID          int64  `json:"id"`
	AccessToken string `json:"access_token,omitempty"`
	Token       string `json:"token,omitempty"`
}

func (r LoginResponse) TokenValue() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// DefaultRoleID is the role assigned to self-registered users.
const DefaultRoleID = 2

type RegisterRequest struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Lastname  string `json:"lastname"`
	Alias     string `json:"alias"`
	Password  string `json:"password"`
	Birthdate string `json:"birthdate"`
	RoleID    int    `json:"roleId"`
}

type RegisterResponse struct {
	User
	AccessToken string `json:"access_token,omitempty"`
	Token       string `json:"token,omitempty"`
}

func (r RegisterResponse) TokenValue() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// Upload is an image selected for an image post.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

type CreatePostPayload struct {
	AuthorID    int64
	Type        PostType
	TextContent string
	Caption     string
	Source      *Upload
}

type UpdatePostPayload struct {
	ID          int64    `json:"id"`
	AuthorID    int64    `json:"authorId"`
	Type        PostType `json:"type"`
	TextContent string   `json:"textContent"`
	Caption     string   `json:"caption"`
}

type LikePayload struct {
	PostID int64 `json:"postId"`
	UserID int64 `json:"userId"`
}

type LikeResult struct {
	Liked bool `json:"liked"`
}

// ErrorBody is the JSON error envelope. message is either a string or a list of
// validation messages.
type ErrorBody struct {
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
}

func (b ErrorBody) Text() string {
	if len(b.Message) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(b.Message, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []string
	if err := json.Unmarshal(b.Message, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, "; "))
	}

	return ""
}
