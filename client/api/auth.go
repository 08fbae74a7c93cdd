package api

import (
	"context"
	"net/http"

	"github.com/as283-ua/go-social-feed/util/model"
)

func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var out model.LoginResponse
	in := model.LoginRequest{Email: email, Password: password}
	if err := c.doJSON(ctx, opLogin, http.MethodPost, "/auth/login", false, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a user. RoleID defaults to model.DefaultRoleID.
func (c *Client) Register(ctx context.Context, in model.RegisterRequest) (*model.RegisterResponse, error) {
	if in.RoleID == 0 {
		in.RoleID = model.DefaultRoleID
	}
	var out model.RegisterResponse
	if err := c.doJSON(ctx, opRegister, http.MethodPost, "/users", false, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CodeUserNotFound is the login error the server sends for an unknown email.
const CodeUserNotFound = "USER_NOT_FOUND"

// LoginMessage is the text shown for a failed login.
func LoginMessage(err error) string {
	msg := Message(err, fallbackMessages[opLogin])
	if msg == CodeUserNotFound {
		return "this user does not exist, please register"
	}
	return msg
}
