// Package api is the HTTP client for the remote feed API.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/as283-ua/go-social-feed/client/config"
	"github.com/as283-ua/go-social-feed/client/logging"
	"github.com/as283-ua/go-social-feed/util"
	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	opLogin      = "login"
	opRegister   = "register"
	opGetUser    = "get user"
	opListPosts  = "list posts"
	opCreatePost = "create post"
	opUpdatePost = "update post"
	opToggleLike = "toggle like"
	opCountLikes = "count likes"
)

// TokenSource supplies the bearer token; an empty token means none is sent.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL     string
	http        *http.Client
	tokens      TokenSource
	log         *zap.Logger
	timeout     time.Duration
	updateRoute config.UpdateRoute
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

// WithTimeout bounds every request. Zero keeps requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

func WithUpdateRoute(r config.UpdateRoute) Option {
	return func(cl *Client) { cl.updateRoute = r }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		tokens:  tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logging.OrDefault(c.log).Named("api")
	return c
}

// FromConfig builds a client from the api section of cfg.
func FromConfig(cfg *config.Config, tokens TokenSource, log *zap.Logger) *Client {
	return New(cfg.API.BaseURL, tokens,
		WithLogger(log),
		WithTimeout(cfg.GetTimeout()),
		WithUpdateRoute(cfg.API.UpdatePost),
	)
}

type request struct {
	op          string
	method      string
	path        string
	body        io.Reader
	contentType string
	auth        bool
}

// do sends r and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
	if err != nil {
		return fmt.Errorf("%s: %w", r.op, err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log.With(zap.String("op", r.op), zap.String("request_id", reqID))
	start := time.Now()

	res, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return &RequestFailedError{Op: r.op, Message: transportMessage, Err: err}
	}
	defer res.Body.Close()

	log.Debug("response",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		rf := &RequestFailedError{Op: r.op, Status: res.StatusCode, Message: fallbackMessages[r.op]}
		var body model.ErrorBody
		if util.DecodeJSON(res.Body, &body) == nil {
			if msg := body.Text(); msg != "" {
				rf.Message = msg
			}
		}
		log.Info("server rejected request", zap.Int("status", res.StatusCode), zap.String("message", rf.Message))
		return rf
	}

	if out == nil {
		return nil
	}

	if err := util.DecodeJSON(res.Body, out); err != nil {
		return &RequestFailedError{Op: r.op, Status: res.StatusCode, Message: fallbackMessages[r.op], Err: err}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, auth bool, in, out any) error {
	body, err := util.EncodeJSON(in)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.do(ctx, request{
		op:          op,
		method:      method,
		path:        path,
		body:        body,
		contentType: "application/json",
		auth:        auth,
	}, out)
}
