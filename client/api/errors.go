package api

import (
	"errors"
	"fmt"
)

// ErrUpdateNotConfigured is returned by UpdatePost while no update route is
// configured; the backend contract for updates is not fixed.
var ErrUpdateNotConfigured = errors.New("post update route not configured")

// RequestFailedError is returned for transport failures (Status 0) and non-2xx
// responses. Message is the server message when one could be parsed.
type RequestFailedError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestFailedError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

func (e *RequestFailedError) Unwrap() error {
	return e.Err
}

// Message returns the user-facing message of err, or fallback when err is not
// a request failure.
func Message(err error, fallback string) string {
	var rf *RequestFailedError
	if errors.As(err, &rf) && rf.Message != "" {
		return rf.Message
	}
	if err != nil && fallback == "" {
		return err.Error()
	}
	return fallback
}

// IsStatus reports whether err is a request failure with the given status.
func IsStatus(err error, status int) bool {
	var rf *RequestFailedError
	return errors.As(err, &rf) && rf.Status == status
}

const transportMessage = "could not reach the server"

var fallbackMessages = map[string]string{
	opLogin:      "could not log in",
	opRegister:   "could not create the user",
	opGetUser:    "could not fetch the user",
	opListPosts:  "could not load posts",
	opCreatePost: "could not create the post",
	opUpdatePost: "could not update the post",
	opToggleLike: "could not toggle the like on this post",
	opCountLikes: "could not fetch the like count",
}
