package message

import (
	"time"

	"github.com/as283-ua/go-social-feed/client/card"
	"github.com/as283-ua/go-social-feed/util/model"
	tea "github.com/charmbracelet/bubbletea"
)

// ResetMsg clears the transient "Info:" line.
type ResetMsg struct{}

// ErrMsg carries a failure to show on the current page.
type ErrMsg struct {
	Err error
}

type LoginMsg struct {
	Email string
	Resp  *model.LoginResponse
	Err   error
}

type RegisterMsg struct {
	Email string
	Resp  *model.RegisterResponse
	Err   error
}

type PostsMsg struct {
	Posts []model.Post
	Err   error
}

type AuthorMsg struct {
	PostID int64
	Name   string
}

type LikeMsg struct {
	PostID int64
	State  card.LikeState
	Err    error
}

type PostCreatedMsg struct {
	Post model.Post
	Err  error
}

type PostUpdatedMsg struct {
	Post model.Post
	Err  error
}

type ProfileMsg struct {
	User *model.User
	Err  error
}

// SessionChangedMsg is sent when another process rewrote the session store.
type SessionChangedMsg struct{}

func SendTimedMessage(msg tea.Msg, t time.Duration) tea.Cmd {
	return func() tea.Msg {
		timer := time.NewTimer(t)
		<-timer.C

		return msg
	}
}

// ResetAfter clears the info line after t.
func ResetAfter(t time.Duration) tea.Cmd {
	return SendTimedMessage(ResetMsg{}, t)
}
