package api

import (
	"context"
	"net/http"

	"github.com/as283-ua/go-social-feed/util/model"
)

func (c *Client) ToggleLike(ctx context.Context, postID, userID int64) (*model.LikeResult, error) {
	var out model.LikeResult
	in := model.LikePayload{PostID: postID, UserID: userID}
	if err := c.doJSON(ctx, opToggleLike, http.MethodPost, "/post-likes", true, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CountLikes returns the authoritative like count; the body is a bare integer.
func (c *Client) CountLikes(ctx context.Context, postID int64) (int, error) {
	var n int
	err := c.do(ctx, request{
		op:     opCountLikes,
		method: http.MethodGet,
		path:   "/post-likes/" + model.FormatID(postID),
		auth:   true,
	}, &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}
