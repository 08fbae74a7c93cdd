package api

import (
	"context"
	"net/http"

	"github.com/as283-ua/go-social-feed/util/model"
)

func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var out model.User
	err := c.do(ctx, request{
		op:     opGetUser,
		method: http.MethodGet,
		path:   "/users/" + model.FormatID(id),
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
