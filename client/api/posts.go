package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/as283-ua/go-social-feed/util/model"
)

func (c *Client) ListPosts(ctx context.Context) ([]model.Post, error) {
	var out []model.Post
	err := c.do(ctx, request{
		op:     opListPosts,
		method: http.MethodGet,
		path:   "/post/all",
		auth:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Post{}
	}
	return out, nil
}

// CreatePost sends the payload as multipart form data. The image goes in the
// "source" file part and only for image posts.
func (c *Client) CreatePost(ctx context.Context, p model.CreatePostPayload) (*model.Post, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"authorId", model.FormatID(p.AuthorID)},
		{"type", string(p.Type)},
	}
	if p.Caption != "" {
		fields = append(fields, [2]string{"caption", p.Caption})
	}
	if p.TextContent != "" {
		fields = append(fields, [2]string{"textContent", p.TextContent})
	}
	for _, f := range fields {
		if err := form.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("%s: %w", opCreatePost, err)
		}
	}

	if p.Type == model.PostImage && p.Source != nil {
		if err := writeUpload(form, p.Source); err != nil {
			return nil, fmt.Errorf("%s: %w", opCreatePost, err)
		}
	}

	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", opCreatePost, err)
	}

	var out model.Post
	err := c.do(ctx, request{
		op:          opCreatePost,
		method:      http.MethodPost,
		path:        "/post",
		body:        &buf,
		contentType: form.FormDataContentType(),
		auth:        true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func writeUpload(form *multipart.Writer, u *model.Upload) error {
	ct := u.ContentType
	if ct == "" {
		ct = http.DetectContentType(u.Data)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="source"; filename="%s"`, escapeQuotes(u.Name)))
	h.Set("Content-Type", ct)

	part, err := form.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(u.Data)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// UpdatePost sends the full post to the configured update route. Without one
// it returns ErrUpdateNotConfigured and nothing is sent.
func (c *Client) UpdatePost(ctx context.Context, p model.UpdatePostPayload) (*model.Post, error) {
	if !c.updateRoute.Enabled() {
		return nil, ErrUpdateNotConfigured
	}

	path := strings.ReplaceAll(c.updateRoute.Path, "{id}", model.FormatID(p.ID))
	var out model.Post
	if err := c.doJSON(ctx, opUpdatePost, strings.ToUpper(c.updateRoute.Method), path, true, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
