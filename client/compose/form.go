// Package compose is the create-post form: a text mode and an image mode
// sharing one submit path.
package compose

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/util/model"
)

type Mode int

const (
	ModeText Mode = iota
	ModeImage
)

func (m Mode) String() string {
	if m == ModeImage {
		return "image"
	}
	return "text"
}

var (
	ErrEmptyText = errors.New("write something before publishing")
	ErrNoImage   = errors.New("select an image before publishing")
	ErrNotImage  = errors.New("file is not an image")
	ErrNoAuthor  = errors.New("log in to publish")
	ErrBusy      = errors.New("already publishing")
)

// MaxImageSize bounds SelectImageFile reads.
const MaxImageSize = 10 << 20

// Creator publishes a post and returns the server copy.
type Creator interface {
	Create(ctx context.Context, p model.CreatePostPayload) (model.Post, error)
}

type Form struct {
	mu      sync.Mutex
	mode    Mode
	text    string
	caption string
	image   *model.Upload
	message string
	busy    bool
}

func New() *Form {
	return &Form{}
}

func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

func (f *Form) SetMode(m Mode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = m
	f.message = ""
}

// Toggle switches between text and image mode.
func (f *Form) Toggle() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == ModeText {
		f.mode = ModeImage
	} else {
		f.mode = ModeText
	}
	f.message = ""
	return f.mode
}

func (f *Form) SetText(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = s
}

func (f *Form) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func (f *Form) SetCaption(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.caption = s
}

func (f *Form) Caption() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.caption
}

// SelectImage sets the file sent with an image post; nil clears it.
func (f *Form) SelectImage(u *model.Upload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.image = u
}

func (f *Form) Image() *model.Upload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.image
}

// SelectImageFile reads path from disk and selects it.
func (f *Form) SelectImageFile(path string) error {
	path = strings.TrimSpace(path)
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotImage)
	}
	if info.Size() > MaxImageSize {
		return fmt.Errorf("%s is larger than %d bytes", path, MaxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%s (%s): %w", filepath.Base(path), contentType, ErrNotImage)
	}

	f.SelectImage(&model.Upload{Name: filepath.Base(path), ContentType: contentType, Data: data})
	return nil
}

// Message is the inline message under the form: a validation or server error.
func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Validate checks the fields of the current mode.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() error {
	switch f.mode {
	case ModeImage:
		if f.image == nil || len(f.image.Data) == 0 {
			return ErrNoImage
		}
	default:
		if strings.TrimSpace(f.text) == "" {
			return ErrEmptyText
		}
	}
	return nil
}

// Payload builds the request for the current mode. Text posts never carry a
// file and image posts never carry text content.
func (f *Form) Payload(authorID int64) (model.CreatePostPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payloadLocked(authorID)
}

func (f *Form) payloadLocked(authorID int64) (model.CreatePostPayload, error) {
	if err := f.validateLocked(); err != nil {
		return model.CreatePostPayload{}, err
	}

	p := model.CreatePostPayload{AuthorID: authorID, Caption: strings.TrimSpace(f.caption)}
	if f.mode == ModeImage {
		p.Type = model.PostImage
		p.Source = f.image
	} else {
		p.Type = model.PostText
		p.TextContent = strings.TrimSpace(f.text)
	}
	return p, nil
}

// Submit validates and publishes. Validation errors never reach create. On
// success the fields of the current mode are cleared; on failure they stay and
// the error becomes the inline message. Only one Submit runs at a time; others
// return ErrBusy.
func (f *Form) Submit(ctx context.Context, authorID int64, create Creator) (model.Post, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return model.Post{}, ErrBusy
	}
	if authorID == 0 {
		f.message = ErrNoAuthor.Error()
		f.mu.Unlock()
		return model.Post{}, ErrNoAuthor
	}
	p, err := f.payloadLocked(authorID)
	if err != nil {
		f.message = err.Error()
		f.mu.Unlock()
		return model.Post{}, err
	}
	f.busy = true
	f.message = ""
	mode := f.mode
	f.mu.Unlock()

	post, err := create.Create(ctx, p)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false

	if err != nil {
		f.message = api.Message(err, "")
		return model.Post{}, err
	}

	if mode == ModeImage {
		f.image = nil
	} else {
		f.text = ""
	}
	f.caption = ""
	return post, nil
}
