package mvc

import (
	"context"
	"time"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/authors"
	"github.com/as283-ua/go-social-feed/client/config"
	"github.com/as283-ua/go-social-feed/client/logging"
	"github.com/as283-ua/go-social-feed/client/session"
	"github.com/as283-ua/go-social-feed/client/terminal"
	"go.uber.org/zap"
)

// infoTimeout is how long an "Info:" line stays on screen.
var infoTimeout = 5 * time.Second

// Deps is shared by every page.
type Deps struct {
	Config   *config.Config
	API      *api.Client
	Session  *session.Session
	Authors  *authors.Resolver
	Renderer *terminal.Renderer
	Log      *zap.Logger
}

func (d *Deps) logger() *zap.Logger {
	return logging.OrDefault(d.Log).Named("tui")
}

// Logout forgets the identity and every cached author name.
func (d *Deps) Logout(ctx context.Context) error {
	if err := d.Session.Clear(ctx); err != nil {
		return err
	}
	d.Authors.Cache().Purge()
	return nil
}
