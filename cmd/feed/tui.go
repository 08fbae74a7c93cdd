package main

import (
	"context"
	"errors"

	"github.com/as283-ua/go-social-feed/client/message"
	"github.com/as283-ua/go-social-feed/client/mvc"
	"github.com/as283-ua/go-social-feed/client/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runTUI(cmd *cobra.Command, a *app) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	p := tea.NewProgram(mvc.NewApp(a.deps), tea.WithAltScreen(), tea.WithContext(ctx))

	// a login or logout from another terminal rewrites the session store
	if a.cfg.Session.Driver != "memory" {
		err := session.Watch(ctx, a.cfg.Session.Path, func() {
			p.Send(message.SessionChangedMsg{})
		})
		if err != nil {
			a.logger.Warn("session watcher disabled", zap.Error(err))
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
