package main

import (
	"fmt"
	"os"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/authors"
	"github.com/as283-ua/go-social-feed/client/config"
	"github.com/as283-ua/go-social-feed/client/logging"
	"github.com/as283-ua/go-social-feed/client/mvc"
	"github.com/as283-ua/go-social-feed/client/session"
	"github.com/as283-ua/go-social-feed/client/terminal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is what every command runs against, built once in PersistentPreRunE.
type app struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	store  session.Store
	close  func() error
	deps   *mvc.Deps
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "feed",
		Short: "Terminal client for the social feed",
		Long: `feed shows the post feed of the social API in the terminal.

Run without arguments to start the interactive feed. Use the subcommands to log
in, list posts, publish or like from scripts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, a)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "Config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newPostsCmd(a),
		newPostCmd(a),
		newLikeCmd(a),
		newEditCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.configPath, err)
	}
	a.cfg = cfg

	a.logger, err = logging.New(cfg.Logging, a.verbose)
	if err != nil {
		return err
	}
	logging.SetDefault(a.logger)

	if err := a.openStore(); err != nil {
		return err
	}

	sess := session.New(a.store, a.logger)
	if err := sess.Load(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	client := api.FromConfig(cfg, sess, a.logger)
	a.deps = &mvc.Deps{
		Config:   cfg,
		API:      client,
		Session:  sess,
		Authors:  authors.NewResolver(client, authors.NewCache(cfg.Authors.CacheSize), a.logger),
		Renderer: terminal.NewRenderer(wrapWidth(cmd, cfg), cfg.UI.Style),
		Log:      a.logger,
	}

	a.logger.Debug("client ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("session_driver", cfg.Session.Driver))
	return nil
}

func (a *app) openStore() error {
	if a.cfg.Session.Driver == "memory" {
		a.store = session.NewMemoryStore()
		a.close = func() error { return nil }
		return nil
	}

	store, err := session.OpenSQLite(a.cfg.Session.Driver, a.cfg.Session.Path)
	if err != nil {
		return err
	}
	a.store = store
	a.close = store.Close
	return nil
}

func (a *app) teardown() {
	if a.close != nil {
		if err := a.close(); err != nil {
			a.logger.Warn("failed to close session store", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// wrapWidth is the configured word wrap, narrowed to fit the terminal.
func wrapWidth(cmd *cobra.Command, cfg *config.Config) int {
	var out *os.File
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		out = f
	}
	return min(terminal.Width(out, cfg.UI.WordWrap+8)-8, cfg.UI.WordWrap)
}
