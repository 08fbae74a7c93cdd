package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/card"
	"github.com/as283-ua/go-social-feed/client/compose"
	"github.com/as283-ua/go-social-feed/client/feed"
	"github.com/as283-ua/go-social-feed/client/terminal"
	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/spf13/cobra"
)

// findPost loads the feed and returns the post with id.
func findPost(cmd *cobra.Command, a *app, id int64) (model.Post, error) {
	f := feed.New(a.deps.API, a.logger)
	if err := f.Load(cmd.Context()); err != nil {
		return model.Post{}, errors.New(api.Message(err, ""))
	}
	for _, p := range f.Posts() {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Post{}, fmt.Errorf("post %d not found", id)
}

func parsePostID(s string) (int64, error) {
	id, err := model.ParseID(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", s)
	}
	return id, nil
}

func requireLogin(a *app) error {
	if !a.deps.Session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

func newPostsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "posts",
		Short: "List the feed, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := feed.New(a.deps.API, a.logger)
			if err := f.Load(cmd.Context()); err != nil {
				return errors.New(api.Message(err, ""))
			}

			posts := f.Posts()
			a.deps.Authors.Prefetch(cmd.Context(), posts)
			return terminal.PrintPosts(cmd.OutOrStdout(), a.deps.Renderer, posts, func(p model.Post) string {
				return a.deps.Authors.Resolve(cmd.Context(), p)
			})
		},
	}
}

func newPostCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a text or image post",
		Example: `  feed post --text "hello"
  feed post --image ./sunset.png --caption "evening"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			text, _ := cmd.Flags().GetString("text")
			image, _ := cmd.Flags().GetString("image")
			caption, _ := cmd.Flags().GetString("caption")

			form := compose.New()
			form.SetCaption(caption)
			if image != "" {
				form.SetMode(compose.ModeImage)
				if err := form.SelectImageFile(image); err != nil {
					return err
				}
			} else {
				form.SetText(text)
			}

			userID, _ := a.deps.Session.UserID()
			post, err := form.Submit(cmd.Context(), userID, feed.New(a.deps.API, a.logger))
			if err != nil {
				if msg := form.Message(); msg != "" {
					return errors.New(msg)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Published post #%d\n", post.ID)
			return nil
		},
	}
	cmd.Flags().String("text", "", "Text content")
	cmd.Flags().String("image", "", "Path to an image file")
	cmd.Flags().String("caption", "", "Caption")
	cmd.MarkFlagsMutuallyExclusive("text", "image")
	cmd.MarkFlagsOneRequired("text", "image")
	return cmd
}

func newLikeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "like <postId>",
		Short: "Toggle your like on a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			post, err := findPost(cmd, a, id)
			if err != nil {
				return err
			}

			c := card.New(post, a.deps.API, a.deps.Session, a.logger)
			state, err := c.ToggleLike(cmd.Context())
			if err != nil {
				return errors.New(api.Message(err, ""))
			}

			verb := "Unliked"
			if state.Liked {
				verb = "Liked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s post #%d (%d likes)\n", verb, id, state.Count)
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <postId> <text>",
		Short: "Edit the text (or caption) of your own post",
		Long: `Edit replaces the text of a text post, or the caption of an image post.

The backend update route is configured with api.update_post in the config file;
without it the edit is only shown locally and is not saved.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireLogin(a); err != nil {
				return err
			}
			id, err := parsePostID(args[0])
			if err != nil {
				return err
			}
			post, err := findPost(cmd, a, id)
			if err != nil {
				return err
			}

			c := card.New(post, a.deps.API, a.deps.Session, a.logger)
			if err := c.BeginEdit(); err != nil {
				return err
			}
			c.SetDraft(strings.Join(args[1:], " "))

			if _, err := c.SaveEdit(cmd.Context()); err != nil {
				return errors.New(api.Message(err, ""))
			}
			if !a.cfg.API.UpdatePost.Enabled() {
				fmt.Fprintf(cmd.OutOrStdout(), "Post #%d edited locally; no update route is configured\n", id)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated post #%d\n", id)
			return nil
		},
	}
}
