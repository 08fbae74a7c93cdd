package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/as283-ua/go-social-feed/client/api"
	"github.com/as283-ua/go-social-feed/client/authors"
	"github.com/as283-ua/go-social-feed/util/model"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNotLoggedIn = errors.New("not logged in, run 'feed login' first")

// readPassword prompts on the terminal when no --password was given.
func readPassword(cmd *cobra.Command, flag, prompt string) (string, error) {
	if pw, _ := cmd.Flags().GetString(flag); pw != "" {
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--%s is required when stdin is not a terminal", flag)
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func newLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			email = strings.TrimSpace(email)
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			password, err := readPassword(cmd, "password", "Password: ")
			if err != nil {
				return err
			}

			resp, err := a.deps.API.Login(cmd.Context(), email, password)
			if err != nil {
				return errors.New(api.LoginMessage(err))
			}
			if err := a.deps.Session.Start(cmd.Context(), resp.ID, resp.TokenValue()); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as user #%d\n", resp.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password (prompted when empty)")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			req := model.RegisterRequest{RoleID: model.DefaultRoleID}
			req.Email, _ = flags.GetString("email")
			req.Name, _ = flags.GetString("name")
			req.Lastname, _ = flags.GetString("lastname")
			req.Alias, _ = flags.GetString("alias")
			req.Birthdate, _ = flags.GetString("birthdate")

			if strings.TrimSpace(req.Email) == "" {
				return fmt.Errorf("--email is required")
			}
			password, err := readPassword(cmd, "password", "Password: ")
			if err != nil {
				return err
			}
			if len(password) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}
			req.Password = password

			resp, err := a.deps.API.Register(cmd.Context(), req)
			if err != nil {
				return errors.New(api.Message(err, ""))
			}

			out := cmd.OutOrStdout()
			token := resp.TokenValue()
			if token == "" {
				fmt.Fprintln(out, "Registered, now log in with 'feed login'")
				return nil
			}
			if err := a.deps.Session.Start(cmd.Context(), resp.ID, token); err != nil {
				return err
			}
			fmt.Fprintf(out, "Registered and logged in as user #%d\n", resp.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Password, at least 6 characters (prompted when empty)")
	cmd.Flags().String("name", "", "First name")
	cmd.Flags().String("lastname", "", "Last name")
	cmd.Flags().String("alias", "", "Public alias")
	cmd.Flags().String("birthdate", "", "Birthdate (YYYY-MM-DD)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.deps.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := a.deps.Session.UserID()
			if !ok || !a.deps.Session.Authenticated() {
				return errNotLoggedIn
			}

			u, err := a.deps.API.GetUser(cmd.Context(), id)
			if err != nil {
				return errors.New(api.Message(err, ""))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d %s <%s>\n", u.ID, orFallback(authors.DisplayName(*u)), u.Email)
			if role := u.RoleLabel(); role != "" {
				fmt.Fprintf(out, "role: %s\n", role)
			}
			if exp, ok := a.deps.Session.Expiry(); ok {
				fmt.Fprintf(out, "session expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func orFallback(name string) string {
	if name == "" {
		return authors.FallbackName
	}
	return name
}
