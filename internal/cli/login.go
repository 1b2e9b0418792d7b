package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intentflow/intentflow/pkg/session"
)

// loginCommand creates the login command.
func (c *CLI) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Authenticate against the conversation backend",
		Long: `Authenticate against the conversation backend.

The backend issues a bearer token for the given username. The session is
stored in ~/.config/intentflow/ and reused by the chat and conversations
commands until it expires.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			sessions, err := session.NewFileStore("")
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if existing, _ := sessions.Get(ctx); existing != nil {
				printInfo("Already logged in as %s", existing.Username)
				printDetail("Run 'intentflow logout' first to re-authenticate")
				return nil
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			client, err := newBackendClient(ctx, cfg, false)
			if err != nil {
				return err
			}

			resp, err := client.Login(ctx, args[0])
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			sess := session.New(resp.UserID, resp.Username, resp.SessionToken, session.DefaultTTL)
			if err := sessions.Set(ctx, sess); err != nil {
				return fmt.Errorf("store session: %w", err)
			}

			printSuccess("Logged in as %s", resp.Username)
			printDetail("Session expires %s", sess.ExpiresAt.Format("2006-01-02"))
			return nil
		},
	}
}

// logoutCommand creates the logout command.
func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored backend session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := session.NewFileStore("")
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			if err := sessions.Delete(cmd.Context()); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

// requireSession loads the stored session, failing with a hint when absent.
func requireSession(cmd *cobra.Command) (*session.Session, error) {
	sessions, err := session.NewFileStore("")
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	sess, err := sessions.Get(cmd.Context())
	if errors.Is(err, session.ErrExpired) {
		return nil, fmt.Errorf("session expired, run 'intentflow login' again")
	}
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in, run 'intentflow login <username>' first")
	}
	return sess, nil
}
