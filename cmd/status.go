package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/networth-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session state without touching the network",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.sessions.Current(cmd.Context())
			if err != nil {
				if errors.Is(err, domain.ErrAuthRequired) {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "No session. Run 'nw login' to authenticate.")
					return err
				}
				return fmt.Errorf("load session: %w", err)
			}

			now := app.now()
			switch session.State(now) {
			case domain.SessionStateAuthenticated:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Authenticated. Session valid for %s.\n", formatRemaining(session, now))
			case domain.SessionStateAwaitingLogin:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Login pending. Open this URL to finish authenticating:\n\n  %s\n", session.LoginURL)
			case domain.SessionStateExpired:
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "Session expired. Run 'nw login' to authenticate again.")
			default:
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "No session. Run 'nw login' to authenticate.")
			}

			return err
		},
	}
}
