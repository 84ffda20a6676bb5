package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/networth-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the aggregator in your browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, app)
		},
	}
}

func runLogin(cmd *cobra.Command, app *app) error {
	session, err := app.sessions.Initiate(cmd.Context())
	if err != nil {
		return fmt.Errorf("initiate login: %w", err)
	}

	if session.Valid(app.now()) {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Already authenticated.")
		return err
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in your browser to authenticate:\n\n  %s\n\n", session.LoginURL); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), app.loginTimeout)
	defer cancel()

	err = runTaskSpinner(ctx, cmd.OutOrStdout(), "Waiting for login confirmation...", app.awaitLogin)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errors.New("login was not confirmed in time, run 'nw login' again")
		}
		return fmt.Errorf("wait for login confirmation: %w", err)
	}

	confirmed, err := app.sessions.Current(cmd.Context())
	if err != nil {
		return fmt.Errorf("load confirmed session: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Authenticated. Session valid for %s.\n", formatRemaining(confirmed, app.now()))
	return err
}

// awaitLogin polls the login status until the user confirms in the browser.
// Transient transport errors keep the poll alive; anything else aborts.
func (a *app) awaitLogin(ctx context.Context) error {
	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()

	for {
		session, err := a.sessions.PollStatus(ctx)
		if err != nil && !errors.Is(err, domain.ErrTransient) {
			return err
		}
		if err == nil && session.Valid(a.now()) {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func formatRemaining(session domain.Session, now time.Time) string {
	remaining := session.RemainingLifetime(now).Round(time.Minute)
	if remaining <= 0 {
		return "0m"
	}
	return remaining.String()
}
