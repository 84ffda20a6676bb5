package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	snapshotadapter "github.com/bnema/networth-cli/internal/adapters/render/snapshot"
	"github.com/bnema/networth-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newFetchCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the full financial snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, app, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the snapshot as JSON")

	return cmd
}

func runFetch(cmd *cobra.Command, app *app, asJSON bool) error {
	var snapshot domain.FinancialSnapshot

	err := runTaskSpinner(cmd.Context(), cmd.OutOrStdout(), "Fetching financial snapshot...", func(ctx context.Context) error {
		var fetchErr error
		snapshot, fetchErr = app.snapshots.FetchAll(ctx)
		return fetchErr
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuthRequired):
			return errors.New("not authenticated, run 'nw login' first")
		case errors.Is(err, domain.ErrSessionExpired):
			return errors.New("session expired, run 'nw login' to authenticate again")
		}
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}

	rendered, err := app.snapshotRenderer(snapshot, snapshotadapter.RenderOptions{
		Now:        app.now(),
		StaleAfter: app.staleAfter,
	})
	if err != nil {
		return fmt.Errorf("render snapshot: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
