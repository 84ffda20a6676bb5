package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nw",
		Short:         "Net Worth CLI (nw): fetch your financial snapshot from the terminal",
		Long:          "nw authenticates against your financial data aggregator, fetches net worth, credit, retirement fund and transaction data in one go, and renders it as a terminal snapshot.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newStatusCmd(app),
		newFetchCmd(app),
	)

	return rootCmd
}
