package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(version string, open serviceFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "planctl",
		Short: "Inspect CopyFox plans and dry-run entitlement checks",
		Long: `planctl evaluates the built-in plan table offline. It prints plan limits,
validates a generation request against a plan and suggests upgrades for a
set of features, without talking to a running server. The keys and mappings
commands write to the database configured by DB_*.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.AddCommand(
		newPlansCommand(),
		newLimitsCommand(),
		newValidateCommand(),
		newSuggestCommand(),
		newKeysCommand(open),
		newMappingsCommand(open),
	)

	return rootCmd
}
