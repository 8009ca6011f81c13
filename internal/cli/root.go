// Package cli implements the pushctl commands.
package cli

import (
	"taskpush/internal/config"

	"github.com/spf13/cobra"
)

// RootCommand creates the pushctl root command.
func RootCommand(cfg *config.Config, rt Runtime) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pushctl",
		Short:         "Manage this device's task reminder push subscription",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		statusCommand(cfg, rt),
		subscribeCommand(cfg, rt),
		unsubscribeCommand(cfg, rt),
		keygenCommand(),
		sendTestCommand(cfg, rt),
		clickCommand(cfg, rt),
	)

	return rootCmd
}
