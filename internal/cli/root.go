package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the franchise-ops command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "franchise-ops",
		Short: "Background worker for the franchise back office",
		Long: `Runs the scheduled reconciliation jobs of the franchise back office:
membership expiry notifications and purchase auto-confirmation.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewPingCommand())

	return cmd
}
