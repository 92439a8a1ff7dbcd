package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewPingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Ping the store once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := newWorker(cmd.Context())
			if err != nil {
				return err
			}
			defer w.Close()

			report, err := w.keepAlive.Ping(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "store ok (%s)\n", report)
			return nil
		},
	}
}
