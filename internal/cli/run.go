package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func NewRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <job>",
		Short: "Run one job once, under the same lock as the scheduler",
		Long: `Runs a single pass of a job and prints its report. The job takes the
same named lock as the scheduled run, so a concurrent scheduled pass on
another instance makes this a no-op.

Jobs:
  expiry-notifier   membership expiry notifications
  auto-confirm      purchase auto-confirmation

Example:
  franchise-ops run expiry-notifier`,
		ValidArgs: []string{jobExpiryNotifier, jobAutoConfirm},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, args[0])
		},
	}
}

func runOnce(cmd *cobra.Command, name string) error {
	w, err := newWorker(cmd.Context())
	if err != nil {
		return err
	}
	defer w.Close()

	job, ok := w.jobs[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	ctx := cmd.Context()
	if w.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.JobTimeout)
		defer cancel()
	}

	report, err := job.Run(ctx)
	if report != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", job.Name(), report)
	}
	if err == nil && w.relay != nil {
		if aErr := w.relay.Announce(job.Name(), report); aErr != nil {
			w.log.WithError(aErr).Warn("Could not announce job run")
		}
	}
	return err
}
