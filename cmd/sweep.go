package cmd

import (
	"github.com/spf13/cobra"

	"crashtriage.dev/pkg/crashtriage/internal/domain"
)

// sweepCmd represents the sweep command.
var sweepCmd = newSweepCmd()

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Re-verify open issues and close the ones that no longer reproduce",
		Long: `Read the open issues of the tracker, re-run the reproduction recorded in
each body against the shell, and close every issue that no longer fails.
Issues labelled AFL or timeout are left alone; issues that still time out
get the timeout label.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildRunConfig(configOptions{requireToken: true})
			if err != nil {
				return err
			}

			return resolveWorkflow(cmd, &cfg, true).Sweep(cmd.Context(), domain.RunSweepArgs{
				SweepArgs: domain.SweepArgs{
					MaxPages:    cfg.Tracker.MaxPages,
					MaxAttempts: cfg.Probe.MaxAttempts,
					DryRun:      cfg.DryRun,
				},
				Report: cfg.Report,
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
