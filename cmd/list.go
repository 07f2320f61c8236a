package cmd

import (
	"github.com/spf13/cobra"

	"crashtriage.dev/pkg/crashtriage/internal/domain"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open issues of the tracker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tracker, err := buildTrackerConfig()
			if err != nil {
				return err
			}

			cfg := m.RunConfig{Tracker: tracker}

			return resolveWorkflow(cmd, &cfg, true).List(cmd.Context(), domain.ListArgs{MaxPages: tracker.MaxPages})
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
