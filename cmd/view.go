package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"crashtriage.dev/pkg/crashtriage/internal/domain"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [report]",
		Short: "View a previously saved run report",
		Long:  "View a run report written with --report. Without an argument the --report path is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reportPath := viper.GetString(reportKey)
			if len(args) == 1 {
				reportPath = args[0]
			}

			if reportPath == "" {
				return errors.New("no report given, pass a path or --report")
			}

			return resolveWorkflow(cmd, nil, false).View(cmd.Context(), domain.ViewArgs{Report: m.Path(reportPath)})
		},
	}
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
