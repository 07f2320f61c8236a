// Package cmd provides the root command and CLI setup for crashtriage.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"crashtriage.dev/pkg/crashtriage/internal/adapter"
	"crashtriage.dev/pkg/crashtriage/internal/controller"
	"crashtriage.dev/pkg/crashtriage/internal/domain"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// workflow overrides the wired workflow when non-nil.
var workflow domain.Workflow

var shellFlag string
var noGitChecksFlag bool
var reportFlag string
var verboseFlag bool
var logFileFlag string
var maxPagesFlag int

const rootLongDescription = `crashtriage runs fuzzing campaigns against a SQL shell and keeps a GitHub
issue tracker in sync with the crashes it finds.

  sweep   re-verify open issues and close the ones that no longer reproduce
  fuzz    run one campaign and file a new issue for a confirmed, untracked defect

The tracker token is read from the environment variable named by
tracker.token_env (default FUZZEROFDUCKSKEY).`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "crashtriage",
		Short:         "Crash triage for fuzzing campaigns",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configReadErr != nil {
				return configReadErr
			}

			configureLogger(logFileFlag, verboseFlag)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&shellFlag, shellFlagName, viper.GetString(shellKey), "path to the shell binary under test")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(shellFlagName), shellKey)

	cmd.PersistentFlags().BoolVar(&noGitChecksFlag, noGitChecksFlagName, viper.GetBool(noGitChecksKey), "dry run: never search, create, close or label issues")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noGitChecksFlagName), noGitChecksKey)

	cmd.PersistentFlags().StringVar(&reportFlag, reportFlagName, viper.GetString(reportKey), "write a YAML run report to this path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(reportFlagName), reportKey)

	cmd.PersistentFlags().IntVar(&maxPagesFlag, maxPagesFlagName, viper.GetInt(trackerMaxPagesKey), "number of issue pages (100 issues each) to read")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(maxPagesFlagName), trackerMaxPagesKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file path (default from log.filename)")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// resolveWorkflow wires the adapters for cfg. A nil cfg yields a workflow
// that can only display saved reports.
func resolveWorkflow(cmd *cobra.Command, cfg *m.RunConfig, withTracker bool) domain.Workflow {
	if workflow != nil {
		return workflow
	}

	ui := controller.NewSimpleUI(cmd)
	store := adapter.NewReportStore()

	if cfg == nil {
		return domain.NewWorkflow(store, ui, nil, nil)
	}

	var tracker adapter.TrackerAdapter
	if withTracker {
		tracker = adapter.NewGitHubTrackerAdapter(cmd.Context(), cfg.Tracker)
	}

	orchestrator := domain.NewOrchestrator(
		adapter.NewShellRunnerAdapter(cfg.Campaign.Shell),
		tracker,
		adapter.NewLocalCampaignLogAdapter(),
		domain.NewStatementReducer(cfg.Probe.ReduceBudget),
		cfg.Probe.Timeout,
	)

	return domain.NewWorkflow(store, ui, orchestrator, tracker)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}
