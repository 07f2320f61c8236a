package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"crashtriage.dev/pkg/crashtriage/internal/domain"
)

var fuzzerFlag string
var dbFlag string
var seedFlag int64
var maxQueriesFlag int
var maxQueryLengthFlag int
var verificationFlag bool

// fuzzCmd represents the fuzz command.
var fuzzCmd = newFuzzCmd()

func newFuzzCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Run one fuzzing campaign and file confirmed defects",
		Long: `Run a single fuzzing campaign inside the shell. When the campaign fails,
confirm the failure, reduce the statements that caused it, and file a new
issue unless an open issue already tracks the same error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun := viper.GetBool(noGitChecksKey)

			cfg, err := buildRunConfig(configOptions{requireToken: !dryRun, requireCampaign: true})
			if err != nil {
				return err
			}

			return resolveWorkflow(cmd, &cfg, !cfg.DryRun).Fuzz(cmd.Context(), domain.RunFuzzArgs{
				FuzzArgs: domain.FuzzArgs{
					Campaign:    cfg.Campaign,
					MaxAttempts: cfg.Probe.MaxAttempts,
					CommitURL:   cfg.Tracker.CommitURL,
					DryRun:      cfg.DryRun,
				},
				Report: cfg.Report,
			})
		},
	}

	configureFuzzFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(fuzzCmd)
}

func configureFuzzFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fuzzerFlag, fuzzerFlagName, viper.GetString(fuzzerKey), "fuzzer to run: sqlsmith, duckfuzz or duckfuzz_functions")
	bindFlagToConfig(cmd.Flags().Lookup(fuzzerFlagName), fuzzerKey)

	cmd.Flags().StringVar(&dbFlag, dbFlagName, viper.GetString(datasetKey), "database to fuzz: alltypes, tpch or emptyalltypes")
	bindFlagToConfig(cmd.Flags().Lookup(dbFlagName), datasetKey)

	cmd.Flags().Int64Var(&seedFlag, seedFlagName, viper.GetInt64(seedKey), "campaign seed (negative picks a random seed)")
	bindFlagToConfig(cmd.Flags().Lookup(seedFlagName), seedKey)

	cmd.Flags().IntVar(&maxQueriesFlag, maxQueriesFlagName, viper.GetInt(maxQueriesKey), "maximum number of generated queries")
	bindFlagToConfig(cmd.Flags().Lookup(maxQueriesFlagName), maxQueriesKey)

	cmd.Flags().IntVar(&maxQueryLengthFlag, maxQueryLengthFlagName, viper.GetInt(maxQueryLengthKey), "maximum length of a generated query")
	bindFlagToConfig(cmd.Flags().Lookup(maxQueryLengthFlagName), maxQueryLengthKey)

	cmd.Flags().BoolVar(&verificationFlag, verificationFlagName, viper.GetBool(verificationKey), "enable statement verification in duckfuzz")
	bindFlagToConfig(cmd.Flags().Lookup(verificationFlagName), verificationKey)
}
