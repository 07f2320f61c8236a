package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"crashtriage.dev/pkg/crashtriage/internal/adapter"
	"crashtriage.dev/pkg/crashtriage/internal/domain"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

const (
	configVersionKey     = "version"
	currentConfigVersion = 1

	configBaseName   = "crashtriage"
	configFileName   = configBaseName + ".yaml"
	configFolderPath = "."

	shellFlagName          = "shell"
	fuzzerFlagName         = "fuzzer"
	dbFlagName             = "db"
	seedFlagName           = "seed"
	maxQueriesFlagName     = "max-queries"
	maxQueryLengthFlagName = "max-query-length"
	verificationFlagName   = "enable-verification"
	noGitChecksFlagName    = "no-git-checks"
	reportFlagName         = "report"
	verboseFlagName        = "verbose"
	logFileFlagName        = "log-file"
	maxPagesFlagName       = "max-pages"

	shellKey           = "target.shell"
	fuzzerKey          = "campaign.fuzzer"
	datasetKey         = "campaign.dataset"
	seedKey            = "campaign.seed"
	maxQueriesKey      = "campaign.max_queries"
	maxQueryLengthKey  = "campaign.max_query_length"
	verificationKey    = "campaign.enable_verification"
	lastLogKey         = "campaign.last_log"
	completeLogKey     = "campaign.complete_log"
	commitHashEnvKey   = "campaign.commit_hash_env"
	trackerAPIURLKey   = "tracker.api_url"
	trackerOwnerKey    = "tracker.owner"
	trackerRepoKey     = "tracker.repo"
	trackerTokenEnvKey = "tracker.token_env"
	trackerMaxPagesKey = "tracker.max_pages"
	trackerCommitURL   = "tracker.commit_url"
	probeAttemptsKey   = "probe.max_attempts"
	probeTimeoutKey    = "probe.timeout"
	reduceBudgetKey    = "probe.reduce_budget"
	noGitChecksKey     = "run.no_git_checks"
	reportKey          = "run.report"

	defaultSeed           = -1
	defaultMaxQueries     = 1000
	defaultMaxQueryLength = 50000
	defaultLastLog        = "sqlsmith.log"
	defaultCompleteLog    = "sqlsmith.complete.log"
	defaultCommitHashEnv  = "DUCKDB_HASH"
	defaultAPIURL         = "https://api.github.com"
	defaultOwner          = "duckdb"
	defaultRepo           = "duckdb-fuzzer"
	defaultTokenEnv       = "FUZZEROFDUCKSKEY"

	// maxRandomSeed is the exclusive upper bound for generated seeds.
	maxRandomSeed = 1 << 30

	envPrefix = "CRASHTRIAGE"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".crashtriage.log"
	defaultLogLevel      = int(slog.LevelInfo)
	defaultLogVerbose    = false
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

var globalLogger *slog.Logger

var validate = validator.New()

// configReadErr holds a failure to parse an existing config file.
var configReadErr error

func init() {
	initConfig()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return
		}

		configReadErr = fmt.Errorf("read %s: %w", configFileName, err)
	}
}

// initConfig sets the config file location, env binding and defaults.
func initConfig() {
	viper.SetConfigName(configBaseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configFolderPath)
	viper.SetConfigFile(filepath.Join(configFolderPath, configFileName))
	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	setConfigDefaults()
}

func setConfigDefaults() {
	viper.SetDefault(configVersionKey, currentConfigVersion)

	viper.SetDefault(shellKey, "")
	viper.SetDefault(fuzzerKey, "")
	viper.SetDefault(datasetKey, "")
	viper.SetDefault(seedKey, defaultSeed)
	viper.SetDefault(maxQueriesKey, defaultMaxQueries)
	viper.SetDefault(maxQueryLengthKey, defaultMaxQueryLength)
	viper.SetDefault(verificationKey, false)
	viper.SetDefault(lastLogKey, defaultLastLog)
	viper.SetDefault(completeLogKey, defaultCompleteLog)
	viper.SetDefault(commitHashEnvKey, defaultCommitHashEnv)

	viper.SetDefault(trackerAPIURLKey, defaultAPIURL)
	viper.SetDefault(trackerOwnerKey, defaultOwner)
	viper.SetDefault(trackerRepoKey, defaultRepo)
	viper.SetDefault(trackerTokenEnvKey, defaultTokenEnv)
	viper.SetDefault(trackerMaxPagesKey, domain.DefaultMaxPages)
	viper.SetDefault(trackerCommitURL, domain.DefaultCommitURL)

	viper.SetDefault(probeAttemptsKey, domain.DefaultMaxAttempts)
	viper.SetDefault(probeTimeoutKey, domain.DefaultProbeTimeout.String())
	viper.SetDefault(reduceBudgetKey, domain.DefaultReduceBudget)

	viper.SetDefault(noGitChecksKey, false)
	viper.SetDefault(reportKey, "")

	// Logging defaults (used by config/env and as fallbacks for flags).
	viper.SetDefault(logFilenameKey, defaultLogFilename)
	viper.SetDefault(logLevelKey, defaultLogLevel)
	viper.SetDefault(logVerboseKey, defaultLogVerbose)
	viper.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	viper.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	viper.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	viper.SetDefault(logCompressKey, defaultLogCompress)
}

// configOptions selects which parts of the run config must be complete.
type configOptions struct {
	// requireToken fails when the tracker token variable is unset.
	requireToken bool
	// requireCampaign fails when no fuzzer or dataset was selected.
	requireCampaign bool
}

// buildRunConfig turns the viper state into a validated RunConfig.
func buildRunConfig(opts configOptions) (m.RunConfig, error) {
	seed := viper.GetInt64(seedKey)
	if seed < 0 {
		seed = rand.Int64N(maxRandomSeed)
	}

	timeout, err := time.ParseDuration(viper.GetString(probeTimeoutKey))
	if err != nil {
		return m.RunConfig{}, fmt.Errorf("invalid %s: %w", probeTimeoutKey, err)
	}

	cfg := m.RunConfig{
		Campaign: m.CampaignConfig{
			Shell:           viper.GetString(shellKey),
			Fuzzer:          m.Fuzzer(viper.GetString(fuzzerKey)),
			Dataset:         m.Dataset(viper.GetString(datasetKey)),
			Seed:            seed,
			MaxQueries:      viper.GetInt(maxQueriesKey),
			MaxQueryLength:  viper.GetInt(maxQueryLengthKey),
			Verification:    viper.GetBool(verificationKey),
			LastLogPath:     viper.GetString(lastLogKey),
			CompleteLogPath: viper.GetString(completeLogKey),
			CommitHash:      os.Getenv(viper.GetString(commitHashEnvKey)),
		},
		Tracker: trackerConfigFromViper(),
		Probe: m.ProbeConfig{
			MaxAttempts:  viper.GetInt(probeAttemptsKey),
			Timeout:      timeout,
			ReduceBudget: viper.GetInt(reduceBudgetKey),
		},
		DryRun: viper.GetBool(noGitChecksKey),
		Report: m.Path(viper.GetString(reportKey)),
	}

	if opts.requireToken {
		token, err := adapter.TokenFromEnv(viper.GetString(trackerTokenEnvKey))
		if err != nil {
			return m.RunConfig{}, err
		}

		cfg.Tracker.Token = token
	}

	if opts.requireCampaign {
		if err := validateCampaignSelection(cfg.Campaign); err != nil {
			return m.RunConfig{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return m.RunConfig{}, err
	}

	return cfg, nil
}

// buildTrackerConfig returns the validated tracker section with its token.
func buildTrackerConfig() (m.TrackerConfig, error) {
	cfg := trackerConfigFromViper()

	token, err := adapter.TokenFromEnv(viper.GetString(trackerTokenEnvKey))
	if err != nil {
		return m.TrackerConfig{}, err
	}

	cfg.Token = token

	if err := validateConfig(cfg); err != nil {
		return m.TrackerConfig{}, err
	}

	return cfg, nil
}

func trackerConfigFromViper() m.TrackerConfig {
	return m.TrackerConfig{
		APIURL:    viper.GetString(trackerAPIURLKey),
		Owner:     viper.GetString(trackerOwnerKey),
		Repo:      viper.GetString(trackerRepoKey),
		MaxPages:  viper.GetInt(trackerMaxPagesKey),
		CommitURL: viper.GetString(trackerCommitURL),
	}
}

func validateCampaignSelection(campaign m.CampaignConfig) error {
	if campaign.Fuzzer == "" {
		return fmt.Errorf("no fuzzer selected, expected --%s=sqlsmith, duckfuzz or duckfuzz_functions", fuzzerFlagName)
	}

	if campaign.Dataset == "" {
		return fmt.Errorf("no database selected, expected --%s=alltypes, tpch or emptyalltypes", dbFlagName)
	}

	return nil
}

func validateConfig(cfg any) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return fmt.Errorf("invalid configuration: %s failed on '%s' validation", fe.Namespace(), fe.Tag())
	}

	return fmt.Errorf("invalid configuration: %w", err)
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the global slog logger at a rotating log file.
// verbose forces the Debug level.
func configureLogger(logPath string, verbose bool) {
	if strings.TrimSpace(logPath) == "" {
		logPath = viper.GetString(logFilenameKey)
	}

	if strings.TrimSpace(logPath) == "" {
		logPath = defaultLogFilename
	}

	var logLevel slog.Level
	if verbose || viper.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	} else {
		logLevel = parseSlogLevel(viper.GetString(logLevelKey), slog.LevelInfo)
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    viper.GetInt(logMaxSizeKey),
		MaxBackups: viper.GetInt(logMaxBackupsKey),
		MaxAge:     viper.GetInt(logMaxAgeKey),
		Compress:   viper.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})

	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)
}
