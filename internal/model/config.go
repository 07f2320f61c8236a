package model

import "time"

// Path represents a file system path.
type Path string

// RunConfig is the validated configuration for a single invocation.
type RunConfig struct {
	Campaign CampaignConfig `validate:"required"`
	Tracker  TrackerConfig  `validate:"required"`
	Probe    ProbeConfig    `validate:"required"`
	DryRun   bool
	Report   Path
}

// CampaignConfig describes the target binary and the fuzzing campaign.
type CampaignConfig struct {
	Shell           string  `validate:"required"`
	Fuzzer          Fuzzer  `validate:"omitempty,oneof=sqlsmith duckfuzz duckfuzz_functions"`
	Dataset         Dataset `validate:"omitempty,oneof=alltypes tpch emptyalltypes"`
	Seed            int64   `validate:"gte=0"`
	MaxQueries      int     `validate:"gt=0"`
	MaxQueryLength  int     `validate:"gt=0"`
	Verification    bool
	LastLogPath     string `validate:"required"`
	CompleteLogPath string `validate:"required"`
	CommitHash      string
}

// Params returns the invocation parameters derived from the config.
func (c CampaignConfig) Params() CampaignParams {
	return CampaignParams{
		MaxQueries:      c.MaxQueries,
		MaxQueryLength:  c.MaxQueryLength,
		Seed:            c.Seed,
		Verification:    c.Verification,
		LastLogPath:     c.LastLogPath,
		CompleteLogPath: c.CompleteLogPath,
	}
}

// TrackerConfig describes the issue tracker repository and credentials.
type TrackerConfig struct {
	APIURL    string `validate:"required,url"`
	Owner     string `validate:"required"`
	Repo      string `validate:"required"`
	Token     string `validate:"omitempty,len=40"`
	MaxPages  int    `validate:"gt=0"`
	CommitURL string `validate:"required"`
}

// ProbeConfig bounds reproducibility probing and reduction.
type ProbeConfig struct {
	MaxAttempts  int           `validate:"gt=0"`
	Timeout      time.Duration `validate:"gt=0"`
	ReduceBudget int           `validate:"gte=0"`
}
