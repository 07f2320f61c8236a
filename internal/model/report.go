package model

import "time"

// Outcome is the terminal state of a fuzz-and-file run.
type Outcome string

const (
	// OutcomeSuccess means the campaign finished without a failure.
	OutcomeSuccess Outcome = "success"
	// OutcomeNotReproducible means the failure did not reproduce within the attempt budget.
	OutcomeNotReproducible Outcome = "not_reproducible"
	// OutcomeDuplicate means an open issue already tracks the defect.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeFiled means a new issue was created.
	OutcomeFiled Outcome = "filed"
	// OutcomeDryRun means the defect was confirmed but tracker calls were suppressed.
	OutcomeDryRun Outcome = "dry_run"
)

// FuzzResult describes how a fuzz-and-file run terminated.
type FuzzResult struct {
	Outcome          Outcome `yaml:"outcome"`
	Seed             int64   `yaml:"seed"`
	ProbeAttempts    int     `yaml:"probe_attempts,omitempty"`
	Verdict          string  `yaml:"verdict,omitempty"`
	TimedOut         bool    `yaml:"timed_out,omitempty"`
	ExceptionMessage string  `yaml:"exception_message,omitempty"`
	StackTrace       string  `yaml:"stack_trace,omitempty"`
	OriginalRepro    string  `yaml:"original_repro,omitempty"`
	Repro            string  `yaml:"repro,omitempty"`
	Reduced          bool    `yaml:"reduced"`
	ReductionKept    bool    `yaml:"reduction_kept"`
	DuplicateOf      int     `yaml:"duplicate_of,omitempty"`
	FiledIssue       int     `yaml:"filed_issue,omitempty"`
}

// SweepResult describes the effect of a housekeeping sweep.
type SweepResult struct {
	Retained    map[string]TrackedIssue `yaml:"retained"`
	Closed      []int                   `yaml:"closed,omitempty"`
	Labeled     []int                   `yaml:"labeled,omitempty"`
	Skipped     []int                   `yaml:"skipped,omitempty"`
	Unparseable []int                   `yaml:"unparseable,omitempty"`
}

// RunMode names the operating mode of a run.
type RunMode string

// Operating modes.
const (
	ModeSweep RunMode = "sweep"
	ModeFuzz  RunMode = "fuzz"
)

// RunReport is the persisted summary of one run.
type RunReport struct {
	RunID      string       `yaml:"run_id"`
	Mode       RunMode      `yaml:"mode"`
	DryRun     bool         `yaml:"dry_run"`
	StartedAt  time.Time    `yaml:"started_at"`
	FinishedAt time.Time    `yaml:"finished_at"`
	Sweep      *SweepResult `yaml:"sweep,omitempty"`
	Fuzz       *FuzzResult  `yaml:"fuzz,omitempty"`
}
