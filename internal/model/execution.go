// Package model defines the data structures shared by the crash-triage pipeline.
package model

// ExecutionResult is the captured outcome of one target invocation.
type ExecutionResult struct {
	Stdout   string
	Stderr   string
	ExitCode int  // negative when the process was killed by a signal
	TimedOut bool // stdout/stderr are empty when set
}

// Verdict is the classification of an ExecutionResult.
type Verdict int

const (
	// VerdictClean means no defect was observed (success or a benign error).
	VerdictClean Verdict = iota
	// VerdictTimeout means the bounded wait expired.
	VerdictTimeout
	// VerdictCrashSignal means the target died from a fatal signal.
	VerdictCrashSignal
	// VerdictInternalError means stderr carried a known defect signature.
	VerdictInternalError
)

// IsDefect reports whether the verdict counts as a reproduction.
func (v Verdict) IsDefect() bool {
	return v != VerdictClean
}

func (v Verdict) String() string {
	switch v {
	case VerdictClean:
		return "clean"
	case VerdictTimeout:
		return "timeout"
	case VerdictCrashSignal:
		return "crash_signal"
	case VerdictInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// ProbeResult summarizes a bounded reproducibility probe.
type ProbeResult struct {
	Reproduced bool
	Attempts   int
	Verdict    Verdict
	Last       ExecutionResult // result of the final attempt
}
