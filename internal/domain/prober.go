package domain

import (
	"context"
	"fmt"
	"time"

	"crashtriage.dev/pkg/crashtriage/internal/adapter"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// Probe defaults.
const (
	DefaultMaxAttempts  = 30
	DefaultProbeTimeout = 300 * time.Second
)

// Prober re-executes a candidate input to approximate reproducibility.
// Many defects depend on internal nondeterminism, so a single clean run
// does not prove a fix.
type Prober interface {
	// Probe runs statements up to maxAttempts times and stops at the first
	// defect verdict.
	Probe(ctx context.Context, statements string, maxAttempts int) (m.ProbeResult, error)
}

type prober struct {
	runner  adapter.TargetRunnerAdapter
	timeout time.Duration
}

// NewProber constructs a Prober whose attempts are bounded by timeout.
func NewProber(runner adapter.TargetRunnerAdapter, timeout time.Duration) Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	return &prober{runner: runner, timeout: timeout}
}

func (p *prober) Probe(ctx context.Context, statements string, maxAttempts int) (m.ProbeResult, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var result m.ProbeResult

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		execution, err := p.runner.Run(ctx, statements, p.timeout)
		if err != nil {
			return m.ProbeResult{}, fmt.Errorf("probe attempt %d: %w", attempt, err)
		}

		verdict := Classify(execution)
		result = m.ProbeResult{
			Attempts: attempt,
			Verdict:  verdict,
			Last:     execution,
		}

		if verdict.IsDefect() {
			result.Reproduced = true
			LoggerFromContext(ctx).Debug("Probe reproduced", "attempt", attempt, "verdict", verdict)

			return result, nil
		}
	}

	LoggerFromContext(ctx).Debug("Probe exhausted attempts", "attempts", maxAttempts)

	return result, nil
}
