package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

func newTestUI() (*SimpleUI, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	return NewSimpleUI(cmd), out
}

func TestSimpleUI_DisplaySweepResult(t *testing.T) {
	ui, out := newTestUI()

	ui.DisplaySweepResult(context.Background(), m.SweepResult{
		Retained: map[string]m.TrackedIssue{
			"INTERNAL Error: a": {Number: 2, Title: "INTERNAL Error: a"},
			"afl":               {Number: 1, Title: "afl"},
		},
		Skipped: []int{1},
		Closed:  []int{3},
	})

	text := out.String()
	assert.Contains(t, text, "#1")
	assert.Contains(t, text, "skipped (label)")
	assert.Contains(t, text, "kept (reproduced)")
	assert.Contains(t, text, "closed")
	assert.Less(t, strings.Index(text, "#1"), strings.Index(text, "#3"))
}

func TestSimpleUI_DisplayFuzzResult_ShowsDiff(t *testing.T) {
	ui, out := newTestUI()

	ui.DisplayFuzzResult(context.Background(), m.FuzzResult{
		Outcome:          m.OutcomeFiled,
		Seed:             3,
		ProbeAttempts:    2,
		ExceptionMessage: "INTERNAL Error: x",
		OriginalRepro:    "setup;\nselect 1;\nselect 2;",
		Repro:            "setup;\nselect 2;",
		Reduced:          true,
		ReductionKept:    true,
		FiledIssue:       17,
	})

	text := out.String()
	assert.Contains(t, text, "Outcome: filed (seed 3)")
	assert.Contains(t, text, "Filed as #17")
	assert.Contains(t, text, "--- original")
	assert.Contains(t, text, "+++ reduced")
	assert.Contains(t, text, "-select 1;")
}

func TestSimpleUI_DisplayFuzzResult_Success(t *testing.T) {
	ui, out := newTestUI()

	ui.DisplayFuzzResult(context.Background(), m.FuzzResult{Outcome: m.OutcomeSuccess, Seed: 1})

	assert.Equal(t, "Outcome: success (seed 1)\n", out.String())
}

func TestSimpleUI_DisplayIssues(t *testing.T) {
	ui, out := newTestUI()

	ui.DisplayIssues(context.Background(), []m.TrackedIssue{
		{Number: 5, Title: strings.Repeat("t", 120), Labels: []string{"AFL", "timeout"}},
	})

	text := out.String()
	assert.Contains(t, text, "#5")
	assert.Contains(t, text, "AFL,timeout")
	assert.Contains(t, text, strings.Repeat("t", maxTitleColumn-3)+"...")
	assert.Contains(t, text, "TOTAL 1")
}

func TestSimpleUI_DisplayReport(t *testing.T) {
	ui, out := newTestUI()

	ui.DisplayReport(context.Background(), m.RunReport{
		RunID:      "abc",
		Mode:       m.ModeFuzz,
		FinishedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Fuzz:       &m.FuzzResult{Outcome: m.OutcomeDuplicate, DuplicateOf: 8, ProbeAttempts: 1},
	})

	text := out.String()
	assert.Contains(t, text, "Run abc (fuzz) finished 2024-01-02 03:04:05")
	assert.Contains(t, text, "Already tracked as #8")
}

func TestSimpleUI_CancelledContextPrintsNothing(t *testing.T) {
	ui, out := newTestUI()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui.DisplayRunStart(ctx, "id", m.ModeSweep, false)
	ui.DisplayIssues(ctx, nil)

	assert.Empty(t, out.String())
}
