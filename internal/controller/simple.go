package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// maxTitleColumn bounds the title column width in tables.
const maxTitleColumn = 80

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// DisplayRunStart prints a banner for the run.
func (s *SimpleUI) DisplayRunStart(ctx context.Context, runID string, mode m.RunMode, dryRun bool) {
	if err := ctx.Err(); err != nil {
		return
	}

	suffix := ""
	if dryRun {
		suffix = " (dry run, tracker mutations disabled)"
	}

	s.printf("Starting %s run %s%s\n", mode, runID, suffix)
}

// DisplaySweepResult prints the retained issues and the actions taken.
func (s *SimpleUI) DisplaySweepResult(ctx context.Context, result m.SweepResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	rows := make([]sweepRow, 0, len(result.Retained)+len(result.Closed))
	status := map[int]string{}

	for _, n := range result.Skipped {
		status[n] = "skipped (label)"
	}

	for _, n := range result.Unparseable {
		status[n] = "kept (unparseable)"
	}

	for _, n := range result.Labeled {
		status[n] = "kept (timeout)"
	}

	for _, issue := range result.Retained {
		action, ok := status[issue.Number]
		if !ok {
			action = "kept (reproduced)"
		}

		rows = append(rows, sweepRow{number: issue.Number, title: issue.Title, action: action})
	}

	for _, n := range result.Closed {
		rows = append(rows, sweepRow{number: n, action: "closed"})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].number < rows[j].number
	})

	s.printf("\n%s", renderSweepTable(rows, len(result.Retained), len(result.Closed)))
}

type sweepRow struct {
	number int
	title  string
	action string
}

func renderSweepTable(rows []sweepRow, retained, closed int) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Issue", "Title", "Action"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, row := range rows {
		table.Append([]string{fmt.Sprintf("#%d", row.number), shorten(row.title), row.action})
	}

	table.SetFooter([]string{
		"",
		fmt.Sprintf("Open %d", retained),
		fmt.Sprintf("Closed %d", closed),
	})

	table.Render()

	return tableBuffer.String()
}

// DisplayFuzzResult prints the terminal state and, when reduced, a diff of the repro.
func (s *SimpleUI) DisplayFuzzResult(ctx context.Context, result m.FuzzResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Outcome: %s (seed %d)\n", result.Outcome, result.Seed)

	if result.Outcome == m.OutcomeSuccess {
		return
	}

	if result.ProbeAttempts > 0 {
		s.printf("Probe attempts: %d\n", result.ProbeAttempts)
	}

	if result.ExceptionMessage != "" {
		s.printf("Exception: %s\n", result.ExceptionMessage)
	}

	if result.TimedOut {
		s.printf("The campaign reproduced as a timeout\n")
	}

	switch result.Outcome {
	case m.OutcomeDuplicate:
		s.printf("Already tracked as #%d\n", result.DuplicateOf)
	case m.OutcomeFiled:
		s.printf("Filed as #%d\n", result.FiledIssue)
	}

	if result.ReductionKept && result.Repro != result.OriginalRepro {
		s.printf("%s", reproDiff(result.OriginalRepro, result.Repro))
	}
}

func reproDiff(original, reduced string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(reduced),
		FromFile: "original",
		ToFile:   "reduced",
		Context:  1,
	}

	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}

	return text
}

// DisplayIssues prints a table of tracked issues.
func (s *SimpleUI) DisplayIssues(ctx context.Context, issues []m.TrackedIssue) {
	if err := ctx.Err(); err != nil {
		return
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Issue", "Title", "Labels"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)

	for _, issue := range issues {
		table.Append([]string{fmt.Sprintf("#%d", issue.Number), shorten(issue.Title), strings.Join(issue.Labels, ",")})
	}

	table.SetFooter([]string{"", fmt.Sprintf("Total %d", len(issues)), ""})
	table.Render()

	s.printf("\n%s", tableBuffer.String())
}

// DisplayReport prints a previously saved run report.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.RunReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Run %s (%s) finished %s\n", report.RunID, report.Mode, report.FinishedAt.Format("2006-01-02 15:04:05"))

	if report.Sweep != nil {
		s.DisplaySweepResult(ctx, *report.Sweep)
	}

	if report.Fuzz != nil {
		s.DisplayFuzzResult(ctx, *report.Fuzz)
	}
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

func shorten(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleColumn {
		return title
	}

	return string(runes[:maxTitleColumn-3]) + "..."
}
