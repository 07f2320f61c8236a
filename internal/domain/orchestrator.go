package domain

import (
	"context"
	"fmt"
	"time"

	"crashtriage.dev/pkg/crashtriage/internal/adapter"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// DefaultMaxPages bounds how many issue pages a sweep reads.
const DefaultMaxPages = 9

// SweepArgs configures a housekeeping sweep.
type SweepArgs struct {
	MaxPages    int
	MaxAttempts int
	DryRun      bool
}

// FuzzArgs configures a fuzz-and-file run.
type FuzzArgs struct {
	Campaign    m.CampaignConfig
	MaxAttempts int
	CommitURL   string
	DryRun      bool
}

// Orchestrator sequences classification, probing, deduplication, reduction
// and filing for both operating modes.
type Orchestrator interface {
	// Sweep re-verifies open issues, closes the ones that no longer
	// reproduce, and returns the retained issues keyed by title.
	Sweep(ctx context.Context, args SweepArgs) (m.SweepResult, error)
	// FuzzAndFile runs a campaign and files a new issue for a confirmed,
	// untracked defect.
	FuzzAndFile(ctx context.Context, args FuzzArgs) (m.FuzzResult, error)
}

type orchestrator struct {
	runner       adapter.TargetRunnerAdapter
	tracker      adapter.TrackerAdapter
	logs         adapter.CampaignLogAdapter
	prober       Prober
	dedup        DedupIndex
	reducer      Reducer
	probeTimeout time.Duration
}

// NewOrchestrator wires the pipeline. tracker may be nil when every run is a
// dry run of FuzzAndFile.
func NewOrchestrator(
	runner adapter.TargetRunnerAdapter,
	tracker adapter.TrackerAdapter,
	logs adapter.CampaignLogAdapter,
	reducer Reducer,
	probeTimeout time.Duration,
) Orchestrator {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}

	o := &orchestrator{
		runner:       runner,
		tracker:      tracker,
		logs:         logs,
		prober:       NewProber(runner, probeTimeout),
		reducer:      reducer,
		probeTimeout: probeTimeout,
	}

	if tracker != nil {
		o.dedup = NewDedupIndex(tracker)
	}

	return o
}

// ListOpenIssues pages through the tracker, stopping after maxPages pages or
// at the first empty page.
func ListOpenIssues(ctx context.Context, tracker adapter.TrackerAdapter, maxPages int) ([]m.TrackedIssue, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var issues []m.TrackedIssue

	for page := 1; page <= maxPages; page++ {
		batch, err := tracker.ListOpenIssues(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("list open issues page %d: %w", page, err)
		}

		if len(batch) == 0 {
			break
		}

		issues = append(issues, batch...)
	}

	return issues, nil
}

func (o *orchestrator) Sweep(ctx context.Context, args SweepArgs) (m.SweepResult, error) {
	if o.tracker == nil {
		return m.SweepResult{}, fmt.Errorf("sweep requires a tracker")
	}

	log := LoggerFromContext(ctx)

	issues, err := ListOpenIssues(ctx, o.tracker, args.MaxPages)
	if err != nil {
		return m.SweepResult{}, err
	}

	log.Info("Sweeping open issues", "count", len(issues), "dryRun", args.DryRun)

	result := m.SweepResult{Retained: make(map[string]m.TrackedIssue, len(issues))}

	for _, issue := range issues {
		if issue.HasAnyLabel(m.LabelAFL, m.LabelTimeout) {
			log.Info("Skipping issue with manual-judgement label", "issue", issue.Number)
			result.Skipped = append(result.Skipped, issue.Number)
			result.Retained[issue.Title] = issue

			continue
		}

		decoded := DecodeIssueBody(issue.Body)
		if !decoded.Parsed() {
			log.Warn("Failed to extract repro from issue body", "issue", issue.Number)
			result.Unparseable = append(result.Unparseable, issue.Number)
			result.Retained[issue.Title] = issue

			continue
		}

		probe, err := o.prober.Probe(ctx, decoded.SQL+";", args.MaxAttempts)
		if err != nil {
			return m.SweepResult{}, fmt.Errorf("probe issue %d: %w", issue.Number, err)
		}

		if probe.Reproduced {
			if probe.Verdict == m.VerdictTimeout {
				if err := o.labelTimeout(ctx, issue.Number, args.DryRun); err != nil {
					return m.SweepResult{}, err
				}

				result.Labeled = append(result.Labeled, issue.Number)
			}

			log.Info("Issue reproduced", "issue", issue.Number, "attempts", probe.Attempts, "verdict", probe.Verdict)
			result.Retained[issue.Title] = issue

			continue
		}

		log.Info("Issue no longer reproduces", "issue", issue.Number, "attempts", probe.Attempts)

		if !args.DryRun {
			if err := o.tracker.CloseIssue(ctx, issue.Number); err != nil {
				return m.SweepResult{}, fmt.Errorf("close issue %d: %w", issue.Number, err)
			}
		}

		result.Closed = append(result.Closed, issue.Number)
	}

	return result, nil
}

func (o *orchestrator) labelTimeout(ctx context.Context, number int, dryRun bool) error {
	if dryRun {
		return nil
	}

	if err := o.tracker.LabelIssue(ctx, number, m.LabelTimeout); err != nil {
		return fmt.Errorf("label issue %d: %w", number, err)
	}

	return nil
}

func (o *orchestrator) FuzzAndFile(ctx context.Context, args FuzzArgs) (m.FuzzResult, error) {
	if !args.DryRun && o.tracker == nil {
		return m.FuzzResult{}, fmt.Errorf("filing requires a tracker")
	}

	log := LoggerFromContext(ctx)
	campaign := args.Campaign
	setup := campaign.Dataset.SetupStatement()
	result := m.FuzzResult{Seed: campaign.Seed}

	// RUN_CAMPAIGN
	log.Info("Running campaign", "fuzzer", campaign.Fuzzer, "dataset", campaign.Dataset, "seed", campaign.Seed)

	run, err := o.runner.Run(ctx, setup+"\n"+campaign.Fuzzer.InvocationStatement(campaign.Params()), 0)
	if err != nil {
		return m.FuzzResult{}, fmt.Errorf("run campaign: %w", err)
	}

	if run.ExitCode == 0 && !run.TimedOut {
		result.Outcome = m.OutcomeSuccess
		return result, nil
	}

	log.Info("Campaign failed", "exitCode", run.ExitCode, "stderr", run.Stderr)

	// CONFIRM
	statements, err := o.loadStatements(campaign)
	if err != nil {
		return m.FuzzResult{}, err
	}

	original := setup + "\n" + JoinStatements(statements)

	probe, err := o.prober.Probe(ctx, original, args.MaxAttempts)
	if err != nil {
		return m.FuzzResult{}, fmt.Errorf("confirm failure: %w", err)
	}

	result.ProbeAttempts = probe.Attempts
	result.OriginalRepro = original
	result.Repro = original

	if !probe.Reproduced {
		log.Info("Failed to reproduce the failure", "attempts", probe.Attempts)
		result.Outcome = m.OutcomeNotReproducible

		return result, nil
	}

	result.Verdict = probe.Verdict.String()
	result.TimedOut = probe.Verdict == m.VerdictTimeout

	// EXTRACT
	message, trace := ExtractFailure(probe.Last, probe.Verdict)
	result.ExceptionMessage = message
	result.StackTrace = trace

	// DEDUP_1
	if done, err := o.checkDuplicate(ctx, &result, args.DryRun); done || err != nil {
		return result, err
	}

	// REDUCE
	reduced, err := o.reducer.Reduce(ctx, statements, o.sameFailureOracle(setup, message))
	if err != nil {
		return m.FuzzResult{}, fmt.Errorf("reduce statements: %w", err)
	}

	result.Reduced = len(reduced) < len(statements)

	// VERIFY_REDUCED
	if result.Reduced {
		if err := o.verifyReduced(ctx, &result, setup+"\n"+JoinStatements(reduced)); err != nil {
			return m.FuzzResult{}, err
		}
	}

	// DEDUP_2
	if done, err := o.checkDuplicate(ctx, &result, args.DryRun); done || err != nil {
		return result, err
	}

	if args.DryRun {
		result.Outcome = m.OutcomeDryRun
		return result, nil
	}

	// FILE
	filed, err := o.file(ctx, result, campaign, args.CommitURL)
	if err != nil {
		return m.FuzzResult{}, err
	}

	result.Outcome = m.OutcomeFiled
	result.FiledIssue = filed

	return result, nil
}

// loadStatements reads the campaign log, falling back to the last statement
// when the complete log holds nothing.
func (o *orchestrator) loadStatements(campaign m.CampaignConfig) ([]string, error) {
	lastStatement, err := o.logs.ReadLastStatement(m.Path(campaign.LastLogPath))
	if err != nil {
		return nil, err
	}

	completeLog, err := o.logs.ReadCompleteLog(m.Path(campaign.CompleteLogPath))
	if err != nil {
		return nil, err
	}

	statements := SplitStatements(completeLog)
	if len(statements) == 0 {
		statements = SplitStatements(lastStatement)
	}

	return statements, nil
}

// checkDuplicate reports done when an open issue already tracks result.
func (o *orchestrator) checkDuplicate(ctx context.Context, result *m.FuzzResult, dryRun bool) (bool, error) {
	if dryRun {
		return false, nil
	}

	dup, err := o.dedup.FindDuplicate(ctx, NewDedupKey(result.ExceptionMessage))
	if err != nil {
		return false, err
	}

	if dup == nil {
		return false, nil
	}

	LoggerFromContext(ctx).Info("Skip filing duplicate issue", "issue", dup.Number)

	result.Outcome = m.OutcomeDuplicate
	result.DuplicateOf = dup.Number

	return true, nil
}

// verifyReduced re-runs the reduced repro and adopts it only if it still fails.
// Runner failures keep the original, except cancellation which is returned.
func (o *orchestrator) verifyReduced(ctx context.Context, result *m.FuzzResult, reduced string) error {
	log := LoggerFromContext(ctx)

	run, err := o.runner.Run(ctx, reduced, o.probeTimeout)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("verify reduced statements: %w", ctxErr)
		}

		log.Warn("Failed to run reduced statements, keeping original", "error", err)

		return nil
	}

	verdict := Classify(run)
	if !verdict.IsDefect() {
		log.Info("Reduced statements no longer fail, keeping original")
		return nil
	}

	result.Repro = reduced
	result.ExceptionMessage, result.StackTrace = ExtractFailure(run, verdict)
	result.ReductionKept = true

	return nil
}

// sameFailureOracle accepts candidates that still fail with a defect verdict
// and the confirmed message, ignoring run-dependent details.
func (o *orchestrator) sameFailureOracle(setup, message string) Oracle {
	return func(ctx context.Context, statements []string) (bool, error) {
		run, err := o.runner.Run(ctx, setup+"\n"+JoinStatements(statements), o.probeTimeout)
		if err != nil {
			return false, err
		}

		verdict := Classify(run)
		if !verdict.IsDefect() {
			return false, nil
		}

		candidate, _ := ExtractFailure(run, verdict)

		return SameFailure(candidate, message), nil
	}
}

func (o *orchestrator) file(ctx context.Context, result m.FuzzResult, campaign m.CampaignConfig, commitURL string) (int, error) {
	if commitURL == "" {
		commitURL = DefaultCommitURL
	}

	key := NewDedupKey(result.ExceptionMessage)
	record := m.ReportRecord{
		Title:            key.String(),
		SQLRepro:         result.Repro,
		ExceptionMessage: result.ExceptionMessage,
		StackTrace:       result.StackTrace,
		FuzzerName:       campaign.Fuzzer.PrintableName(),
		Seed:             campaign.Seed,
		CommitHash:       campaign.CommitHash,
	}

	issue, err := o.tracker.CreateIssue(ctx, record.Title, TruncateBody(EncodeIssueBody(record, commitURL)))
	if err != nil {
		return 0, fmt.Errorf("file issue: %w", err)
	}

	LoggerFromContext(ctx).Info("Filed new issue", "issue", issue.Number, "title", record.Title)

	return issue.Number, nil
}
