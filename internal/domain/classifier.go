package domain

import (
	"fmt"
	"regexp"
	"strings"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// internalErrorSignatures are stderr substrings that mark a genuine defect
// rather than an expected rejection of the statement.
var internalErrorSignatures = []string{
	"differs from original result",
	"INTERNAL",
	"signed integer overflow",
	"Sanitizer",
	"sanitizer",
	"runtime error",
}

var (
	demangledFrame = regexp.MustCompile(`../duckdb\((.*)\)`)
	addressToken   = regexp.MustCompile(`[\+\[]?0x[0-9a-fA-F]+\]?`)
	libcLoaderLine = regexp.MustCompile(`/lib/x86_64-linux-gnu/libc.so(.*)\n`)

	// run-dependent parts of a failure message
	lineLocation = regexp.MustCompile(`near line \d+:\s*`)
	processID    = regexp.MustCompile(`==\d+==`)
	hexAddress   = regexp.MustCompile(`0x[0-9a-fA-F]+`)
)

// IsInternalError reports whether text carries one of the defect signatures.
func IsInternalError(text string) bool {
	for _, signature := range internalErrorSignatures {
		if strings.Contains(text, signature) {
			return true
		}
	}

	return false
}

// Classify derives the verdict for a single execution.
func Classify(result m.ExecutionResult) m.Verdict {
	switch {
	case result.TimedOut:
		return m.VerdictTimeout
	case result.ExitCode < 0:
		return m.VerdictCrashSignal
	case result.ExitCode != 0 && IsInternalError(result.Stderr):
		return m.VerdictInternalError
	default:
		return m.VerdictClean
	}
}

// SanitizeStackTrace removes addresses and loader noise from a trace. It only
// affects display text.
func SanitizeStackTrace(trace string) string {
	trace = demangledFrame.ReplaceAllString(trace, "$1")
	trace = addressToken.ReplaceAllString(trace, "")
	trace = libcLoaderLine.ReplaceAllString(trace, "")

	return strings.TrimSpace(trace)
}

// SplitExceptionTrace splits raw failure text into its first line and the
// sanitized remainder.
func SplitExceptionTrace(failure string) (string, string) {
	message, trace, _ := strings.Cut(failure, "\n")

	return strings.TrimSpace(message), SanitizeStackTrace(trace)
}

// ExtractFailure splits the failing run's stderr. A run that produced no
// stderr (a timeout or a silent crash) is described by its verdict instead.
func ExtractFailure(result m.ExecutionResult, verdict m.Verdict) (string, string) {
	message, trace := SplitExceptionTrace(result.Stderr)
	if message != "" {
		return message, trace
	}

	switch verdict {
	case m.VerdictTimeout:
		return "Timeout while executing statements", trace
	case m.VerdictCrashSignal:
		return fmt.Sprintf("Fatal signal %d", -result.ExitCode), trace
	default:
		return message, trace
	}
}

// SameFailure reports whether two exception messages describe the same
// defect once statement positions, process IDs and addresses are removed.
func SameFailure(a, b string) bool {
	return normalizeFailure(a) == normalizeFailure(b)
}

func normalizeFailure(message string) string {
	message = lineLocation.ReplaceAllString(message, "")
	message = processID.ReplaceAllString(message, "")
	message = hexAddress.ReplaceAllString(message, "")

	return strings.TrimSpace(message)
}
