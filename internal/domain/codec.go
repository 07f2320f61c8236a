package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// Issue body grammar:
//
//	body      = provenance sqlHeader sql exceptionHeader message [traceHeader trace] footer
//
// The trace section is omitted when the trace is empty (legacy shape).
const (
	provenanceTemplate = "Issue found by ${FUZZER} on git commit hash [${SHORT_HASH}](${COMMIT_URL}${FULL_HASH}) using seed ${SEED}.\n"
	sqlHeader          = "### To Reproduce\n```sql\n"
	exceptionHeader    = "\n```\n\n### Error Message\n```\n"
	traceHeader        = "\n```\n\n### Stack Trace\n```\n"
	footer             = "\n```"
)

// Tracker limits.
const (
	MaxTitleLength  = 240
	MaxBodyLength   = 60000
	titleEllipsis   = "..."
	truncatedNotice = "... (body of github issue is truncated)"
	shortHashLength = 5
)

// DefaultCommitURL prefixes the commit hash in the provenance line.
const DefaultCommitURL = "https://github.com/duckdb/duckdb/commit/"

// DedupKey is the truncated title used both to search for duplicates and to
// file issues. It can only be produced by NewDedupKey.
type DedupKey struct {
	title string
}

// NewDedupKey truncates an exception message to the tracker title limit.
func NewDedupKey(message string) DedupKey {
	if utf8.RuneCountInString(message) <= MaxTitleLength {
		return DedupKey{title: message}
	}

	runes := []rune(message)

	return DedupKey{title: string(runes[:MaxTitleLength]) + titleEllipsis}
}

func (k DedupKey) String() string {
	return k.title
}

// TruncateBody cuts body to the tracker body limit, appending a notice.
func TruncateBody(body string) string {
	if utf8.RuneCountInString(body) <= MaxBodyLength {
		return body
	}

	runes := []rune(body)

	return string(runes[:MaxBodyLength]) + truncatedNotice
}

// EncodeIssueBody renders record into the issue body template.
func EncodeIssueBody(record m.ReportRecord, commitURL string) string {
	shortHash := record.CommitHash
	if len(shortHash) > shortHashLength {
		shortHash = shortHash[:shortHashLength]
	}

	var b strings.Builder

	b.WriteString(strings.NewReplacer(
		"${FUZZER}", record.FuzzerName,
		"${SHORT_HASH}", shortHash,
		"${COMMIT_URL}", commitURL,
		"${FULL_HASH}", record.CommitHash,
		"${SEED}", strconv.FormatInt(record.Seed, 10),
	).Replace(provenanceTemplate))
	b.WriteString(sqlHeader)
	b.WriteString(record.SQLRepro)
	b.WriteString(exceptionHeader)
	b.WriteString(record.ExceptionMessage)

	if record.StackTrace != "" {
		b.WriteString(traceHeader)
		b.WriteString(record.StackTrace)
	}

	b.WriteString(footer)

	return b.String()
}

// DecodeStatus tags the result of DecodeIssueBody.
type DecodeStatus int

const (
	// DecodeMalformed means the body does not follow the grammar.
	DecodeMalformed DecodeStatus = iota
	// DecodeParsed means all fields were recovered.
	DecodeParsed
)

// DecodedBody holds the fields recovered from an issue body. Fields are
// empty unless Status is DecodeParsed.
type DecodedBody struct {
	Status    DecodeStatus
	SQL       string
	Exception string
	Trace     string
}

// Parsed reports whether decoding succeeded.
func (d DecodedBody) Parsed() bool {
	return d.Status == DecodeParsed
}

var malformed = DecodedBody{Status: DecodeMalformed}

// DecodeIssueBody recovers the repro, message and trace from an issue body.
func DecodeIssueBody(body string) DecodedBody {
	_, rest, ok := strings.Cut(body, sqlHeader)
	if !ok {
		return malformed
	}

	sql, rest, ok := strings.Cut(rest, exceptionHeader)
	if !ok {
		return malformed
	}

	if message, traceSection, hasTrace := strings.Cut(rest, traceHeader); hasTrace {
		trace, _, ok := strings.Cut(traceSection, footer)
		if !ok {
			return malformed
		}

		return DecodedBody{Status: DecodeParsed, SQL: sql, Exception: message, Trace: trace}
	}

	message, ok := strings.CutSuffix(rest, footer)
	if !ok {
		return malformed
	}

	return DecodedBody{Status: DecodeParsed, SQL: sql, Exception: message}
}
