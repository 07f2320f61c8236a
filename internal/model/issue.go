package model

// IssueState is the lifecycle state of a tracked issue.
type IssueState string

const (
	// IssueOpen is an open issue.
	IssueOpen IssueState = "open"
	// IssueClosed is a closed issue.
	IssueClosed IssueState = "closed"
)

// Labels that exempt an issue from automatic re-verification.
const (
	LabelAFL     = "AFL"
	LabelTimeout = "timeout"
)

// TrackedIssue is an issue owned by the external tracker.
type TrackedIssue struct {
	Number int        `yaml:"number"`
	Title  string     `yaml:"title"`
	Labels []string   `yaml:"labels,omitempty"`
	State  IssueState `yaml:"state"`
	Body   string     `yaml:"-"`
}

// HasAnyLabel reports whether the issue carries at least one of names.
func (i TrackedIssue) HasAnyLabel(names ...string) bool {
	for _, label := range i.Labels {
		for _, name := range names {
			if label == name {
				return true
			}
		}
	}

	return false
}

// ReportRecord is the structured content of a new tracker issue.
type ReportRecord struct {
	Title            string
	SQLRepro         string
	ExceptionMessage string
	StackTrace       string
	FuzzerName       string
	Seed             int64
	CommitHash       string
}
