package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// IssuesPageSize is the number of issues requested per list page.
const IssuesPageSize = 100

// searchLimit caps the number of duplicate candidates fetched per search.
const searchLimit = 10

// ErrTokenMissing is returned when the tracker token variable is unset or empty.
var ErrTokenMissing = errors.New("tracker token not found in environment")

// TrackerAdapter abstracts the issue tracker operations used by the pipeline.
// Every method is a single blocking round trip; failures are never retried.
type TrackerAdapter interface {
	// ListOpenIssues returns one page (1-based) of open issues.
	ListOpenIssues(ctx context.Context, page int) ([]m.TrackedIssue, error)
	// SearchOpenIssues returns open issues whose title contains title.
	SearchOpenIssues(ctx context.Context, title string) ([]m.TrackedIssue, error)
	// CreateIssue files a new issue.
	CreateIssue(ctx context.Context, title, body string) (m.TrackedIssue, error)
	// CloseIssue sets the issue state to closed.
	CloseIssue(ctx context.Context, number int) error
	// LabelIssue replaces the labels of an issue with label.
	LabelIssue(ctx context.Context, number int, label string) error
}

// TrackerError reports a failed tracker call.
type TrackerError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TrackerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tracker: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("tracker: %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *TrackerError) Unwrap() error {
	return e.Err
}

// TokenFromEnv reads the tracker token from the named environment variable.
func TokenFromEnv(name string) (string, error) {
	token, ok := os.LookupEnv(name)
	if !ok || token == "" {
		return "", fmt.Errorf("%w: %s", ErrTokenMissing, name)
	}

	return token, nil
}

// GitHubTrackerAdapter talks to a GitHub repository through one authenticated session.
type GitHubTrackerAdapter struct {
	http    *http.Client
	gql     *githubv4.Client
	baseURL string
	owner   string
	repo    string
}

// NewGitHubTrackerAdapter builds the session for cfg. The token is sent as a bearer token.
func NewGitHubTrackerAdapter(ctx context.Context, cfg m.TrackerConfig) *GitHubTrackerAdapter {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	httpClient := oauth2.NewClient(ctx, src)
	baseURL := strings.TrimRight(cfg.APIURL, "/")

	return &GitHubTrackerAdapter{
		http:    httpClient,
		gql:     githubv4.NewEnterpriseClient(baseURL+"/graphql", httpClient),
		baseURL: baseURL,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
	}
}

type restLabel struct {
	Name string `json:"name"`
}

type restIssue struct {
	Number int         `json:"number"`
	Title  string      `json:"title"`
	State  string      `json:"state"`
	Body   string      `json:"body"`
	Labels []restLabel `json:"labels"`
}

func (i restIssue) toModel() m.TrackedIssue {
	labels := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, l.Name)
	}

	return m.TrackedIssue{
		Number: i.Number,
		Title:  i.Title,
		Labels: labels,
		State:  m.IssueState(i.State),
		Body:   i.Body,
	}
}

func (a *GitHubTrackerAdapter) issuesURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/issues", a.baseURL, url.PathEscape(a.owner), url.PathEscape(a.repo))
}

// ListOpenIssues fetches one page of open issues.
func (a *GitHubTrackerAdapter) ListOpenIssues(ctx context.Context, page int) ([]m.TrackedIssue, error) {
	query := url.Values{}
	query.Set("state", "open")
	query.Set("per_page", strconv.Itoa(IssuesPageSize))
	query.Set("page", strconv.Itoa(page))

	var issues []restIssue
	if err := a.do(ctx, "list issues", http.MethodGet, a.issuesURL()+"?"+query.Encode(), nil, http.StatusOK, &issues); err != nil {
		return nil, err
	}

	out := make([]m.TrackedIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.toModel())
	}

	return out, nil
}

// CreateIssue files a new issue with the given title and body.
func (a *GitHubTrackerAdapter) CreateIssue(ctx context.Context, title, body string) (m.TrackedIssue, error) {
	payload := map[string]string{"title": title, "body": body}

	var created restIssue
	if err := a.do(ctx, "create issue", http.MethodPost, a.issuesURL(), payload, http.StatusCreated, &created); err != nil {
		return m.TrackedIssue{}, err
	}

	return created.toModel(), nil
}

// CloseIssue closes issue number.
func (a *GitHubTrackerAdapter) CloseIssue(ctx context.Context, number int) error {
	payload := map[string]string{"state": string(m.IssueClosed)}

	return a.do(ctx, "close issue "+strconv.Itoa(number), http.MethodPatch, a.issueURL(number), payload, http.StatusOK, nil)
}

// LabelIssue sets the labels of issue number to exactly label.
func (a *GitHubTrackerAdapter) LabelIssue(ctx context.Context, number int, label string) error {
	payload := map[string][]string{"labels": {label}}

	return a.do(ctx, "label issue "+strconv.Itoa(number), http.MethodPatch, a.issueURL(number), payload, http.StatusOK, nil)
}

func (a *GitHubTrackerAdapter) issueURL(number int) string {
	return a.issuesURL() + "/" + strconv.Itoa(number)
}

func (a *GitHubTrackerAdapter) do(ctx context.Context, op, method, target string, payload any, wantStatus int, out any) error {
	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &TrackerError{Op: op, Err: err}
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &TrackerError{Op: op, Err: err}
	}

	req.Header.Set("Accept", "application/vnd.github+json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return &TrackerError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TrackerError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != wantStatus {
		return &TrackerError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &TrackerError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

type searchIssue struct {
	Number int
	Title  string
	Body   string
	State  githubv4.IssueState
	Labels struct {
		Nodes []struct {
			Name string
		}
	} `graphql:"labels(first: 20)"`
}

// SearchOpenIssues runs `repo:<owner>/<repo> <title> in:title is:open` against the search index.
func (a *GitHubTrackerAdapter) SearchOpenIssues(ctx context.Context, title string) ([]m.TrackedIssue, error) {
	var query struct {
		Search struct {
			Nodes []struct {
				Issue searchIssue `graphql:"... on Issue"`
			}
		} `graphql:"search(query: $query, type: ISSUE, first: $first)"`
	}

	variables := map[string]interface{}{
		"query": githubv4.String(SearchQuery(a.owner, a.repo, title)),
		"first": githubv4.Int(searchLimit),
	}

	if err := a.gql.Query(ctx, &query, variables); err != nil {
		return nil, &TrackerError{Op: "search issues", Err: err}
	}

	issues := make([]m.TrackedIssue, 0, len(query.Search.Nodes))
	for _, n := range query.Search.Nodes {
		if n.Issue.Number == 0 {
			continue
		}

		labels := make([]string, 0, len(n.Issue.Labels.Nodes))
		for _, l := range n.Issue.Labels.Nodes {
			labels = append(labels, l.Name)
		}

		issues = append(issues, m.TrackedIssue{
			Number: n.Issue.Number,
			Title:  n.Issue.Title,
			Labels: labels,
			State:  m.IssueState(strings.ToLower(string(n.Issue.State))),
			Body:   n.Issue.Body,
		})
	}

	return issues, nil
}

// SearchQuery builds the scoped search expression for open issues titled title.
func SearchQuery(owner, repo, title string) string {
	return fmt.Sprintf("repo:%s/%s %s in:title is:open", owner, repo, title)
}
