package domain

import (
	"context"
	"fmt"

	"crashtriage.dev/pkg/crashtriage/internal/adapter"
	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// DedupIndex finds open tracked issues that already cover a defect.
type DedupIndex interface {
	FindDuplicate(ctx context.Context, key DedupKey) (*m.TrackedIssue, error)
}

type dedupIndex struct {
	tracker adapter.TrackerAdapter
}

// NewDedupIndex constructs a DedupIndex backed by tracker search.
func NewDedupIndex(tracker adapter.TrackerAdapter) DedupIndex {
	return &dedupIndex{tracker: tracker}
}

// FindDuplicate returns the first open issue matching key, or nil.
func (d *dedupIndex) FindDuplicate(ctx context.Context, key DedupKey) (*m.TrackedIssue, error) {
	issues, err := d.tracker.SearchOpenIssues(ctx, key.String())
	if err != nil {
		return nil, fmt.Errorf("search duplicates: %w", err)
	}

	if len(issues) == 0 {
		return nil, nil
	}

	issue := issues[0]

	return &issue, nil
}
