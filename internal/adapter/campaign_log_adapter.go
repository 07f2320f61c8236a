package adapter

import (
	"fmt"
	"os"

	m "crashtriage.dev/pkg/crashtriage/internal/model"
)

// CampaignLogAdapter reads the side files the fuzzer writes during a campaign.
type CampaignLogAdapter interface {
	// ReadLastStatement returns the last statement executed by the fuzzer.
	ReadLastStatement(path m.Path) (string, error)
	// ReadCompleteLog returns the full statement log of the campaign.
	ReadCompleteLog(path m.Path) (string, error)
}

// LocalCampaignLogAdapter reads campaign logs from the local filesystem.
type LocalCampaignLogAdapter struct{}

// NewLocalCampaignLogAdapter constructs a LocalCampaignLogAdapter.
func NewLocalCampaignLogAdapter() *LocalCampaignLogAdapter {
	return &LocalCampaignLogAdapter{}
}

// ReadLastStatement reads the last-statement log.
func (a *LocalCampaignLogAdapter) ReadLastStatement(path m.Path) (string, error) {
	return readLog(path)
}

// ReadCompleteLog reads the complete statement log.
func (a *LocalCampaignLogAdapter) ReadCompleteLog(path m.Path) (string, error) {
	return readLog(path)
}

func readLog(path m.Path) (string, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return "", fmt.Errorf("read campaign log %s: %w", path, err)
	}

	return string(data), nil
}
