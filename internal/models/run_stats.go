package models

import "time"

// RunStats are the running counters for one process lifetime.
type RunStats struct {
	RunID              string    `json:"run_id"`
	StartTime          time.Time `json:"start_time"`
	LastCheck          time.Time `json:"last_check,omitempty"`
	ChecksPerformed    int64     `json:"checks_performed"`
	FilesFound         int64     `json:"files_found"`
	DownloadsSucceeded int64     `json:"downloads_succeeded"`
	DownloadsFailed    int64     `json:"downloads_failed"`
	CheckErrors        int64     `json:"check_errors"`
	CurrentIndex       int       `json:"current_index"`
	CyclesCompleted    int64     `json:"cycles_completed"`
	CyclesSkipped      int64     `json:"cycles_skipped"`
	DiscoveredIndices  int       `json:"discovered_indices"`
}

// HasChecked reports whether at least one cycle has been finalized.
func (s RunStats) HasChecked() bool {
	return !s.LastCheck.IsZero()
}

// Runtime returns the elapsed time since StartTime as of now.
func (s RunStats) Runtime(now time.Time) time.Duration {
	if s.StartTime.IsZero() || now.Before(s.StartTime) {
		return 0
	}
	return now.Sub(s.StartTime)
}

// CycleSummary is what one finalized poll cycle contributes to RunStats.
type CycleSummary struct {
	CycleID         string        `json:"cycle_id"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Duration        time.Duration `json:"duration"`
	Checked         int           `json:"checked"`
	NotFound        int           `json:"not_found"`
	Found           int           `json:"found"`
	AlreadyKnown    int           `json:"already_known"`
	Downloaded      int           `json:"downloaded"`
	DownloadFailed  int           `json:"download_failed"`
	Errors          int           `json:"errors"`
	Skipped         int           `json:"skipped"`
	MaxIndexChecked int           `json:"max_index_checked"`
	// HasChecked is false when every index was skipped.
	HasChecked bool `json:"has_checked"`
}
