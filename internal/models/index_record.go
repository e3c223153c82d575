package models

import "time"

// IndexRecord is the tracked state of one index during a run.
type IndexRecord struct {
	Index          int       `json:"index"`
	Discovered     bool      `json:"discovered"`
	DownloadedPath string    `json:"downloaded_path,omitempty"`
	LastChecked    time.Time `json:"last_checked"`
	FailedAttempts int       `json:"failed_attempts,omitempty"`
}
