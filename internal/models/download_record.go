package models

import "time"

// DownloadRecord is one row of the download history ledger.
type DownloadRecord struct {
	ID           int64     `db:"id" json:"id"`
	RunID        string    `db:"run_id" json:"run_id"`
	FileIndex    int       `db:"file_index" json:"file_index"`
	Extension    string    `db:"extension" json:"extension"`
	URL          string    `db:"url" json:"-"`
	StoredPath   string    `db:"stored_path" json:"stored_path,omitempty"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	Success      bool      `db:"success" json:"success"`
	Error        string    `db:"error" json:"error,omitempty"`
	DownloadedAt time.Time `db:"downloaded_at" json:"downloaded_at"`
}
