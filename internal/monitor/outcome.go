package monitor

import (
	"time"
)

// OutcomeKind classifies the result of probing one index.
type OutcomeKind int

const (
	OutcomeNotFound OutcomeKind = iota
	OutcomeFound
	OutcomeError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFound:
		return "found"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// CheckOutcome is the result of probing one index.
type CheckOutcome struct {
	Index int
	Kind  OutcomeKind

	// Set when Kind == OutcomeFound.
	Extension string
	Filename  string
	RemoteURL string
	SizeBytes int64 // from Content-Length, -1 when unknown

	// Set when Kind == OutcomeError.
	Err error

	// Download is set when the index was new and a download was attempted.
	Download *DownloadAttempt
}

// DownloadAttempt records one try at storing a discovered file.
type DownloadAttempt struct {
	Result *DownloadResult
	Err    error
}

// Succeeded reports whether the file was stored.
func (a *DownloadAttempt) Succeeded() bool {
	return a != nil && a.Err == nil && a.Result != nil
}

// DownloadResult describes a file written to the download directory.
type DownloadResult struct {
	StoredPath string
	StoredName string
	Bytes      int64
	Duration   time.Duration
}

// NotFound builds a NotFound outcome.
func NotFound(index int) CheckOutcome {
	return CheckOutcome{Index: index, Kind: OutcomeNotFound}
}

// Found builds a Found outcome.
func Found(index int, ext, filename, remoteURL string, size int64) CheckOutcome {
	return CheckOutcome{
		Index:     index,
		Kind:      OutcomeFound,
		Extension: ext,
		Filename:  filename,
		RemoteURL: remoteURL,
		SizeBytes: size,
	}
}

// Failed builds an Error outcome.
func Failed(index int, err error) CheckOutcome {
	return CheckOutcome{Index: index, Kind: OutcomeError, Err: err}
}
