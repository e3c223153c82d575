package monitor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
)

// ReportTimeFormat is how timestamps appear in status reports.
const ReportTimeFormat = "2006-01-02 15:04:05"

// StatsReporter owns the run counters. Only finalized cycles are visible to
// readers.
type StatsReporter struct {
	mu    sync.RWMutex
	stats models.RunStats
	now   func() time.Time
}

// NewStatsReporter starts counting from now.
func NewStatsReporter(runID string) *StatsReporter {
	return newStatsReporterWithClock(runID, time.Now)
}

func newStatsReporterWithClock(runID string, now func() time.Time) *StatsReporter {
	return &StatsReporter{
		stats: models.RunStats{RunID: runID, StartTime: now()},
		now:   now,
	}
}

// Update folds one finalized cycle into the counters.
func (r *StatsReporter) Update(summary models.CycleSummary, discovered int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stats.ChecksPerformed += int64(summary.Checked)
	r.stats.FilesFound += int64(summary.Found)
	r.stats.DownloadsSucceeded += int64(summary.Downloaded)
	r.stats.DownloadsFailed += int64(summary.DownloadFailed)
	r.stats.CheckErrors += int64(summary.Errors)
	r.stats.CyclesCompleted++
	r.stats.DiscoveredIndices = discovered
	if !summary.HasChecked {
		return
	}
	r.stats.CurrentIndex = summary.MaxIndexChecked
	r.stats.LastCheck = summary.FinishedAt
	if r.stats.LastCheck.IsZero() {
		r.stats.LastCheck = r.now()
	}
}

// RecordSkippedCycle counts a poll trigger that fired while a cycle was running.
func (r *StatsReporter) RecordSkippedCycle() {
	r.mu.Lock()
	r.stats.CyclesSkipped++
	r.mu.Unlock()
}

// Snapshot returns a copy of the counters.
func (r *StatsReporter) Snapshot() models.RunStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// FormatReport renders the status report message.
func (r *StatsReporter) FormatReport() string {
	return FormatStatusReport(r.Snapshot(), r.now())
}

// FormatStatusReport renders stats as of now.
func FormatStatusReport(stats models.RunStats, now time.Time) string {
	runtime := stats.Runtime(now)
	days := int(runtime.Hours()) / 24
	hours := int(runtime.Hours()) % 24
	minutes := int(runtime.Minutes()) % 60

	lastCheck := "Not Started"
	if stats.HasChecked() {
		lastCheck = stats.LastCheck.Format(ReportTimeFormat)
	}

	var sb strings.Builder
	sb.WriteString("📊 File Monitor Status Report\n")
	fmt.Fprintf(&sb, "🕒 Runtime: %dd %dh %dm\n", days, hours, minutes)
	fmt.Fprintf(&sb, "🔄 Checks Performed: %d\n", stats.ChecksPerformed)
	fmt.Fprintf(&sb, "📁 Files Found: %d\n", stats.FilesFound)
	fmt.Fprintf(&sb, "💾 Downloads Successful: %d\n", stats.DownloadsSucceeded)
	fmt.Fprintf(&sb, "🔍 Current Index: %d\n", stats.CurrentIndex)
	fmt.Fprintf(&sb, "⏱ Last Check: %s", lastCheck)
	return sb.String()
}
