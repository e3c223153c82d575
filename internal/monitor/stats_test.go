package monitor

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatStatusReport(t *testing.T) {
	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local)
	stats := models.RunStats{
		StartTime:          start,
		LastCheck:          time.Date(2024, 3, 3, 10, 30, 15, 0, time.Local),
		ChecksPerformed:    303,
		FilesFound:         2,
		DownloadsSucceeded: 2,
		CurrentIndex:       100,
	}
	now := start.Add(2*24*time.Hour + 3*time.Hour + 17*time.Minute)

	report := FormatStatusReport(stats, now)
	assert.Equal(t, "📊 File Monitor Status Report\n"+
		"🕒 Runtime: 2d 3h 17m\n"+
		"🔄 Checks Performed: 303\n"+
		"📁 Files Found: 2\n"+
		"💾 Downloads Successful: 2\n"+
		"🔍 Current Index: 100\n"+
		"⏱ Last Check: 2024-03-03 10:30:15", report)
}

func TestFormatStatusReport_BeforeFirstCycle(t *testing.T) {
	start := time.Now()
	report := FormatStatusReport(models.RunStats{StartTime: start}, start.Add(30*time.Second))
	assert.Contains(t, report, "Runtime: 0d 0h 0m")
	assert.Contains(t, report, "Last Check: Not Started")
}

func TestFormatStatusReport_FailedDownloadsAddNoLine(t *testing.T) {
	start := time.Now()
	report := FormatStatusReport(models.RunStats{StartTime: start, DownloadsFailed: 4}, start)

	assert.NotContains(t, report, "Failed")
	assert.Len(t, strings.Split(report, "\n"), 7)
	assert.True(t, strings.HasPrefix(report, "📊 File Monitor Status Report\n🕒 Runtime:"))
}

func TestStatsReporter_Update(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reporter := newStatsReporterWithClock("run-1", func() time.Time { return clock })

	finished := clock.Add(time.Minute)
	reporter.Update(models.CycleSummary{
		Checked:         10,
		Found:           1,
		Downloaded:      1,
		Errors:          2,
		MaxIndexChecked: 9,
		HasChecked:      true,
		FinishedAt:      finished,
	}, 1)

	stats := reporter.Snapshot()
	assert.Equal(t, "run-1", stats.RunID)
	assert.Equal(t, int64(10), stats.ChecksPerformed)
	assert.Equal(t, int64(1), stats.FilesFound)
	assert.Equal(t, int64(2), stats.CheckErrors)
	assert.Equal(t, 9, stats.CurrentIndex)
	assert.Equal(t, finished, stats.LastCheck)
	assert.Equal(t, 1, stats.DiscoveredIndices)

	reporter.RecordSkippedCycle()
	assert.Equal(t, int64(1), reporter.Snapshot().CyclesSkipped)
}

func TestStatsReporter_ConcurrentReadsSeeWholeCycles(t *testing.T) {
	reporter := NewStatsReporter("run-1")
	const cycles = 200

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < cycles; i++ {
			reporter.Update(models.CycleSummary{Checked: 4, Found: 1, Downloaded: 1, HasChecked: true, MaxIndexChecked: 3}, i+1)
		}
	}()

	for i := 0; i < cycles; i++ {
		s := reporter.Snapshot()
		require.Equal(t, s.ChecksPerformed, 4*s.CyclesCompleted)
		require.Equal(t, s.FilesFound, s.DownloadsSucceeded)
		_ = reporter.FormatReport()
	}
	wg.Wait()
	assert.Equal(t, int64(4*cycles), reporter.Snapshot().ChecksPerformed)
}
