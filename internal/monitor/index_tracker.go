package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
)

// IndexTracker remembers which indices have been discovered during this run.
// Records are created on first check and never removed.
type IndexTracker struct {
	mu      sync.RWMutex
	records map[int]*models.IndexRecord
	now     func() time.Time
}

// NewIndexTracker creates an empty tracker.
func NewIndexTracker() *IndexTracker {
	return &IndexTracker{
		records: make(map[int]*models.IndexRecord),
		now:     time.Now,
	}
}

func (t *IndexTracker) recordFor(index int) *models.IndexRecord {
	rec, ok := t.records[index]
	if !ok {
		rec = &models.IndexRecord{Index: index}
		t.records[index] = rec
	}
	return rec
}

// MarkChecked notes that index was probed.
func (t *IndexTracker) MarkChecked(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordFor(index).LastChecked = t.now()
}

// IsDiscovered reports whether index already has a stored file.
func (t *IndexTracker) IsDiscovered(index int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[index]
	return ok && rec.Discovered
}

// RecordDiscovery marks index as discovered with its stored path. It returns
// false and changes nothing if index was already discovered.
func (t *IndexTracker) RecordDiscovery(index int, storedPath string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.recordFor(index)
	if rec.Discovered {
		return false
	}
	rec.Discovered = true
	rec.DownloadedPath = storedPath
	return true
}

// RecordFailedAttempt counts a download that did not complete. The index
// stays undiscovered and will be tried again next cycle.
func (t *IndexTracker) RecordFailedAttempt(index int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := t.recordFor(index)
	rec.FailedAttempts++
	return rec.FailedAttempts
}

// DiscoveredCount returns how many indices have been discovered.
func (t *IndexTracker) DiscoveredCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	count := 0
	for _, rec := range t.records {
		if rec.Discovered {
			count++
		}
	}
	return count
}

// Snapshot returns copies of all records ordered by index.
func (t *IndexTracker) Snapshot() []models.IndexRecord {
	t.mu.RLock()
	out := make([]models.IndexRecord, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, *rec)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}
