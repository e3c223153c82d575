package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrCycleInProgress is returned when a cycle is requested while another runs.
	ErrCycleInProgress = errors.New("poll cycle already in progress")
	// ErrInvalidRange is returned when the configured index range is empty.
	ErrInvalidRange = errors.New("index range is empty")
)

// PollCycleOptions bundles the collaborators of a PollCycle. Recorder, Mirror,
// Notifier and Observer are optional.
type PollCycleOptions struct {
	Config            *config.MonitorConfig
	DownloadDir       string
	RunID             string
	Prober            Prober
	Tracker           *IndexTracker
	Stats             *StatsReporter
	Pool              *WorkerPool
	Notifier          Notifier
	Recorder          DownloadRecorder
	Mirror            ObjectMirror
	Observer          CycleObserver
	NotifyCheckErrors bool
}

// PollCycle sweeps the configured index range once per Run.
type PollCycle struct {
	cfg               *config.MonitorConfig
	downloadDir       string
	runID             string
	prober            Prober
	tracker           *IndexTracker
	stats             *StatsReporter
	pool              *WorkerPool
	notifier          Notifier
	recorder          DownloadRecorder
	mirror            ObjectMirror
	observer          CycleObserver
	notifyCheckErrors bool
	logger            zerolog.Logger
	now               func() time.Time

	// guard serializes cycles; Collecting and Finalizing run while it is held.
	guard sync.Mutex
}

// NewPollCycle creates a new PollCycle.
func NewPollCycle(opts PollCycleOptions, logger zerolog.Logger) *PollCycle {
	pc := &PollCycle{
		cfg:               opts.Config,
		downloadDir:       opts.DownloadDir,
		runID:             opts.RunID,
		prober:            opts.Prober,
		tracker:           opts.Tracker,
		stats:             opts.Stats,
		pool:              opts.Pool,
		notifier:          opts.Notifier,
		recorder:          opts.Recorder,
		mirror:            opts.Mirror,
		observer:          opts.Observer,
		notifyCheckErrors: opts.NotifyCheckErrors,
		logger:            logger.With().Str("component", "PollCycle").Logger(),
		now:               time.Now,
	}
	if pc.notifier == nil {
		pc.notifier = nopNotifier{}
	}
	if pc.observer == nil {
		pc.observer = nopObserver{}
	}
	if pc.tracker == nil {
		pc.tracker = NewIndexTracker()
	}
	if pc.stats == nil {
		pc.stats = NewStatsReporter(opts.RunID)
	}
	if pc.pool == nil {
		pc.pool = NewWorkerPool(opts.Config.MaxWorkers, logger)
	}
	return pc
}

// Run performs one full sweep. It returns ErrCycleInProgress without doing
// anything if another sweep holds the guard, and ErrInvalidRange before any
// check if the range is empty. Individual check or download failures never
// abort the sweep.
func (pc *PollCycle) Run(ctx context.Context) (models.CycleSummary, error) {
	if !pc.guard.TryLock() {
		return models.CycleSummary{}, ErrCycleInProgress
	}
	defer pc.guard.Unlock()

	indices := pc.cfg.Indices()
	if len(indices) == 0 {
		return models.CycleSummary{}, errorwrapper.WrapError(ErrInvalidRange, "cannot start poll cycle")
	}

	summary := models.CycleSummary{
		CycleID:   uuid.NewString(),
		StartedAt: pc.now(),
	}
	cycleLogger := pc.logger.With().Str("cycle_id", summary.CycleID).Logger()
	cycleLogger.Info().
		Int("start_index", indices[0]).
		Int("end_index", indices[len(indices)-1]).
		Int("workers", pc.pool.Limit()).
		Msg("Starting poll cycle")

	// Dispatching
	outcomes := pc.pool.RunBatch(ctx, indices, func(taskCtx context.Context, index int) CheckOutcome {
		return pc.checkIndex(taskCtx, index, cycleLogger)
	})

	// Collecting
	pc.collect(ctx, indices, outcomes, &summary, cycleLogger)

	// Finalizing
	summary.FinishedAt = pc.now()
	summary.Duration = summary.FinishedAt.Sub(summary.StartedAt)
	discovered := pc.tracker.DiscoveredCount()
	pc.stats.Update(summary, discovered)
	pc.observer.ObserveCycle(summary.Duration, summary, discovered)

	cycleLogger.Info().
		Int("checked", summary.Checked).
		Int("found", summary.Found).
		Int("downloaded", summary.Downloaded).
		Int("download_failed", summary.DownloadFailed).
		Int("errors", summary.Errors).
		Int("skipped", summary.Skipped).
		Dur("duration", summary.Duration).
		Msg("Poll cycle completed")
	return summary, nil
}

// checkIndex runs inside a worker. A new discovery is downloaded right away
// so the two-phase notification goes out while the file is fresh.
func (pc *PollCycle) checkIndex(ctx context.Context, index int, logger zerolog.Logger) CheckOutcome {
	outcome := pc.prober.Check(ctx, index)
	if outcome.Kind != OutcomeFound || pc.tracker.IsDiscovered(index) {
		return outcome
	}

	logger.Info().Int("index", index).Str("filename", outcome.Filename).Msg("New file found")
	pc.notifier.NotifyFileFound(ctx, models.FileFoundEvent{
		Index:     index,
		Filename:  outcome.Filename,
		RemoteURL: outcome.RemoteURL,
		SizeBytes: outcome.SizeBytes,
	})

	result, err := pc.prober.Download(ctx, outcome, pc.downloadDir)
	outcome.Download = &DownloadAttempt{Result: result, Err: err}
	if err != nil {
		logger.Error().Int("index", index).Str("filename", outcome.Filename).Err(err).Msg("Download failed")
		pc.notifier.NotifyDownloadFailed(ctx, downloadFailedEvent(outcome, err))
		return outcome
	}

	logger.Info().
		Int("index", index).
		Str("path", result.StoredPath).
		Int64("bytes", result.Bytes).
		Msg("Download completed")
	pc.notifier.NotifyDownloadSucceeded(ctx, models.DownloadSucceededEvent{
		Index:      index,
		Filename:   result.StoredName,
		StoredPath: result.StoredPath,
		SizeBytes:  result.Bytes,
		Duration:   result.Duration,
	})

	if pc.mirror != nil {
		if mErr := pc.mirror.Mirror(ctx, result.StoredPath, filepath.Base(result.StoredPath)); mErr != nil {
			logger.Warn().Int("index", index).Err(mErr).Msg("Mirroring downloaded file failed")
		}
	}
	return outcome
}

func (pc *PollCycle) collect(ctx context.Context, indices []int, outcomes map[int]CheckOutcome, summary *models.CycleSummary, logger zerolog.Logger) {
	ordered := append([]int(nil), indices...)
	sort.Ints(ordered)

	for _, index := range ordered {
		outcome, ok := outcomes[index]
		if !ok || errors.Is(outcome.Err, errorwrapper.ErrCheckSkipped) {
			summary.Skipped++
			continue
		}

		summary.Checked++
		if !summary.HasChecked || index > summary.MaxIndexChecked {
			summary.MaxIndexChecked = index
		}
		summary.HasChecked = true
		pc.tracker.MarkChecked(index)
		pc.observer.ObserveCheck(outcome.Kind.String())

		switch outcome.Kind {
		case OutcomeNotFound:
			summary.NotFound++
		case OutcomeError:
			summary.Errors++
			pc.handleCheckError(ctx, outcome, logger)
		case OutcomeFound:
			if outcome.Download == nil {
				summary.AlreadyKnown++
				continue
			}
			summary.Found++
			pc.collectDownload(ctx, outcome, summary, logger)
		}
	}
}

func (pc *PollCycle) handleCheckError(ctx context.Context, outcome CheckOutcome, logger zerolog.Logger) {
	if errorwrapper.IsTransient(outcome.Err) {
		logger.Debug().Int("index", outcome.Index).Err(outcome.Err).Msg("Transient check failure")
		return
	}
	logger.Warn().Int("index", outcome.Index).Err(outcome.Err).Msg("Check failed")
	if pc.notifyCheckErrors {
		pc.notifier.NotifyCheckError(ctx, models.CheckErrorEvent{Index: outcome.Index, Err: outcome.Err.Error()})
	}
}

func (pc *PollCycle) collectDownload(ctx context.Context, outcome CheckOutcome, summary *models.CycleSummary, logger zerolog.Logger) {
	attempt := outcome.Download
	record := models.DownloadRecord{
		RunID:        pc.runID,
		FileIndex:    outcome.Index,
		Extension:    outcome.Extension,
		URL:          outcome.RemoteURL,
		DownloadedAt: pc.now(),
	}

	if attempt.Succeeded() {
		if pc.tracker.RecordDiscovery(outcome.Index, attempt.Result.StoredPath) {
			summary.Downloaded++
		}
		record.Success = true
		record.StoredPath = attempt.Result.StoredPath
		record.SizeBytes = attempt.Result.Bytes
		pc.observer.ObserveDownload(true, attempt.Result.Bytes)
	} else {
		summary.DownloadFailed++
		attempts := pc.tracker.RecordFailedAttempt(outcome.Index)
		logger.Warn().
			Int("index", outcome.Index).
			Int("failed_attempts", attempts).
			Msg("Index stays undiscovered, download will be retried next cycle")
		if attempt.Err != nil {
			record.Error = attempt.Err.Error()
		}
		pc.observer.ObserveDownload(false, 0)
	}

	if pc.recorder == nil {
		return
	}
	if err := pc.recorder.RecordDownload(context.WithoutCancel(ctx), record); err != nil {
		logger.Warn().Int("index", outcome.Index).Err(err).Msg("Failed to record download history")
	}
}

func downloadFailedEvent(outcome CheckOutcome, err error) models.DownloadFailedEvent {
	event := models.DownloadFailedEvent{
		Index:    outcome.Index,
		Filename: outcome.Filename,
		Detail:   err.Error(),
	}
	var httpErr *errorwrapper.HTTPError
	if errors.As(err, &httpErr) {
		event.StatusCode = httpErr.StatusCode
		event.Detail = httpErr.Message
	}
	return event
}
