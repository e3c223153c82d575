package monitor

import (
	"context"
	"errors"
	"net/http"

	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ServiceOptions carries the collaborators built by the entry point. Only
// Config is required.
type ServiceOptions struct {
	Config     *config.GlobalConfig
	HTTPClient *http.Client
	Prober     Prober
	Notifier   Notifier
	Recorder   DownloadRecorder
	Mirror     ObjectMirror
	Observer   CycleObserver
	// OnReport runs after every status report with the stats it reported.
	OnReport func(stats models.RunStats)
	// LogFile is quoted in system error notifications.
	LogFile string
}

// MonitoringService wires the poll cycle, stats and scheduler together and
// owns startup and shutdown notifications.
type MonitoringService struct {
	cfg       *config.GlobalConfig
	logger    zerolog.Logger
	runID     string
	notifier  Notifier
	tracker   *IndexTracker
	stats     *StatsReporter
	cycle     *PollCycle
	scheduler *Scheduler
	observer  CycleObserver
	onReport  func(models.RunStats)
	logFile   string
}

// NewMonitoringService creates a new MonitoringService.
func NewMonitoringService(opts ServiceOptions, baseLogger zerolog.Logger) (*MonitoringService, error) {
	if opts.Config == nil {
		return nil, errors.New("monitoring service requires a configuration")
	}
	cfg := opts.Config
	runID := uuid.NewString()
	logger := baseLogger.With().Str("component", "MonitoringService").Str("run_id", runID).Logger()

	downloadDir := cfg.AbsDownloadDir()

	prober := opts.Prober
	if prober == nil {
		prober = NewFetcher(opts.HTTPClient, cfg.MonitorConfig, baseLogger)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	onReport := opts.OnReport
	if onReport == nil {
		onReport = func(models.RunStats) {}
	}

	s := &MonitoringService{
		cfg:      cfg,
		logger:   logger,
		runID:    runID,
		notifier: notifier,
		tracker:  NewIndexTracker(),
		stats:    NewStatsReporter(runID),
		observer: observer,
		onReport: onReport,
		logFile:  opts.LogFile,
	}

	s.cycle = NewPollCycle(PollCycleOptions{
		Config:            &cfg.MonitorConfig,
		DownloadDir:       downloadDir,
		RunID:             runID,
		Prober:            prober,
		Tracker:           s.tracker,
		Stats:             s.stats,
		Pool:              NewWorkerPool(cfg.MonitorConfig.MaxWorkers, baseLogger),
		Notifier:          notifier,
		Recorder:          opts.Recorder,
		Mirror:            opts.Mirror,
		Observer:          observer,
		NotifyCheckErrors: cfg.NotificationConfig.NotifyOnCheckError,
	}, baseLogger)

	s.scheduler = NewScheduler(
		s.cycle,
		cfg.MonitorConfig.CheckInterval(),
		cfg.MonitorConfig.ReportInterval(),
		s.SendReport,
		s.recordSkippedCycle,
		baseLogger,
	)
	return s, nil
}

// RunID identifies this process run.
func (s *MonitoringService) RunID() string {
	return s.runID
}

// Stats returns the current counters.
func (s *MonitoringService) Stats() models.RunStats {
	return s.stats.Snapshot()
}

// Indices returns the state of every index checked so far, ordered by index.
func (s *MonitoringService) Indices() []models.IndexRecord {
	return s.tracker.Snapshot()
}

// Run monitors until ctx is cancelled. It returns nil on a clean shutdown and
// the fatal error otherwise.
func (s *MonitoringService) Run(ctx context.Context) error {
	s.logger.Info().Msg("Starting file monitor")
	if s.cfg.NotificationConfig.NotifyOnStartup {
		s.notifier.NotifyStartup(ctx, s.startupInfo())
	}

	err := s.scheduler.Run(ctx)
	notifyCtx := context.WithoutCancel(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("File monitor stopped on fatal error")
		s.notifier.NotifySystemError(notifyCtx, err, s.logFile)
		return err
	}

	s.logger.Info().Msg("File monitor stopped")
	if s.cfg.NotificationConfig.NotifyOnShutdown {
		s.notifier.NotifyShutdown(notifyCtx)
	}
	return nil
}

// RunOnce runs a single cycle followed by a status report.
func (s *MonitoringService) RunOnce(ctx context.Context) (models.CycleSummary, error) {
	summary, err := s.cycle.Run(ctx)
	if err != nil {
		return summary, err
	}
	s.SendReport(ctx)
	return summary, nil
}

// SendReport formats the current counters and hands them to the notifier.
func (s *MonitoringService) SendReport(ctx context.Context) {
	stats := s.stats.Snapshot()
	report := s.stats.FormatReport()
	s.logger.Info().
		Int64("checks_performed", stats.ChecksPerformed).
		Int64("files_found", stats.FilesFound).
		Int64("downloads_succeeded", stats.DownloadsSucceeded).
		Int("current_index", stats.CurrentIndex).
		Msg("Sending status report")
	s.notifier.NotifyStatusReport(context.WithoutCancel(ctx), report)
	s.onReport(stats)
}

func (s *MonitoringService) recordSkippedCycle() {
	s.stats.RecordSkippedCycle()
	s.observer.ObserveSkippedCycle()
}

func (s *MonitoringService) startupInfo() models.StartupInfo {
	return models.StartupInfo{
		DownloadDir:    s.cfg.AbsDownloadDir(),
		LogDir:         s.cfg.AbsLogDir(),
		Extensions:     append([]string(nil), s.cfg.MonitorConfig.Extensions...),
		StartIndex:     s.cfg.MonitorConfig.StartIndex,
		EndIndex:       s.cfg.MonitorConfig.EndIndex,
		CheckInterval:  s.cfg.MonitorConfig.CheckInterval(),
		ReportInterval: s.cfg.MonitorConfig.ReportInterval(),
		RunID:          s.runID,
	}
}
