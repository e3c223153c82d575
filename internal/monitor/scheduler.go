package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/rs/zerolog"
)

// CycleRunner runs one poll cycle.
type CycleRunner interface {
	Run(ctx context.Context) (models.CycleSummary, error)
}

// Scheduler fires poll cycles and status reports on two independent tickers.
type Scheduler struct {
	logger         zerolog.Logger
	cycle          CycleRunner
	report         func(ctx context.Context)
	onSkip         func()
	checkInterval  time.Duration
	reportInterval time.Duration

	inFlight atomic.Bool
	wg       sync.WaitGroup
	fatal    chan error
}

// NewScheduler creates a new Scheduler. report is called on every report tick;
// onSkip is called whenever a poll tick is dropped because a cycle is running.
func NewScheduler(cycle CycleRunner, checkInterval, reportInterval time.Duration, report func(ctx context.Context), onSkip func(), logger zerolog.Logger) *Scheduler {
	if report == nil {
		report = func(context.Context) {}
	}
	if onSkip == nil {
		onSkip = func() {}
	}
	return &Scheduler{
		logger:         logger.With().Str("component", "Scheduler").Logger(),
		cycle:          cycle,
		report:         report,
		onSkip:         onSkip,
		checkInterval:  checkInterval,
		reportInterval: reportInterval,
		fatal:          make(chan error, 1),
	}
}

// Run starts a cycle immediately and then one per check interval until ctx is
// cancelled or a cycle fails fatally. On cancellation it waits for the cycle
// in flight to drain before returning nil.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.checkInterval <= 0 || s.reportInterval <= 0 {
		return errors.New("scheduler intervals must be positive")
	}

	pollTicker := time.NewTicker(s.checkInterval)
	defer pollTicker.Stop()
	reportTicker := time.NewTicker(s.reportInterval)
	defer reportTicker.Stop()

	s.logger.Info().
		Dur("check_interval", s.checkInterval).
		Dur("report_interval", s.reportInterval).
		Msg("Scheduler started")

	s.trigger(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Scheduler stopping, waiting for in-flight cycle")
			s.wg.Wait()
			s.logger.Info().Msg("Scheduler stopped")
			return nil
		case err := <-s.fatal:
			s.wg.Wait()
			return err
		case <-pollTicker.C:
			s.trigger(ctx)
		case <-reportTicker.C:
			s.report(ctx)
		}
	}
}

// trigger launches a cycle unless one is already running.
func (s *Scheduler) trigger(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn().Msg("Previous poll cycle still running, skipping this tick")
		s.onSkip()
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.inFlight.Store(false)

		_, err := s.cycle.Run(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrCycleInProgress):
			s.onSkip()
		default:
			s.logger.Error().Err(err).Msg("Poll cycle failed")
			select {
			case s.fatal <- err:
			default:
			}
		}
	}()
}
