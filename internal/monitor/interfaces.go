package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
)

// Prober is what a poll cycle needs from the Fetcher.
type Prober interface {
	Check(ctx context.Context, index int) CheckOutcome
	Download(ctx context.Context, found CheckOutcome, destinationDir string) (*DownloadResult, error)
}

// Notifier delivers messages to the operator. Implementations log their own
// delivery failures; none of these calls may stop monitoring.
type Notifier interface {
	NotifyStartup(ctx context.Context, info models.StartupInfo)
	NotifyShutdown(ctx context.Context)
	NotifyFileFound(ctx context.Context, event models.FileFoundEvent)
	NotifyDownloadSucceeded(ctx context.Context, event models.DownloadSucceededEvent)
	NotifyDownloadFailed(ctx context.Context, event models.DownloadFailedEvent)
	NotifyCheckError(ctx context.Context, event models.CheckErrorEvent)
	NotifyStatusReport(ctx context.Context, report string)
	NotifySystemError(ctx context.Context, err error, logFile string)
}

// DownloadRecorder keeps an audit trail of download attempts.
type DownloadRecorder interface {
	RecordDownload(ctx context.Context, record models.DownloadRecord) error
}

// ObjectMirror copies stored files somewhere else.
type ObjectMirror interface {
	Mirror(ctx context.Context, localPath, objectName string) error
}

// CycleObserver receives per-cycle and per-check signals, e.g. for metrics.
type CycleObserver interface {
	ObserveCheck(outcome string)
	ObserveDownload(success bool, bytes int64)
	ObserveCycle(duration time.Duration, summary models.CycleSummary, discovered int)
	ObserveSkippedCycle()
}

type nopNotifier struct{}

func (nopNotifier) NotifyStartup(context.Context, models.StartupInfo)                      {}
func (nopNotifier) NotifyShutdown(context.Context)                                         {}
func (nopNotifier) NotifyFileFound(context.Context, models.FileFoundEvent)                 {}
func (nopNotifier) NotifyDownloadSucceeded(context.Context, models.DownloadSucceededEvent) {}
func (nopNotifier) NotifyDownloadFailed(context.Context, models.DownloadFailedEvent)       {}
func (nopNotifier) NotifyCheckError(context.Context, models.CheckErrorEvent)               {}
func (nopNotifier) NotifyStatusReport(context.Context, string)                             {}
func (nopNotifier) NotifySystemError(context.Context, error, string)                       {}

type nopObserver struct{}

func (nopObserver) ObserveCheck(string)                                  {}
func (nopObserver) ObserveDownload(bool, int64)                          {}
func (nopObserver) ObserveCycle(time.Duration, models.CycleSummary, int) {}
func (nopObserver) ObserveSkippedCycle()                                 {}
