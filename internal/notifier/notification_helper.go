package notifier

import (
	"context"
	"time"

	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/rs/zerolog"
)

// NotificationHelper turns monitor events into Telegram messages. Delivery
// failures are logged and swallowed so they never interrupt monitoring.
type NotificationHelper struct {
	sender      MessageSender
	cfg         config.NotificationConfig
	logger      zerolog.Logger
	sendTimeout time.Duration
}

// NewNotificationHelper creates a new NotificationHelper.
func NewNotificationHelper(sender MessageSender, cfg config.NotificationConfig, logger zerolog.Logger) *NotificationHelper {
	// Room for every retry attempt plus backoff.
	timeout := cfg.Timeout()*time.Duration(cfg.RetryAttempts+1) + cfg.RetryBaseDelay()*time.Duration(1<<cfg.RetryAttempts)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &NotificationHelper{
		sender:      sender,
		cfg:         cfg,
		logger:      logger.With().Str("component", "NotificationHelper").Logger(),
		sendTimeout: timeout,
	}
}

func (nh *NotificationHelper) send(ctx context.Context, kind, text string) {
	if nh.sender == nil {
		nh.logger.Debug().Str("kind", kind).Msg("No sender configured, skipping notification")
		return
	}

	// Notifications are still delivered while the process is shutting down.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), nh.sendTimeout)
	defer cancel()

	if err := nh.sender.SendMessage(sendCtx, text); err != nil {
		nh.logger.Error().Err(err).Str("kind", kind).Msg("Failed to send notification")
		return
	}
	nh.logger.Debug().Str("kind", kind).Msg("Notification sent")
}

// NotifyStartup sends the startup banner.
func (nh *NotificationHelper) NotifyStartup(ctx context.Context, info models.StartupInfo) {
	nh.send(ctx, "startup", FormatStartupMessage(info))
}

// NotifyShutdown sends the stop message.
func (nh *NotificationHelper) NotifyShutdown(ctx context.Context) {
	nh.send(ctx, "shutdown", FormatShutdownMessage())
}

// NotifyFileFound sends the first half of a discovery notification.
func (nh *NotificationHelper) NotifyFileFound(ctx context.Context, event models.FileFoundEvent) {
	nh.send(ctx, "file_found", FormatFileFoundMessage(event))
}

// NotifyDownloadSucceeded completes a discovery notification.
func (nh *NotificationHelper) NotifyDownloadSucceeded(ctx context.Context, event models.DownloadSucceededEvent) {
	nh.send(ctx, "download_succeeded", FormatDownloadSucceededMessage(event))
}

// NotifyDownloadFailed completes a discovery notification with the failure.
func (nh *NotificationHelper) NotifyDownloadFailed(ctx context.Context, event models.DownloadFailedEvent) {
	nh.send(ctx, "download_failed", FormatDownloadFailedMessage(event))
}

// NotifyCheckError reports a non-transient probe failure when enabled.
func (nh *NotificationHelper) NotifyCheckError(ctx context.Context, event models.CheckErrorEvent) {
	if !nh.cfg.NotifyOnCheckError {
		return
	}
	nh.send(ctx, "check_error", FormatCheckErrorMessage(event))
}

// NotifyStatusReport sends a periodic status report.
func (nh *NotificationHelper) NotifyStatusReport(ctx context.Context, report string) {
	nh.send(ctx, "status_report", FormatStatusReportMessage(report))
}

// NotifySystemError reports a fatal runtime error.
func (nh *NotificationHelper) NotifySystemError(ctx context.Context, err error, logFile string) {
	nh.send(ctx, "system_error", FormatSystemErrorMessage(err, logFile))
}
