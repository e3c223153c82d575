package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
)

// FormatStartupMessage announces where files and logs go and how often reports come.
func FormatStartupMessage(info models.StartupInfo) string {
	return NewMessageBuilder().
		WithTitle(TitleStartup).
		AddField("📂 File save location", info.DownloadDir).
		AddField("📝 Supported file types", strings.Join(info.Extensions, ", ")).
		AddField("📋 Log file location", info.LogDir).
		AddField("🔢 File index range", fmt.Sprintf("%d to %d", info.StartIndex, info.EndIndex)).
		AddField("🔁 Check interval", formatInterval(info.CheckInterval)).
		AddLine(fmt.Sprintf("⏰ Status report will be sent every %s", escapeHTML(formatInterval(info.ReportInterval)))).
		AddLine("❗ Immediate notification for new files").
		Build()
}

// FormatShutdownMessage is sent when the process stops on a signal.
func FormatShutdownMessage() string {
	return TitleShutdown
}

// FormatFileFoundMessage is the first half of a discovery notification.
func FormatFileFoundMessage(event models.FileFoundEvent) string {
	return NewMessageBuilder().
		WithTitleValue(TitleFileFound, event.Filename).
		AddField("📦 Size", formatSize(event.SizeBytes)).
		AddLine("👉 Attempting to download...").
		Build()
}

// FormatDownloadSucceededMessage reports size, speed and elapsed time.
func FormatDownloadSucceededMessage(event models.DownloadSucceededEvent) string {
	return NewMessageBuilder().
		WithTitleValue(TitleDownloadOK, event.Filename).
		AddField("📦 Size", formatSize(event.SizeBytes)).
		AddField("⚡ Speed", fmt.Sprintf("%.2f MB/s", downloadSpeed(event.SizeBytes, event.Duration))).
		AddField("⏱ Time", fmt.Sprintf("%.2f seconds", event.Duration.Seconds())).
		AddCodeField("💾 Saved as", event.StoredPath).
		Build()
}

// FormatDownloadFailedMessage reports the status code when there was one and
// an excerpt of the response or the error text.
func FormatDownloadFailedMessage(event models.DownloadFailedEvent) string {
	mb := NewMessageBuilder().WithTitleValue(TitleDownloadFail, event.Filename)
	detail := truncateString(event.Detail, MaxResponseExcerpt)
	if event.StatusCode > 0 {
		mb.AddField("Status code", fmt.Sprintf("%d", event.StatusCode)).
			AddCodeField("Response", detail)
	} else {
		mb.AddCodeField("Error", detail)
	}
	return mb.AddLine("🔁 Will retry on the next check").Build()
}

// FormatCheckErrorMessage reports a probe failure that did not clear on its own.
func FormatCheckErrorMessage(event models.CheckErrorEvent) string {
	return NewMessageBuilder().
		WithTitleValue(TitleCheckError, fmt.Sprintf("index %d", event.Index)).
		AddCodeField("Error", truncateString(event.Err, MaxErrorTextLength)).
		Build()
}

// FormatSystemErrorMessage points the operator at the log file.
func FormatSystemErrorMessage(err error, logFile string) string {
	text := "unknown error"
	if err != nil {
		text = err.Error()
	}
	mb := NewMessageBuilder().
		WithTitle(TitleSystemError).
		AddCodeField("Error", truncateString(text, MaxErrorTextLength))
	if logFile != "" {
		mb.AddCodeField("Please check log file", logFile)
	}
	return mb.Build()
}

// FormatStatusReportMessage escapes a plain-text report for HTML parse mode.
// The report is cut to the message limit before escaping.
func FormatStatusReportMessage(report string) string {
	return escapeHTML(truncateString(report, MaxMessageLength))
}

func formatInterval(d time.Duration) string {
	switch {
	case d <= 0:
		return "never"
	case d%time.Hour == 0:
		return pluralize(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return pluralize(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
