package notifier

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/filemonitor/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatStartupMessage(t *testing.T) {
	msg := FormatStartupMessage(models.StartupInfo{
		DownloadDir:    "/srv/downloads",
		LogDir:         "/srv/logs",
		Extensions:     []string{"txt", "zip"},
		StartIndex:     0,
		EndIndex:       100,
		CheckInterval:  5 * time.Minute,
		ReportInterval: 6 * time.Hour,
	})

	assert.True(t, strings.HasPrefix(msg, TitleStartup))
	assert.Contains(t, msg, "📂 File save location: /srv/downloads")
	assert.Contains(t, msg, "📝 Supported file types: txt, zip")
	assert.Contains(t, msg, "📋 Log file location: /srv/logs")
	assert.Contains(t, msg, "Status report will be sent every 6 hours")
	assert.Contains(t, msg, "🔁 Check interval: 5 minutes")
	assert.Contains(t, msg, "Immediate notification for new files")
}

func TestFormatFileFoundMessage(t *testing.T) {
	msg := FormatFileFoundMessage(models.FileFoundEvent{Filename: "file_<2>.txt", SizeBytes: 3 * 1024 * 1024})
	assert.Contains(t, msg, "file_&lt;2&gt;.txt")
	assert.Contains(t, msg, "📦 Size: 3.00 MB")
	assert.Contains(t, msg, "Attempting to download")

	unknown := FormatFileFoundMessage(models.FileFoundEvent{Filename: "file_1.txt", SizeBytes: -1})
	assert.Contains(t, unknown, "📦 Size: unknown")
}

func TestFormatDownloadSucceededMessage(t *testing.T) {
	msg := FormatDownloadSucceededMessage(models.DownloadSucceededEvent{
		Filename:   "file_2.zip",
		StoredPath: "/srv/downloads/file_2.zip",
		SizeBytes:  4 * 1024 * 1024,
		Duration:   2 * time.Second,
	})
	assert.Contains(t, msg, "file_2.zip")
	assert.Contains(t, msg, "📦 Size: 4.00 MB")
	assert.Contains(t, msg, "⚡ Speed: 2.00 MB/s")
	assert.Contains(t, msg, "⏱ Time: 2.00 seconds")
}

func TestFormatDownloadFailedMessage(t *testing.T) {
	withStatus := FormatDownloadFailedMessage(models.DownloadFailedEvent{
		Filename:   "file_3.txt",
		StatusCode: 403,
		Detail:     strings.Repeat("a", 500),
	})
	assert.Contains(t, withStatus, "Status code: 403")
	assert.NotContains(t, withStatus, strings.Repeat("a", MaxResponseExcerpt))

	withError := FormatDownloadFailedMessage(models.DownloadFailedEvent{Filename: "file_3.txt", Detail: "disk full"})
	assert.Contains(t, withError, "Error: <code>disk full</code>")
	assert.NotContains(t, withError, "Status code")
}

func TestFormatSystemErrorMessage(t *testing.T) {
	msg := FormatSystemErrorMessage(errors.New("index range is empty"), "/srv/logs/file_monitor_20240101.log")
	assert.Contains(t, msg, TitleSystemError)
	assert.Contains(t, msg, "index range is empty")
	assert.Contains(t, msg, "file_monitor_20240101.log")
}

func TestFormatStatusReportMessage_Escapes(t *testing.T) {
	assert.Equal(t, "a &lt; b &amp; c", FormatStatusReportMessage("a < b & c"))
}

func TestFormatStatusReportMessage_LongReportKeepsEntitiesWhole(t *testing.T) {
	out := FormatStatusReportMessage(strings.Repeat("a&", 3000))

	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, strings.Count(out, "&"), strings.Count(out, "&amp;"))
}

func TestMessageBuilder_BuildKeepsEntitiesWhole(t *testing.T) {
	out := NewMessageBuilder().AddField("Error", strings.Repeat("&", 2000)).Build()

	assert.LessOrEqual(t, len(out), MaxMessageLength)
	body := strings.TrimSuffix(out, "...")
	assert.True(t, strings.HasSuffix(body, "&amp;"))
	assert.Equal(t, strings.Count(body, "&"), strings.Count(body, "&amp;"))
}

func TestTruncateHTML(t *testing.T) {
	assert.Equal(t, "a &lt; b", truncateHTML("a &lt; b", 20))
	assert.Equal(t, "x ...", truncateHTML("x &amp;&amp;&amp;", 9))
	assert.Equal(t, "ab ...", truncateHTML("ab <code>x</code>", 8))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcd...", truncateString("abcdefghij", 7))
	// Never splits a multi-byte rune.
	out := truncateString("ééééé", 6)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, "é...", out)
}
