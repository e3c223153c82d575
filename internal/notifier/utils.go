package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"
)

// escapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// truncateString shortens s to at most maxLength bytes without splitting a rune.
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return s[:maxLength]
	}
	cut := maxLength - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// truncateHTML is truncateString for escaped markup. The cut never ends
// inside an entity such as &amp; or inside a tag.
func truncateHTML(s string, maxLength int) string {
	if len(s) <= maxLength || maxLength <= 3 {
		return truncateString(s, maxLength)
	}
	body := strings.TrimSuffix(truncateString(s, maxLength), "...")
	if amp := strings.LastIndexByte(body, '&'); amp > strings.LastIndexByte(body, ';') {
		body = body[:amp]
	}
	if lt := strings.LastIndexByte(body, '<'); lt > strings.LastIndexByte(body, '>') {
		body = body[:lt]
	}
	return body + "..."
}

func bytesToMB(n int64) float64 {
	return float64(n) / (1024 * 1024)
}

// formatSize renders a byte count as MB, or "unknown" for negative sizes.
func formatSize(n int64) string {
	if n < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%.2f MB", bytesToMB(n))
}

// downloadSpeed returns MB/s, guarding against zero durations.
func downloadSpeed(n int64, d time.Duration) float64 {
	seconds := d.Seconds()
	if seconds <= 0 {
		return 0
	}
	return bytesToMB(n) / seconds
}
