package notifier

import (
	"fmt"
	"strings"
)

// MessageBuilder assembles an HTML-mode Telegram message line by line.
// Dynamic values are escaped; titles and labels are trusted.
type MessageBuilder struct {
	title string
	lines []string
}

// NewMessageBuilder creates a new message builder
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{}
}

// WithTitle sets the first line of the message
func (mb *MessageBuilder) WithTitle(title string) *MessageBuilder {
	mb.title = title
	return mb
}

// WithTitleValue sets a title of the form "title: value"
func (mb *MessageBuilder) WithTitleValue(title, value string) *MessageBuilder {
	mb.title = fmt.Sprintf("%s: <b>%s</b>", title, escapeHTML(value))
	return mb
}

// AddField adds a "icon label: value" line
func (mb *MessageBuilder) AddField(label, value string) *MessageBuilder {
	mb.lines = append(mb.lines, fmt.Sprintf("%s: %s", label, escapeHTML(value)))
	return mb
}

// AddCodeField adds a line whose value is rendered monospaced
func (mb *MessageBuilder) AddCodeField(label, value string) *MessageBuilder {
	mb.lines = append(mb.lines, fmt.Sprintf("%s: <code>%s</code>", label, escapeHTML(value)))
	return mb
}

// AddLine adds a literal line
func (mb *MessageBuilder) AddLine(line string) *MessageBuilder {
	mb.lines = append(mb.lines, line)
	return mb
}

// Build renders the message, trimmed to the Bot API limit
func (mb *MessageBuilder) Build() string {
	parts := make([]string, 0, len(mb.lines)+1)
	if mb.title != "" {
		parts = append(parts, mb.title)
	}
	parts = append(parts, mb.lines...)
	return truncateHTML(strings.Join(parts, "\n"), MaxMessageLength)
}
