package models

import (
	"encoding/json"
	"time"
)

// TelegramMessagePayload is the JSON body of a Bot API sendMessage call.
type TelegramMessagePayload struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// TelegramResponse is the envelope every Bot API method answers with. Result
// is method specific and decoded by the caller.
type TelegramResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// TelegramUpdate is one entry returned by getUpdates. Only the fields needed
// to find a chat id are decoded.
type TelegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *TelegramMessage `json:"message,omitempty"`
}

// TelegramMessage is the subset of a Bot API message used here.
type TelegramMessage struct {
	MessageID int64        `json:"message_id"`
	Chat      TelegramChat `json:"chat"`
	Text      string       `json:"text,omitempty"`
}

// TelegramChat identifies the chat a message belongs to.
type TelegramChat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"`
	Username string `json:"username,omitempty"`
	Title    string `json:"title,omitempty"`
}

// FileFoundEvent is the first half of a discovery notification.
type FileFoundEvent struct {
	Index     int
	Filename  string
	RemoteURL string
	// SizeBytes comes from the probe's Content-Length; negative when unknown.
	SizeBytes int64
}

// DownloadSucceededEvent is sent after a discovered file was stored.
type DownloadSucceededEvent struct {
	Index      int
	Filename   string
	StoredPath string
	SizeBytes  int64
	Duration   time.Duration
}

// DownloadFailedEvent is sent when a discovered file could not be stored.
type DownloadFailedEvent struct {
	Index      int
	Filename   string
	StatusCode int    // 0 when the failure was not an HTTP status
	Detail     string // response body excerpt or error text
}

// CheckErrorEvent describes a non-transient probe failure.
type CheckErrorEvent struct {
	Index int
	Err   string
}

// StartupInfo feeds the startup notification.
type StartupInfo struct {
	DownloadDir    string
	LogDir         string
	Extensions     []string
	StartIndex     int
	EndIndex       int
	CheckInterval  time.Duration
	ReportInterval time.Duration
	RunID          string
}
