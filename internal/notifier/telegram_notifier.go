package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/common/httpclient"
	"github.com/aleister1102/filemonitor/internal/config"
	"github.com/aleister1102/filemonitor/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxTelegramResponseSize = 1 << 20

// TelegramNotifier talks to the Telegram Bot API. The bot token is part of
// every request path and is never logged.
type TelegramNotifier struct {
	logger     zerolog.Logger
	httpClient *http.Client
	retry      *httpclient.RetryHandler
	apiURL     string
	botToken   string
	chatID     string
}

// NewTelegramNotifier creates a notifier for cfg. A nil httpClient gets a
// client built with the configured timeout.
func NewTelegramNotifier(cfg config.NotificationConfig, httpClient *http.Client, logger zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.BotToken == "" {
		return nil, errorwrapper.NewValidationError("BOT_TOKEN", "", "bot token is required")
	}
	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, errorwrapper.NewValidationError("TELEGRAM_API_URL", cfg.APIURL, "must be an absolute URL")
	}

	moduleLogger := logger.With().Str("component", "TelegramNotifier").Logger()
	if httpClient == nil {
		httpClient = httpclient.NewHTTPClientBuilder(moduleLogger).
			WithTimeout(cfg.Timeout()).
			Build()
	}

	retryCfg := httpclient.DefaultRetryHandlerConfig()
	retryCfg.MaxRetries = cfg.RetryAttempts
	retryCfg.BaseDelay = cfg.RetryBaseDelay()

	return &TelegramNotifier{
		logger:     moduleLogger,
		httpClient: httpClient,
		retry:      httpclient.NewRetryHandler(retryCfg, moduleLogger),
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
	}, nil
}

func (tn *TelegramNotifier) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", tn.apiURL, tn.botToken, method)
}

// SendMessage posts text to the configured chat with HTML parse mode.
func (tn *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	if tn.chatID == "" {
		return errorwrapper.NewValidationError("CHAT_ID", "", "chat id is not configured")
	}

	body, err := json.Marshal(models.TelegramMessagePayload{
		ChatID:                tn.chatID,
		Text:                  text,
		ParseMode:             ParseModeHTML,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return errorwrapper.WrapError(err, "failed to marshal telegram payload")
	}

	resp, err := tn.retry.DoWithRetry(ctx, tn.httpClient, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, tn.methodURL("sendMessage"), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return errorwrapper.WrapError(httpclient.RedactError(err), "failed to send telegram message")
	}
	defer resp.Body.Close()

	if _, err := tn.decodeResponse(resp); err != nil {
		return errorwrapper.WrapError(err, "telegram rejected message")
	}
	tn.logger.Debug().Int("length", len(text)).Msg("Telegram message sent")
	return nil
}

// RecentChats returns the distinct chats that recently wrote to the bot,
// newest first. It is used to find the chat id during setup.
func (tn *TelegramNotifier) RecentChats(ctx context.Context) ([]models.TelegramChat, error) {
	resp, err := tn.retry.DoWithRetry(ctx, tn.httpClient, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, tn.methodURL("getUpdates"), nil)
	})
	if err != nil {
		return nil, errorwrapper.WrapError(httpclient.RedactError(err), "failed to fetch telegram updates")
	}
	defer resp.Body.Close()

	decoded, err := tn.decodeResponse(resp)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "telegram rejected getUpdates")
	}

	var updates []models.TelegramUpdate
	if len(decoded.Result) > 0 {
		if err := json.Unmarshal(decoded.Result, &updates); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to decode telegram updates")
		}
	}

	var chats []models.TelegramChat
	seen := make(map[int64]struct{})
	for i := len(updates) - 1; i >= 0; i-- {
		msg := updates[i].Message
		if msg == nil {
			continue
		}
		if _, dup := seen[msg.Chat.ID]; dup {
			continue
		}
		seen[msg.Chat.ID] = struct{}{}
		chats = append(chats, msg.Chat)
	}
	if len(chats) == 0 {
		return nil, errorwrapper.WrapError(errorwrapper.ErrNotFound, "no chats found, send the bot a message first")
	}
	return chats, nil
}

func (tn *TelegramNotifier) decodeResponse(resp *http.Response) (*models.TelegramResponse, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTelegramResponseSize))
	if err != nil {
		return nil, errorwrapper.WrapError(err, "failed to read telegram response")
	}

	var decoded models.TelegramResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, errorwrapper.NewHTTPErrorWithURL(resp.StatusCode, truncateString(string(raw), MaxResponseExcerpt), "")
		}
		return nil, errorwrapper.WrapError(err, "failed to decode telegram response")
	}

	if !decoded.OK || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		status := decoded.ErrorCode
		if status == 0 {
			status = resp.StatusCode
		}
		return nil, errorwrapper.NewHTTPErrorWithURL(status, decoded.Description, "")
	}
	return &decoded, nil
}
