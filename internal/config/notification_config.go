package config

import "time"

// NotificationConfig defines configuration for the Telegram notification channel
type NotificationConfig struct {
	BotToken           string `json:"bot_token,omitempty" yaml:"bot_token,omitempty" env:"BOT_TOKEN" validate:"required"`
	ChatID             string `json:"chat_id,omitempty" yaml:"chat_id,omitempty" env:"CHAT_ID" validate:"required"`
	APIURL             string `json:"api_url,omitempty" yaml:"api_url,omitempty" env:"TELEGRAM_API_URL" validate:"required,url"`
	TimeoutSeconds     int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" env:"NOTIFY_TIMEOUT_SECONDS" validate:"min=1"`
	RetryAttempts      int    `json:"retry_attempts" yaml:"retry_attempts" env:"NOTIFY_RETRY_ATTEMPTS" validate:"min=0"`
	RetryBaseDelayMs   int    `json:"retry_base_delay_ms,omitempty" yaml:"retry_base_delay_ms,omitempty" env:"NOTIFY_RETRY_BASE_MS" validate:"min=0"`
	NotifyOnStartup    bool   `json:"notify_on_startup" yaml:"notify_on_startup" env:"NOTIFY_ON_STARTUP"`
	NotifyOnShutdown   bool   `json:"notify_on_shutdown" yaml:"notify_on_shutdown" env:"NOTIFY_ON_SHUTDOWN"`
	NotifyOnCheckError bool   `json:"notify_on_check_error" yaml:"notify_on_check_error" env:"NOTIFY_ON_CHECK_ERROR"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		APIURL:             DefaultTelegramAPIURL,
		TimeoutSeconds:     DefaultNotificationTimeoutSeconds,
		RetryAttempts:      DefaultNotificationRetryAttempts,
		RetryBaseDelayMs:   DefaultNotificationRetryBaseMillis,
		NotifyOnStartup:    true,
		NotifyOnShutdown:   true,
		NotifyOnCheckError: false,
	}
}

func (c NotificationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c NotificationConfig) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}
