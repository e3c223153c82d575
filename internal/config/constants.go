package config

const (
	// Monitor Defaults
	DefaultBaseURLFormat          = "https://api.telegram.org/file/bot%s/documents"
	DefaultFilenameTemplate       = "file_{index}.{ext}"
	DefaultDownloadDir            = "downloaded_files"
	DefaultCheckIntervalMinutes   = 5
	DefaultReportIntervalHours    = 6
	DefaultStartIndex             = 0
	DefaultEndIndex               = 100
	DefaultSupportedExtensions    = "txt,zip"
	DefaultMaxWorkers             = 5
	DefaultProbeTimeoutSeconds    = 10
	DefaultDownloadTimeoutSeconds = 30

	// MaxIndexRange caps how many indices one cycle may check.
	MaxIndexRange = 100000

	// Notification Defaults
	DefaultTelegramAPIURL              = "https://api.telegram.org"
	DefaultNotificationTimeoutSeconds  = 10
	DefaultNotificationRetryAttempts   = 2
	DefaultNotificationRetryBaseMillis = 1000

	// Log Defaults
	DefaultLogDir        = "logs"
	DefaultLogFilePrefix = "file_monitor"
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Storage Defaults
	DefaultHistoryDBPath = "database/download_history.db"
	DefaultMirrorPrefix  = "filemonitor"

	// ConfigPathEnvVar points at an optional YAML config file.
	ConfigPathEnvVar = "FILEMONITOR_CONFIG_PATH"
	// DefaultEnvFile is read when present in the working directory.
	DefaultEnvFile = ".env"
)
