package config

// LogConfig defines configuration for logging
type LogConfig struct {
	LogDir        string `json:"log_dir,omitempty" yaml:"log_dir,omitempty" env:"LOG_DIR" validate:"required"`
	LogFilePrefix string `json:"log_file_prefix,omitempty" yaml:"log_file_prefix,omitempty" env:"LOG_FILE_PREFIX" validate:"required"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" env:"LOG_FORMAT" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" env:"LOG_LEVEL" validate:"omitempty,loglevel"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty" env:"MAX_LOG_BACKUPS"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty" env:"MAX_LOG_SIZE_MB"`
	Console       bool   `json:"console" yaml:"console" env:"LOG_CONSOLE"`
}

// NewDefaultLogConfig creates default log configuration
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogDir:        DefaultLogDir,
		LogFilePrefix: DefaultLogFilePrefix,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogBackups: DefaultMaxLogBackups,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
		Console:       true,
	}
}
