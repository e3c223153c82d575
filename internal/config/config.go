package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aleister1102/filemonitor/internal/common/errorwrapper"
	"github.com/aleister1102/filemonitor/internal/common/filemanager"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 1 * 1024 * 1024

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	MonitorConfig      MonitorConfig      `json:"monitor_config,omitempty" yaml:"monitor_config,omitempty"`
	NotificationConfig NotificationConfig `json:"notification_config,omitempty" yaml:"notification_config,omitempty"`
	LogConfig          LogConfig          `json:"log_config,omitempty" yaml:"log_config,omitempty"`
	StorageConfig      StorageConfig      `json:"storage_config,omitempty" yaml:"storage_config,omitempty"`
	MetricsConfig      MetricsConfig      `json:"metrics_config,omitempty" yaml:"metrics_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		MonitorConfig:      NewDefaultMonitorConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		LogConfig:          NewDefaultLogConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
		MetricsConfig:      NewDefaultMetricsConfig(),
	}
}

// LoadOptions selects the sources LoadGlobalConfig reads from.
type LoadOptions struct {
	// ConfigPath is an optional YAML file. Falls back to GetConfigPath discovery.
	ConfigPath string
	// EnvFile is a dotenv file applied before the process environment. Defaults to ".env".
	EnvFile string
}

// LoadGlobalConfig builds the configuration from defaults, an optional YAML file,
// a dotenv file and the process environment, in that order. The result is not validated.
func LoadGlobalConfig(opts LoadOptions, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	filePath := GetConfigPath(opts.ConfigPath)
	if opts.ConfigPath != "" && filePath == "" {
		return nil, errorwrapper.NewConfigurationError(fmt.Sprintf("config file %q does not exist", opts.ConfigPath))
	}

	if filePath != "" {
		fm := filemanager.NewFileManager(logger)
		data, err := fm.ReadFile(filePath, maxConfigFileSize)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to load config file content")
		}
		if err := parseYAMLConfig(data, filePath, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse config content")
		}
		logger.Debug().Str("path", filePath).Msg("Loaded YAML configuration")
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := applyEnvironment(cfg, envFile, logger); err != nil {
		return nil, err
	}

	cfg.finalize()
	return cfg, nil
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %v", filePath, err)
	}
	return nil
}

// finalize derives values that depend on other fields.
func (c *GlobalConfig) finalize() {
	m := &c.MonitorConfig
	if m.BaseURL == "" && m.MonitorToken != "" {
		m.BaseURL = fmt.Sprintf(DefaultBaseURLFormat, m.MonitorToken)
	}
	m.BaseURL = strings.TrimRight(m.BaseURL, "/")
	m.Extensions = ParseExtensions(strings.Join(m.Extensions, ","))
	m.DownloadDir = filepath.Clean(m.DownloadDir)
	c.LogConfig.LogDir = filepath.Clean(c.LogConfig.LogDir)
	c.StorageConfig.Mirror.Prefix = strings.Trim(c.StorageConfig.Mirror.Prefix, "/")
}

// AbsDownloadDir returns the absolute download directory, or the configured value if it cannot be resolved.
func (c *GlobalConfig) AbsDownloadDir() string {
	return absOrSelf(c.MonitorConfig.DownloadDir)
}

// AbsLogDir returns the absolute log directory, or the configured value if it cannot be resolved.
func (c *GlobalConfig) AbsLogDir() string {
	return absOrSelf(c.LogConfig.LogDir)
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// EnsureDirectories creates the download and log directories.
func (c *GlobalConfig) EnsureDirectories(logger zerolog.Logger) error {
	fm := filemanager.NewFileManager(logger)
	for _, dir := range []string{c.MonitorConfig.DownloadDir, c.LogConfig.LogDir} {
		if err := fm.EnsureDirectory(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
