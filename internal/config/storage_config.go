package config

// StorageConfig defines where download history and mirrored copies go
type StorageConfig struct {
	// HistoryDBPath is the sqlite file for the download audit log. Empty disables it.
	HistoryDBPath string       `json:"history_db_path" yaml:"history_db_path" env:"HISTORY_DB_PATH"`
	Mirror        MirrorConfig `json:"mirror,omitempty" yaml:"mirror,omitempty"`
}

// MirrorConfig configures the optional S3-compatible copy of every downloaded file
type MirrorConfig struct {
	Endpoint  string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"MIRROR_ENDPOINT"`
	Bucket    string `json:"bucket,omitempty" yaml:"bucket,omitempty" env:"MIRROR_BUCKET" validate:"required_with=Endpoint"`
	AccessKey string `json:"access_key,omitempty" yaml:"access_key,omitempty" env:"MIRROR_ACCESS_KEY" validate:"required_with=Endpoint"`
	SecretKey string `json:"secret_key,omitempty" yaml:"secret_key,omitempty" env:"MIRROR_SECRET_KEY" validate:"required_with=Endpoint"`
	Region    string `json:"region,omitempty" yaml:"region,omitempty" env:"MIRROR_REGION"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty" env:"MIRROR_PREFIX"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl" env:"MIRROR_USE_SSL"`
}

// Enabled reports whether mirroring was configured
func (c MirrorConfig) Enabled() bool {
	return c.Endpoint != ""
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		HistoryDBPath: DefaultHistoryDBPath,
		Mirror: MirrorConfig{
			Prefix: DefaultMirrorPrefix,
			UseSSL: true,
		},
	}
}

// MetricsConfig defines the optional metrics and status HTTP endpoint
type MetricsConfig struct {
	// ListenAddr such as ":9102". Empty disables the server.
	ListenAddr string `json:"listen_addr" yaml:"listen_addr" env:"METRICS_ADDR" validate:"omitempty,hostname_port"`
}

// NewDefaultMetricsConfig creates default metrics configuration
func NewDefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{ListenAddr: ""}
}
