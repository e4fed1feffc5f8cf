package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Analysis AnalysisConfig `mapstructure:"analysis" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend: "postgres" or "sqlite".
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`

	// URL is a postgres connection URL, or a file path / DSN for sqlite.
	URL string `mapstructure:"url" validate:"required"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// Supported analysis API variants.
const (
	AnalysisVariantCurrent = "current"
	AnalysisVariantLegacy  = "legacy"
)

// AnalysisConfig configures the outbound client for the remote analysis service.
type AnalysisConfig struct {
	// BaseURL is the root of the analysis service; requests go to {BaseURL}/analyze.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Timeout bounds a single remote call, including reading the body.
	Timeout time.Duration `mapstructure:"timeout" validate:"required,gt=0"`

	// APIVariant selects the request body shape sent to the service.
	APIVariant string `mapstructure:"api_variant" validate:"required,oneof=current legacy"`
}

// PipelineConfig configures the rate-limited analysis pipeline.
type PipelineConfig struct {
	QueueCapacity  int           `mapstructure:"queue_capacity" validate:"required,gt=0"`
	TickPeriod     time.Duration `mapstructure:"tick_period" validate:"required,gt=0"`
	MaxRetryCount  int           `mapstructure:"max_retry_count" validate:"gte=0"`
	WorkerCount    int           `mapstructure:"worker_count" validate:"required,gt=0"`
	WorkerBacklog  int           `mapstructure:"worker_backlog" validate:"required,gt=0"`
	RecoverOnStart bool          `mapstructure:"recover_on_start"`
}
