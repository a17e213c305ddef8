package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Cache    CacheConfig    `yaml:"cache"`
	Notify   NotifyConfig   `yaml:"notify"`
	Feed     FeedConfig     `yaml:"feed"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CacheConfig bounds rule and list cache recomputation.
type CacheConfig struct {
	// RecomputeTimeout caps one rule or list recompute. On expiry the read
	// path serves the last cached value and leaves the dirty flag set.
	RecomputeTimeout time.Duration `yaml:"recompute_timeout" env:"CACHE_RECOMPUTE_TIMEOUT" env-default:"10s"`
}

// NotifyConfig holds change-notification settings.
type NotifyConfig struct {
	// SignificantStates is the set of document states whose entry counts
	// as a significant change. Membership test, not hard-coded matching.
	SignificantStates []string `yaml:"significant_states" env:"NOTIFY_SIGNIFICANT_STATES" env-default:"lc,iesg-approved,rfc,dead"`

	// QueueSize is the buffer of the async dispatch queue.
	QueueSize int `yaml:"queue_size" env:"NOTIFY_QUEUE_SIZE" env-default:"256"`

	// MailRetries and MailRetryDelay bound per-subscriber delivery retries.
	MailRetries    int           `yaml:"mail_retries"     env:"NOTIFY_MAIL_RETRIES"     env-default:"3"`
	MailRetryDelay time.Duration `yaml:"mail_retry_delay" env:"NOTIFY_MAIL_RETRY_DELAY" env-default:"2s"`

	// FromAddress is the sender of notification mail.
	FromAddress string `yaml:"from_address" env:"NOTIFY_FROM_ADDRESS" env-default:"docwatch@localhost"`

	// CatchUpInterval paces the worker's sweep for persisted events whose
	// fan-out never completed (dropped from a full queue, or lost to a
	// crash mid-dispatch). CatchUpBatch caps events per sweep.
	CatchUpInterval time.Duration `yaml:"catch_up_interval" env:"NOTIFY_CATCH_UP_INTERVAL" env-default:"1m"`
	CatchUpBatch    int           `yaml:"catch_up_batch"    env:"NOTIFY_CATCH_UP_BATCH"    env-default:"100"`
}

// FeedConfig bounds the Atom feed output.
type FeedConfig struct {
	MaxItems int           `yaml:"max_items" env:"FEED_MAX_ITEMS" env-default:"50"`
	Lookback time.Duration `yaml:"lookback"  env:"FEED_LOOKBACK"  env-default:"336h"`
	BaseURL  string        `yaml:"base_url"  env:"FEED_BASE_URL"  env-default:"http://localhost:8080"`
}
