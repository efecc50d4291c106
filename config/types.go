package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Authorization  AuthorizationConfig  `mapstructure:"authorization"`
	Booking        BookingConfig        `mapstructure:"booking"`
	Email          EmailConfig          `mapstructure:"email"`
	SMS            SMSConfig            `mapstructure:"sms"`
	Password       PasswordConfig       `mapstructure:"password"`
	Observability  ObservabilityConfig  `mapstructure:"observability"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Nats           NatsConfig           `mapstructure:"nats"`
}

type NatsConfig struct {
	// URL is optional. When empty, notifications are dispatched in-process.
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type DatabaseConfig struct {
	Host     string             `mapstructure:"host"`
	Port     int                `mapstructure:"port"`
	User     string             `mapstructure:"user"`
	Password string             `mapstructure:"password"`
	DBName   string             `mapstructure:"dbname"`
	SSLMode  string             `mapstructure:"sslmode"`
	Pool     DatabasePoolConfig `mapstructure:"pool"`
	// AutoMigrate applies embedded migrations when the HTTP server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

type DatabasePoolConfig struct {
	MaxConns           int32 `mapstructure:"max_conns"`
	MinConns           int32 `mapstructure:"min_conns"`
	ConnMaxLifetimeMin int   `mapstructure:"conn_max_lifetime_minutes"`
	ConnMaxIdleTimeMin int   `mapstructure:"conn_max_idle_minutes"`
}

type RedisConfig struct {
	Addr                string `mapstructure:"addr"`
	DB                  int    `mapstructure:"db"`
	Username            string `mapstructure:"username"`
	Password            string `mapstructure:"password"`
	PoolSize            int    `mapstructure:"pool_size"`
	MinIdleConns        int    `mapstructure:"min_idle_conns"`
	DialTimeoutSeconds  int    `mapstructure:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

type ServerConfig struct {
	Port           int        `mapstructure:"port"`
	TimeoutSeconds int        `mapstructure:"timeout_seconds"`
	Environment    string     `mapstructure:"environment"`
	Databases      []string   `mapstructure:"databases"`
	CORS           CORSConfig `mapstructure:"cors"`
	RateLimit      RateLimit  `mapstructure:"rate_limit"`
}

type RateLimit struct {
	// Global limiter, backed by redis, production only.
	Max           int `mapstructure:"max"`
	WindowSeconds int `mapstructure:"window_seconds"`
	// Per-IP token bucket on the public auth endpoints.
	AuthPerMinute int `mapstructure:"auth_per_minute"`
	AuthBurst     int `mapstructure:"auth_burst"`
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAgeSeconds    int      `mapstructure:"max_age_seconds"`
}

type AuthenticationConfig struct {
	JWT               JWTConfig `mapstructure:"jwt"`
	SessionTTLMinutes int       `mapstructure:"session_ttl_minutes"`
	MinPasswordLength int       `mapstructure:"min_password_length"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
}

type AuthorizationConfig struct {
	EnableAudit bool `mapstructure:"enable_audit"`
}

// BookingConfig carries process-level scheduling settings. Business rules
// that admins change at runtime (grid hours, disabled days, window) live in
// the booking_configurations table instead.
type BookingConfig struct {
	Timezone              string `mapstructure:"timezone"`
	SlotMinutes           int    `mapstructure:"slot_minutes"`
	CompletionHour        int    `mapstructure:"completion_hour"`
	AdminBypass           bool   `mapstructure:"admin_bypass"`
	EnforceWindow         bool   `mapstructure:"enforce_window"`
	ConfigCacheTTLSeconds int    `mapstructure:"config_cache_ttl_seconds"`
	SweepIntervalMinutes  int    `mapstructure:"sweep_interval_minutes"`
	DefaultRegion         string `mapstructure:"default_region"`
}

// Location resolves the configured timezone, falling back to UTC.
func (b BookingConfig) Location() *time.Location {
	if b.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type EmailConfig struct {
	Enabled bool       `mapstructure:"enabled"`
	From    string     `mapstructure:"from"`
	AppName string     `mapstructure:"app_name"`
	SMTP    SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	UseTLS         bool   `mapstructure:"use_tls"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type SMSConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	SMSIR   SMSIRConfig `mapstructure:"smsir"`
}

type SMSIRConfig struct {
	APIKey                 string `mapstructure:"api_key"`
	SecretKey              string `mapstructure:"secret_key"`
	ConfirmationTemplateID string `mapstructure:"confirmation_template_id"`
	CancellationTemplateID string `mapstructure:"cancellation_template_id"`
}

type PasswordConfig struct {
	MemoryKiB   uint32 `mapstructure:"memory_kib"`
	Iterations  uint32 `mapstructure:"iterations"`
	Parallelism uint8  `mapstructure:"parallelism"`
	SaltLength  uint32 `mapstructure:"salt_length"`
	KeyLength   uint32 `mapstructure:"key_length"`
}

type ObservabilityConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	ServiceName    string        `mapstructure:"service_name"`
	ServiceVersion string        `mapstructure:"service_version"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	Metrics        MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string       `mapstructure:"level"`  // debug, info, warn, error
	Format string       `mapstructure:"format"` // text, json
	Output OutputConfig `mapstructure:"output"`
}

type OutputConfig struct {
	Stdout bool          `mapstructure:"stdout"`
	File   FileLogConfig `mapstructure:"file"`
	Loki   LokiConfig    `mapstructure:"loki"`
}

type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type LokiConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"` // e.g. "http://localhost:3100"
	TenantID string `mapstructure:"tenant_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if strings.TrimSpace(c.Authentication.JWT.Secret) == "" {
		errs = append(errs, errors.New("authentication.jwt.secret is required"))
	}
	if c.Booking.Timezone != "" {
		if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("booking.timezone: %w", err))
		}
	}
	if c.Booking.CompletionHour < 0 || c.Booking.CompletionHour > 23 {
		errs = append(errs, fmt.Errorf("booking.completion_hour out of range: %d", c.Booking.CompletionHour))
	}
	if c.Booking.SlotMinutes <= 0 || 60%c.Booking.SlotMinutes != 0 {
		errs = append(errs, fmt.Errorf("booking.slot_minutes must divide 60: %d", c.Booking.SlotMinutes))
	}
	if c.Email.Enabled && c.Email.From == "" {
		errs = append(errs, errors.New("email.from is required when email is enabled"))
	}
	if c.Logging.Output.Loki.Enabled && c.Logging.Output.Loki.Endpoint == "" {
		errs = append(errs, errors.New("logging.output.loki.endpoint is required when loki is enabled"))
	}

	return errors.Join(errs...)
}
