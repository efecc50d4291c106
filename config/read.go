package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Alijeyrad/jyotish_backend/pkg/constants"
)

var GlobalConf *Config

func ReadConfig(configPath string) (*Config, error) {
	// A .env next to the binary is optional; real env always wins.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName(constants.ConfigName)
	v.SetConfigType(constants.ConfigFormat)
	v.AddConfigPath(configPath)

	// e.g. JYOTISH_DATABASE_HOST overrides database.host
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Container deployments configure through env only.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func MustReadConfig(path string) *Config {
	config, err := ReadConfig(path)
	if err != nil {
		panic(err)
	}

	GlobalConf = config

	return config
}

// setDefaults registers every key so AutomaticEnv can bind it even when the
// config file omits the section.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.databases", []string{"jyotish"})
	v.SetDefault("server.rate_limit.max", 60)
	v.SetDefault("server.rate_limit.window_seconds", 60)
	v.SetDefault("server.rate_limit.auth_per_minute", 10)
	v.SetDefault("server.rate_limit.auth_burst", 5)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "jyotish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.pool.max_conns", 10)
	v.SetDefault("database.pool.min_conns", 1)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("authentication.jwt.secret", "")
	v.SetDefault("authentication.jwt.issuer", constants.AppName)
	v.SetDefault("authentication.jwt.audience", constants.AppName)
	v.SetDefault("authentication.jwt.access_ttl_minutes", 60)
	v.SetDefault("authentication.session_ttl_minutes", 7*24*60)
	v.SetDefault("authentication.min_password_length", 8)

	v.SetDefault("authorization.enable_audit", true)

	v.SetDefault("booking.timezone", "Asia/Kolkata")
	v.SetDefault("booking.slot_minutes", 15)
	v.SetDefault("booking.completion_hour", 19)
	v.SetDefault("booking.admin_bypass", false)
	v.SetDefault("booking.enforce_window", false)
	v.SetDefault("booking.config_cache_ttl_seconds", 60)
	v.SetDefault("booking.sweep_interval_minutes", 30)
	v.SetDefault("booking.default_region", "IN")

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.app_name", "Jyotish")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.timeout_seconds", 30)

	v.SetDefault("sms.enabled", false)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", constants.AppName)

	v.SetDefault("observability.service_name", "jyotish_backend")
	v.SetDefault("observability.metrics.path", "/metrics")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output.stdout", true)
}
