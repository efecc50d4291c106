package database

import (
	"time"

	"github.com/Alijeyrad/jyotish_backend/config"
)

// Config holds database connection and pool settings
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Connection pooling
	MaxConns           int32
	MinConns           int32
	ConnMaxLifetimeMin int
	ConnMaxIdleTimeMin int
}

// DSN returns a PostgreSQL keyword/value connection string, accepted by both
// pgx and lib/pq.
func (c Config) DSN() string {
	return buildDSN(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return time.Hour
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

func (c Config) ConnMaxIdleTime() time.Duration {
	if c.ConnMaxIdleTimeMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.ConnMaxIdleTimeMin) * time.Minute
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		Host:               "localhost",
		Port:               5432,
		SSLMode:            "disable",
		MaxConns:           10,
		MinConns:           1,
		ConnMaxLifetimeMin: 60,
		ConnMaxIdleTimeMin: 30,
	}
}

// FromCentralConfig converts central config.DatabaseConfig to package Config
func FromCentralConfig(c config.DatabaseConfig) Config {
	out := Config{
		Host:               c.Host,
		Port:               c.Port,
		User:               c.User,
		Password:           c.Password,
		DBName:             c.DBName,
		SSLMode:            c.SSLMode,
		MaxConns:           c.Pool.MaxConns,
		MinConns:           c.Pool.MinConns,
		ConnMaxLifetimeMin: c.Pool.ConnMaxLifetimeMin,
		ConnMaxIdleTimeMin: c.Pool.ConnMaxIdleTimeMin,
	}
	def := DefaultConfig()
	if out.SSLMode == "" {
		out.SSLMode = def.SSLMode
	}
	if out.MaxConns <= 0 {
		out.MaxConns = def.MaxConns
	}
	return out
}

// NewDSN creates a DSN string from central config.DatabaseConfig
func NewDSN(c config.DatabaseConfig) string {
	return FromCentralConfig(c).DSN()
}
