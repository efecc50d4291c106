package authorize

import "github.com/Alijeyrad/jyotish_backend/config"

// Config holds configuration for the authorization system
type Config struct {
	// EnableAudit logs every authorization decision
	EnableAudit bool
}

func DefaultConfig() Config {
	return Config{EnableAudit: false}
}

// FromCentralConfig converts central config.AuthorizationConfig to package Config
func FromCentralConfig(c config.AuthorizationConfig) Config {
	return Config{EnableAudit: c.EnableAudit}
}
