package password

import "github.com/Alijeyrad/jyotish_backend/config"

// Config holds Argon2id password hashing parameters. Zero fields take the
// values of DefaultParams.
type Config struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// MinLength is enforced by Hasher.Validate before hashing.
	MinLength int
}

func (c Config) params() Params {
	d := DefaultParams()
	if c.MemoryKiB != 0 {
		d.Memory = c.MemoryKiB
	}
	if c.Iterations != 0 {
		d.Iterations = c.Iterations
	}
	if c.Parallelism != 0 {
		d.Parallelism = c.Parallelism
	}
	if c.SaltLength != 0 {
		d.SaltLength = c.SaltLength
	}
	if c.KeyLength != 0 {
		d.KeyLength = c.KeyLength
	}
	return d
}

// FromCentralConfig converts central config to package Config
func FromCentralConfig(c *config.Config) Config {
	return Config{
		MemoryKiB:   c.Password.MemoryKiB,
		Iterations:  c.Password.Iterations,
		Parallelism: c.Password.Parallelism,
		SaltLength:  c.Password.SaltLength,
		KeyLength:   c.Password.KeyLength,
		MinLength:   c.Authentication.MinPasswordLength,
	}
}
