package redis

import (
	"context"
	"testing"
	"time"

	"github.com/Alijeyrad/jyotish_backend/config"
)

func TestFromCentralConfig(t *testing.T) {
	got := FromCentralConfig(config.RedisConfig{
		Addr:               "cache:6379",
		DB:                 2,
		PoolSize:           0,
		ReadTimeoutSeconds: 9,
	})

	if got.Addr != "cache:6379" || got.DB != 2 {
		t.Errorf("unexpected addr/db: %+v", got)
	}
	if got.PoolSize != DefaultConfig().PoolSize {
		t.Errorf("PoolSize = %d, want default", got.PoolSize)
	}
	if got.ReadTimeout != 9*time.Second {
		t.Errorf("ReadTimeout = %v, want 9s", got.ReadTimeout)
	}
	if got.DialTimeout != DefaultConfig().DialTimeout {
		t.Errorf("DialTimeout = %v, want default", got.DialTimeout)
	}
}

func TestNewRedis_EmptyAddr(t *testing.T) {
	if _, err := NewRedis(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}
