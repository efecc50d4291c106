package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/authorize"
	"github.com/Alijeyrad/jyotish_backend/pkg/database"
	"github.com/Alijeyrad/jyotish_backend/pkg/email"
	"github.com/Alijeyrad/jyotish_backend/pkg/observability"
	redispkg "github.com/Alijeyrad/jyotish_backend/pkg/redis"
	"github.com/Alijeyrad/jyotish_backend/pkg/sms"
)

// InfraModule provides all infrastructure dependencies.
var InfraModule = fx.Module("infra",
	fx.Provide(ProvidePool),
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRedis),
	fx.Provide(ProvideAuthorization),
	fx.Provide(ProvideEmailClient),
	fx.Provide(ProvideSMSClient),
	fx.Provide(ProvideOTel),
	fx.Provide(ProvideNatsClient),
)

func ProvidePool(lc fx.Lifecycle, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPoolFromCentral(context.Background(), cfg.Database)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing database pool")
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

// ProvideStore exposes the Postgres store, applying migrations first when
// database.auto_migrate is set.
func ProvideStore(pool *pgxpool.Pool, cfg *config.Config) (store.Store, error) {
	if cfg.Database.AutoMigrate {
		applied, err := store.Migrate(context.Background(), pool)
		if err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		if len(applied) > 0 {
			slog.Info("migrations applied", "files", applied)
		}
	}
	return store.New(pool), nil
}

func ProvideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	rdb, err := redispkg.NewRedisFromCentral(context.Background(), cfg.Redis)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("closing Redis connection")
			return rdb.Close()
		},
	})
	return rdb, nil
}

// ProvideAuthorization builds the in-memory casbin enforcer and seeds the
// role policies.
func ProvideAuthorization(cfg *config.Config) (authorize.IAuthorization, error) {
	enforcer, err := authorize.NewEnforcer()
	if err != nil {
		return nil, err
	}
	auth, err := authorize.NewAuthorization(enforcer)
	if err != nil {
		return nil, err
	}
	if err := authorize.SeedDefaultPolicies(context.Background(), auth); err != nil {
		return nil, err
	}
	if authorize.FromCentralConfig(cfg.Authorization).EnableAudit {
		auth = authorize.NewAuditedAuthorization(auth, slog.Default())
	}
	return auth, nil
}

func ProvideEmailClient(cfg *config.Config) *email.Client {
	return email.NewFromCentral(cfg.Email)
}

func ProvideSMSClient(cfg *config.Config) (*sms.Client, error) {
	return sms.NewFromConfig(cfg.SMS)
}

// ProvideNatsClient connects when nats.url is set. A nil connection means
// notifications are delivered in-process.
func ProvideNatsClient(lc fx.Lifecycle, cfg *config.Config) (*nats.Conn, error) {
	if cfg.Nats.URL == "" {
		slog.Info("nats disabled, notifications delivered inline")
		return nil, nil
	}
	nc, err := nats.Connect(cfg.Nats.URL, nats.Name(cfg.Observability.ServiceName))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("draining NATS connection")
			return nc.Drain()
		},
	})
	return nc, nil
}

func ProvideOTel(lc fx.Lifecycle, cfg *config.Config) (*observability.Provider, error) {
	if !cfg.Observability.Enabled {
		return nil, nil
	}
	provider, err := observability.InitTelemetry(context.Background(), observability.Config{
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Server.Environment,
		TracingEnabled: cfg.Observability.Tracing.Enabled,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		OTLPInsecure:   cfg.Observability.Tracing.OTLPInsecure,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("observability initialized",
		"tracing", cfg.Observability.Tracing.Enabled,
		"metrics", cfg.Observability.Metrics.Enabled,
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			slog.Debug("shutting down observability providers")
			return provider.Shutdown(ctx)
		},
	})
	return provider, nil
}
