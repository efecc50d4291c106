package app

import (
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/Alijeyrad/jyotish_backend/config"
	"github.com/Alijeyrad/jyotish_backend/internal/service/appointment"
	"github.com/Alijeyrad/jyotish_backend/internal/service/auth"
	"github.com/Alijeyrad/jyotish_backend/internal/service/booking"
	"github.com/Alijeyrad/jyotish_backend/internal/service/bookingconfig"
	"github.com/Alijeyrad/jyotish_backend/internal/service/ledger"
	"github.com/Alijeyrad/jyotish_backend/internal/service/notification"
	"github.com/Alijeyrad/jyotish_backend/internal/service/slot"
	"github.com/Alijeyrad/jyotish_backend/internal/service/user"
	"github.com/Alijeyrad/jyotish_backend/internal/store"
	"github.com/Alijeyrad/jyotish_backend/pkg/email"
	"github.com/Alijeyrad/jyotish_backend/pkg/observability"
	"github.com/Alijeyrad/jyotish_backend/pkg/sms"
	"github.com/Alijeyrad/jyotish_backend/pkg/token"
	"github.com/Alijeyrad/jyotish_backend/pkg/util/password"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideTokenManager,
		ProvideHasher,
		ProvideSessions,
		ProvideBookingMetrics,
		ProvideLedger,
		ProvideBookingConfigService,
		ProvideSlotService,
		ProvideNotificationGateway,
		ProvideBookingService,
		ProvideAppointmentService,
		ProvideUserService,
		ProvideAuthService,
	),
)

func slotStep(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Booking.SlotMinutes) * time.Minute
}

func ProvideTokenManager(cfg *config.Config) (*token.Manager, error) {
	return token.NewFromConfig(cfg)
}

func ProvideHasher(cfg *config.Config) *password.Hasher {
	return password.NewHasher(password.FromCentralConfig(cfg))
}

func ProvideSessions(rdb *redis.Client) auth.SessionStore {
	return auth.NewRedisSessions(rdb)
}

// ProvideBookingMetrics takes the telemetry provider so the counters are
// created after the global meter is installed.
func ProvideBookingMetrics(_ *observability.Provider) *observability.BookingMetrics {
	return observability.NewBookingMetrics()
}

func ProvideLedger(st store.Store, cfg *config.Config) *ledger.Ledger {
	return ledger.New(st, cfg.Booking.Location(), slotStep(cfg))
}

func ProvideBookingConfigService(st store.Store, rdb *redis.Client, cfg *config.Config) bookingconfig.Service {
	ttl := time.Duration(cfg.Booking.ConfigCacheTTLSeconds) * time.Second
	return bookingconfig.New(st, bookingconfig.Options{
		Cache:    bookingconfig.NewRedisCache(rdb, ttl),
		SlotStep: slotStep(cfg),
		Logger:   slog.Default(),
	})
}

func ProvideSlotService(st store.Store, l *ledger.Ledger, cfgSvc bookingconfig.Service) slot.Service {
	return slot.New(st, l, cfgSvc)
}

func ProvideNotificationGateway(mailer *email.Client, texter *sms.Client, nc *nats.Conn, cfg *config.Config) *notification.Gateway {
	opts := notification.Options{
		SubjectPrefix: cfg.Nats.SubjectPrefix,
		Location:      cfg.Booking.Location(),
		Logger:        slog.Default(),
	}
	// a nil *nats.Conn must not become a non-nil Publisher
	if nc != nil {
		opts.Publisher = nc
	}
	return notification.NewGateway(mailer, texter, opts)
}

func ProvideBookingService(
	l *ledger.Ledger,
	slots slot.Service,
	cfgSvc bookingconfig.Service,
	gw *notification.Gateway,
	metrics *observability.BookingMetrics,
	cfg *config.Config,
) booking.Service {
	return booking.New(l, slots, cfgSvc, booking.Options{
		AdminBypass:   cfg.Booking.AdminBypass,
		EnforceWindow: cfg.Booking.EnforceWindow,
		Notifier:      gw,
		Metrics:       metrics,
		Logger:        slog.Default(),
	})
}

func ProvideAppointmentService(
	st store.Store,
	l *ledger.Ledger,
	v booking.Service,
	gw *notification.Gateway,
	metrics *observability.BookingMetrics,
	cfg *config.Config,
) appointment.Service {
	return appointment.New(st, l, v, appointment.Options{
		CompletionHour: cfg.Booking.CompletionHour,
		Notifier:       gw,
		Metrics:        metrics,
		Logger:         slog.Default(),
	})
}

func ProvideUserService(st store.Store, hasher *password.Hasher, cfg *config.Config) user.Service {
	return user.New(st, hasher, cfg.Booking.DefaultRegion)
}

func ProvideAuthService(
	st store.Store,
	sessions auth.SessionStore,
	tokens *token.Manager,
	hasher *password.Hasher,
	cfg *config.Config,
) auth.Service {
	return auth.New(st, sessions, tokens, hasher, auth.Options{
		SessionTTL: time.Duration(cfg.Authentication.SessionTTLMinutes) * time.Minute,
		Region:     cfg.Booking.DefaultRegion,
	})
}
