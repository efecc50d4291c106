package authorize

import (
	"context"
	"log/slog"
	"time"

	casbin "github.com/casbin/casbin/v2"

	"github.com/Alijeyrad/jyotish_backend/pkg/reqctx"
)

// AuditedAuthorization wraps an IAuthorization implementation with audit logging.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{
		inner:  inner,
		logger: logger,
	}
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject Role, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, object, action)

	attrs := []any{
		"role", string(subject),
		"resource", string(object),
		"action", string(action),
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	attrs = append(attrs, reqctx.LogAttrs(ctx)...)

	switch {
	case err != nil:
		attrs = append(attrs, "error", err.Error())
		a.logger.Error("authz_decision", attrs...)
	case allowed:
		a.logger.Debug("authz_decision", attrs...)
	default:
		a.logger.Warn("authz_decision", attrs...)
	}

	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject Role, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, role Role, object Resource, action Action, effect PolicyEffect) (bool, error) {
	added, err := a.inner.AddPermission(ctx, role, object, action, effect)
	a.logChange("add_permission", role, object, action, effect, added, err)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, role Role, object Resource, action Action, effect PolicyEffect) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, role, object, action, effect)
	a.logChange("remove_permission", role, object, action, effect, removed, err)
	return removed, err
}

func (a *AuditedAuthorization) logChange(op string, role Role, object Resource, action Action, effect PolicyEffect, changed bool, err error) {
	attrs := []any{
		"operation", op,
		"role", string(role),
		"resource", string(object),
		"action", string(action),
		"effect", string(effect),
		"changed", changed,
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
		a.logger.Error("authz_permission_change", attrs...)
		return
	}
	a.logger.Info("authz_permission_change", attrs...)
}

func (a *AuditedAuthorization) Raw() *casbin.SyncedEnforcer {
	return a.inner.Raw()
}
