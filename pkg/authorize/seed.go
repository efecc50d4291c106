package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies is the baseline policy set. Ownership of appointments and
// profiles is checked by the services; these rows only gate the role.
var DefaultPolicies = []PermissionPolicy{
	// Admin: everything
	{RoleAdmin, WildcardResource, WildcardAction, EffectAllow},

	// Client: own profile and sessions
	{RoleClient, ResourceUser, ActionRead, EffectAllow},
	{RoleClient, ResourceUser, ActionUpdate, EffectAllow},
	{RoleClient, ResourceUser, ActionDelete, EffectAllow},
	{RoleClient, ResourceAuthSession, ActionManage, EffectAllow},

	// Client: booking
	{RoleClient, ResourceAppointment, ActionCreate, EffectAllow},
	{RoleClient, ResourceAppointment, ActionRead, EffectAllow},
	{RoleClient, ResourceAppointment, ActionList, EffectAllow},
	{RoleClient, ResourceAppointment, ActionUpdate, EffectAllow},
	{RoleClient, ResourceAppointment, ActionCancel, EffectAllow},
	{RoleClient, ResourceAppointment, ActionDelete, EffectAllow},
	{RoleClient, ResourceAppointment, ActionExecute, EffectAllow},
	{RoleClient, ResourceSlot, ActionList, EffectAllow},
	{RoleClient, ResourceSlot, ActionRead, EffectAllow},
	{RoleClient, ResourceBookingConfig, ActionRead, EffectAllow},
	{RoleClient, ResourceBookingConfig, ActionList, EffectAllow},

	// Completing by hand and listing other users stay admin-only.
	{RoleClient, ResourceAppointment, ActionComplete, EffectDeny},
	{RoleClient, ResourceUser, ActionList, EffectDeny},
	{RoleClient, ResourceUser, ActionBlock, EffectDeny},
}

// SeedDefaultPolicies loads DefaultPolicies into the enforcer.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	for _, p := range DefaultPolicies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy", "role", p.Subject, "resource", p.Object, "action", p.Action, "effect", p.Effect)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(DefaultPolicies))
	return nil
}
