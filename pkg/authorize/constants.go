package authorize

type Action string
type Resource string
type Role string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Power actions
	ActionManage  Action = "manage"  // CRUD + list
	ActionExecute Action = "execute" // sweeps, batch jobs

	// Lifecycle actions
	ActionCancel   Action = "cancel"
	ActionComplete Action = "complete"
	ActionBlock    Action = "block"
)

const (
	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionManage: {}, ActionExecute: {},
	ActionCancel: {}, ActionComplete: {}, ActionBlock: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	// Identity / auth
	ResourceUser        Resource = "user"
	ResourceAuthSession Resource = "auth_session"

	// Scheduling
	ResourceAppointment   Resource = "appointment"
	ResourceSlot          Resource = "slot"
	ResourceBookingConfig Resource = "booking_config"
)

var KnownResources = map[Resource]struct{}{
	ResourceUser: {}, ResourceAuthSession: {},
	ResourceAppointment: {}, ResourceSlot: {}, ResourceBookingConfig: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Users carry a single is_admin flag; the role is derived from it per request.

const (
	WildcardRole Role = "*"

	RoleAdmin  Role = "role:admin"
	RoleClient Role = "role:client"
)

var KnownRoles = map[Role]struct{}{
	RoleAdmin:  {},
	RoleClient: {},
}

// RoleFor maps the user's admin flag to a policy subject.
func RoleFor(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleClient
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// Permission rows: p, role, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
