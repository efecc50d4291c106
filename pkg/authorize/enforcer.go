package authorize

import (
	"fmt"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Model is the RBAC model: role subjects, flat resources, allow/deny effects.
// "manage" grants every action except execute.
const Model = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act, eft

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = (r.sub == p.sub || g(r.sub, p.sub)) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act || (p.act == "manage" && r.act != "execute"))
`

// NewEnforcer builds an in-memory enforcer. Policies are seeded at startup
// by SeedDefaultPolicies and never persisted.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(Model)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	e.EnableAutoSave(false)
	e.EnableEnforce(true)

	return e, nil
}
