package authorize

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Alijeyrad/jyotish_backend/pkg/reqctx"
)

var (
	ErrNoSubjectInContext = errors.New("no subject found in context")
)

// SubjectFromContext derives the policy role from the request claims.
func SubjectFromContext(ctx context.Context) (Role, error) {
	claims := reqctx.ClaimsFromContext(ctx)
	if claims == nil || claims.GetUserID() == uuid.Nil {
		return "", ErrNoSubjectInContext
	}
	return RoleFor(claims.IsAdmin()), nil
}

// Require enforces resource/action for the caller in ctx.
func Require(ctx context.Context, auth IAuthorization, object Resource, action Action) error {
	role, err := SubjectFromContext(ctx)
	if err != nil {
		return err
	}
	return auth.MustEnforce(ctx, role, object, action)
}
