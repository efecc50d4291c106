package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/pkg/authorize"
	"github.com/Alijeyrad/jyotish_backend/pkg/token"
)

// RequirePermission checks the caller's role against the policy for
// resource/action. It must run after AuthRequired.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		claims, ok := token.ClaimsFromFiber(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		subject := authorize.RoleFor(claims.IsAdmin())
		if err := auth.MustEnforce(c.Context(), subject, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return fiber.ErrForbidden
			}
			return err
		}

		return c.Next()
	}
}
