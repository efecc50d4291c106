package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/jyotish_backend/internal/service/auth"
	"github.com/Alijeyrad/jyotish_backend/pkg/reqctx"
	"github.com/Alijeyrad/jyotish_backend/pkg/token"
)

// AuthRequired validates a Bearer access token and its backing session.
// On success it stores *token.Claims in c.Locals(token.CtxKeyClaims) and on
// the user context.
func AuthRequired(svc auth.Service) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw, ok := token.BearerFromHeader(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		claims, err := svc.Authenticate(c.Context(), raw)
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(token.CtxKeyClaims, claims)
		c.SetContext(reqctx.WithClaims(c.Context(), claims))
		return c.Next()
	}
}
