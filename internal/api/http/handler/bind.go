package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/jyotish_backend/pkg/token"
)

// StructValidator plugs validator/v10 into fiber's binder so every
// c.Bind() call validates `validate` tags.
type StructValidator struct {
	v *validator.Validate
}

func NewStructValidator() *StructValidator {
	return &StructValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (s *StructValidator) Validate(out any) error {
	return s.v.Struct(out)
}

// invalidBody reports a bind failure, naming the failing fields when the
// validator produced them.
func invalidBody(c fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return badRequest(c, "invalid request body")
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return badRequest(c, strings.Join(parts, "; "))
}

func paramUUID(c fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// parseInstant accepts RFC 3339 timestamps.
func parseInstant(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func claimsOrNil(c fiber.Ctx) *token.Claims {
	cl, _ := token.ClaimsFromFiber(c)
	return cl
}
