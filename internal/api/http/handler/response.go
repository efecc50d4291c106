package handler

import "github.com/gofiber/fiber/v3"

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// fail writes {"error": msg, "code": code} plus any extra fields.
func fail(c fiber.Ctx, status int, code, msg string, extra fiber.Map) error {
	body := fiber.Map{"error": msg, "code": code}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

func badRequest(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusBadRequest, "validation_error", msg, nil)
}

func unauthorized(c fiber.Ctx) error {
	return fail(c, fiber.StatusUnauthorized, "unauthorized", "unauthorized", nil)
}

func forbidden(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusForbidden, "forbidden", msg, nil)
}

func notFound(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusNotFound, "not_found", msg, nil)
}

func conflict(c fiber.Ctx, msg string) error {
	return fail(c, fiber.StatusConflict, "conflict", msg, nil)
}

func internalError(c fiber.Ctx) error {
	return fail(c, fiber.StatusInternalServerError, "internal_error", "internal server error", nil)
}
