package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"tienda/internal/domain"
	applog "tienda/internal/log"
)

func success(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "payload": payload})
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "error": msg})
}

// failFrom maps engine errors to stable statuses. Anything outside the
// taxonomy is a store failure: logged with detail, reported without it.
func failFrom(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return fail(c, fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, domain.ErrDuplicateCode):
		return fail(c, fiber.StatusBadRequest, "the code field must be unique")
	case errors.Is(err, domain.ErrProductNotFound):
		return fail(c, fiber.StatusNotFound, "product not found")
	case errors.Is(err, domain.ErrCartNotFound):
		return fail(c, fiber.StatusNotFound, "cart not found")
	case errors.Is(err, domain.ErrLineNotFound):
		return fail(c, fiber.StatusNotFound, "product not in cart")
	default:
		applog.Error(c, "store.error", err, nil)
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}
}
