package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/KeyFox/internal/pkg/licensing"
	"github.com/ManuelReschke/KeyFox/pkg/keyfox"
)

// statusForKeyError maps a validation failure onto the HTTP status and
// client-facing message of the key endpoints. Format and lookup
// failures are indistinguishable to the caller so a key probe cannot
// tell a malformed key from an unknown one.
func statusForKeyError(err error) (int, string) {
	var formatErr *licensing.FormatError
	var notFoundErr *licensing.NotFoundError
	var inactiveErr *licensing.SubscriptionInactiveError
	var validationErr *licensing.ValidationError
	var providerErr *keyfox.ProviderError

	switch {
	case errors.As(err, &formatErr), errors.As(err, &notFoundErr):
		return fiber.StatusUnauthorized, "Invalid API key"
	case errors.As(err, &inactiveErr):
		return fiber.StatusPaymentRequired, "No active subscription"
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Error()
	case errors.As(err, &providerErr):
		return fiber.StatusInternalServerError, providerErr.Error()
	default:
		return fiber.StatusInternalServerError, err.Error()
	}
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}

func jsonInvalidKey(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"valid": false, "error": msg})
}
