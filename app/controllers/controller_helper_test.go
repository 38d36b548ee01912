package controllers

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/KeyFox/internal/pkg/licensing"
	"github.com/ManuelReschke/KeyFox/pkg/keyfox"
)

func TestStatusForKeyError(t *testing.T) {
	status, msg := statusForKeyError(&licensing.FormatError{Key: "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid API key", msg)

	// Unknown keys are indistinguishable from malformed ones.
	status, msg = statusForKeyError(&licensing.NotFoundError{What: "license key"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid API key", msg)

	status, msg = statusForKeyError(&licensing.SubscriptionInactiveError{CustomerID: "cus_1"})
	assert.Equal(t, fiber.StatusPaymentRequired, status)
	assert.Equal(t, "No active subscription", msg)

	status, _ = statusForKeyError(&licensing.ValidationError{Field: "plan", Msg: "unknown plan"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, msg = statusForKeyError(&keyfox.ProviderError{Op: "customer.list", Msg: "connection reset"})
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Contains(t, msg, "connection reset")

	status, _ = statusForKeyError(errors.New("anything else"))
	assert.Equal(t, fiber.StatusInternalServerError, status)
}
