package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/KeyFox/internal/pkg/licensing"
	"github.com/ManuelReschke/KeyFox/pkg/keyfox"
)

// Locals keys set by LicenseAuthMiddleware.
const (
	KeyCustomerID     = "CUSTOMER_ID"
	KeyCustomerEmail  = "CUSTOMER_EMAIL"
	KeySubscriptionID = "SUBSCRIPTION_ID"
)

// LicenseAuthMiddleware authenticates requests carrying a license key
// header and meters one unit of usage per request.
func LicenseAuthMiddleware(svc *licensing.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := extractLicenseKeyFromHeader(c)
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing API key"})
		}

		info, err := svc.Validate(c.UserContext(), key, true)
		if err != nil {
			var inactiveErr *licensing.SubscriptionInactiveError
			var providerErr *keyfox.ProviderError
			switch {
			case errors.As(err, &inactiveErr):
				return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "payment_required", "message": "No active subscription"})
			case errors.As(err, &providerErr):
				log.Errorf("license lookup failed: %v", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "License verification failed"})
			default:
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid API key"})
			}
		}

		c.Locals(KeyCustomerID, info.CustomerID)
		c.Locals(KeyCustomerEmail, info.Email)
		c.Locals(KeySubscriptionID, info.SubscriptionID)

		return c.Next()
	}
}

func extractLicenseKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
