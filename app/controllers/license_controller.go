package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/KeyFox/app/models"
	"github.com/ManuelReschke/KeyFox/internal/pkg/jobqueue"
	"github.com/ManuelReschke/KeyFox/internal/pkg/licensing"
	"github.com/ManuelReschke/KeyFox/internal/pkg/metrics/counter"
)

var licenseService *licensing.Service

// InitializeLicenseController wires the licensing service into the key
// endpoints. Must run before routes are installed.
func InitializeLicenseController(svc *licensing.Service) {
	licenseService = svc
}

func countKeyValidation(outcome string) {
	if err := counter.AddKeyValidation(outcome); err != nil {
		log.Errorf("failed to count key validation: %v", err)
	}
}

// HandleValidateKey validates a license key and meters one unit of
// usage on success.
func HandleValidateKey(c *fiber.Ctx) error {
	var req models.ValidateKeyRequest
	if err := c.BodyParser(&req); err != nil || req.APIKey == "" {
		return jsonInvalidKey(c, fiber.StatusBadRequest, "apiKey is required")
	}

	info, err := licenseService.Validate(c.UserContext(), req.APIKey, true)
	if err != nil {
		countKeyValidation("invalid")
		status, msg := statusForKeyError(err)
		return jsonInvalidKey(c, status, msg)
	}

	countKeyValidation("valid")
	if info.Metered {
		if err := counter.AddUsageIncrement(); err != nil {
			log.Errorf("failed to count usage increment: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"valid":          true,
		"customerId":     info.CustomerID,
		"email":          info.Email,
		"subscriptionId": info.SubscriptionID,
		"status":         info.Status,
	})
}

// HandleCustomerInfo resolves a license key without billing the call.
func HandleCustomerInfo(c *fiber.Ctx) error {
	var req models.ValidateKeyRequest
	if err := c.BodyParser(&req); err != nil || req.APIKey == "" {
		return jsonInvalidKey(c, fiber.StatusBadRequest, "apiKey is required")
	}

	info, err := licenseService.CustomerInfo(c.UserContext(), req.APIKey)
	if err != nil {
		status, msg := statusForKeyError(err)
		return jsonInvalidKey(c, status, msg)
	}

	return c.JSON(fiber.Map{
		"valid":          true,
		"customerId":     info.CustomerID,
		"email":          info.Email,
		"subscriptionId": info.SubscriptionID,
		"status":         info.Status,
		"plan":           info.Plan,
	})
}

// HandleCreateSubscription runs the provisioning flow for a new paying
// signup and returns the fresh license key.
func HandleCreateSubscription(c *fiber.Ctx) error {
	var req models.CreateSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "email, name, paymentMethodId and plan are required")
	}

	result, err := licenseService.Provision(c.UserContext(), req.Email, req.Name, req.PaymentMethodID, req.Plan)
	if err != nil {
		status, msg := statusForKeyError(err)
		if status == fiber.StatusUnauthorized || status == fiber.StatusPaymentRequired {
			status = fiber.StatusInternalServerError
		}
		return jsonError(c, status, msg)
	}

	if err := counter.AddProvisioning(); err != nil {
		log.Errorf("failed to count provisioning: %v", err)
	}

	// Welcome mail goes out asynchronously; provisioning already
	// succeeded even if the queue is down.
	queue := jobqueue.GetManager().GetQueue()
	if _, err := queue.EnqueueLicenseKeyMail(jobqueue.LicenseKeyMailPayload{
		Email:  req.Email,
		Name:   req.Name,
		APIKey: result.APIKey,
		Plan:   result.Plan,
	}); err != nil {
		log.Errorf("failed to enqueue license key mail for %s: %v", req.Email, err)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"apiKey":         result.APIKey,
		"customerId":     result.CustomerID,
		"subscriptionId": result.SubscriptionID,
		"plan":           result.Plan,
	})
}

// HandleGenerateKey issues a fresh license key for an existing
// account, replacing any previous key.
func HandleGenerateKey(c *fiber.Ctx) error {
	var req models.GenerateKeyRequest
	if err := c.BodyParser(&req); err != nil || req.CustomerID == "" {
		return jsonError(c, fiber.StatusBadRequest, "customerId is required")
	}

	key, err := licenseService.GenerateKeyFor(c.UserContext(), req.CustomerID)
	if err != nil {
		status, msg := statusForKeyError(err)
		if status == fiber.StatusUnauthorized {
			status = fiber.StatusInternalServerError
		}
		return jsonError(c, status, msg)
	}

	return c.JSON(fiber.Map{"success": true, "apiKey": key})
}
