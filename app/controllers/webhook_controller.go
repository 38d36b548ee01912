package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v76"

	"github.com/ManuelReschke/KeyFox/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/KeyFox/pkg/keyfox"
)

var (
	webhookClient *keyfox.Client
	webhookSecret string
)

// InitializeWebhookController wires the gateway client and the signing
// secret into the webhook endpoint. Must run before routes are
// installed.
func InitializeWebhookController(client *keyfox.Client, secret string) {
	webhookClient = client
	webhookSecret = secret
}

// RegisterDefaultEventHandlers installs the gateway's own handlers for
// the canonical event types. Deployments embedding the client directly
// can register their own instead; the last registration wins.
func RegisterDefaultEventHandlers(client *keyfox.Client) {
	client.Registry.OnPaymentSucceeded(func(ctx context.Context, payment keyfox.PaymentOutcome, event *stripe.Event) error {
		log.Infof("payment %s succeeded: %.2f %s (customer %s)", payment.PaymentID, payment.Amount, payment.Currency, payment.CustomerID)
		return nil
	})
	client.Registry.OnPaymentFailed(func(ctx context.Context, payment keyfox.PaymentOutcome, event *stripe.Event) error {
		log.Warnf("payment %s failed: %.2f %s (customer %s)", payment.PaymentID, payment.Amount, payment.Currency, payment.CustomerID)
		return nil
	})
	client.Registry.OnSubscriptionCreated(func(ctx context.Context, sub keyfox.SubscriptionLifecycle, event *stripe.Event) error {
		log.Infof("subscription %s created for customer %s (next billing %s)", sub.SubscriptionID, sub.CustomerID, sub.NextBillingAt.Format(time.RFC3339))
		return nil
	})
	client.Registry.OnSubscriptionEnded(func(ctx context.Context, sub keyfox.SubscriptionLifecycle, event *stripe.Event) error {
		log.Warnf("subscription %s ended for customer %s", sub.SubscriptionID, sub.CustomerID)
		return nil
	})
	client.Registry.OnChargeRefunded(func(ctx context.Context, refund keyfox.ChargeRefund, event *stripe.Event) error {
		log.Infof("charge %s refunded: %.2f (customer %s)", refund.ChargeID, refund.Amount, refund.CustomerID)
		return nil
	})
}

// HandleStripeWebhook verifies and dispatches one webhook delivery.
// Verification runs over the raw request bytes; parsing the body first
// would break the signature. Unauthenticated payloads get a 400 and are
// never acknowledged; handler failures are acknowledged with
// success=false so the provider does not redeliver.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.BodyRaw()
	sigHeader := c.Get("Stripe-Signature")

	result, err := webhookClient.HandleWebhook(c.UserContext(), payload, sigHeader, webhookSecret)
	if err != nil {
		var sigErr *keyfox.SignatureError
		if errors.As(err, &sigErr) {
			log.Warnf("rejected webhook delivery: %v", err)
			return jsonError(c, fiber.StatusBadRequest, "invalid signature")
		}
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := counter.AddWebhookEvent(result.EventType); err != nil {
		log.Errorf("failed to count webhook event: %v", err)
	}

	resp := fiber.Map{"success": result.Success, "eventType": result.EventType}
	if result.Error != "" {
		resp["error"] = result.Error
	}
	return c.JSON(resp)
}
