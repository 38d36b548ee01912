package keyfox

import (
	"context"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// WebhookResult summarizes one processed webhook delivery. Success is
// false when the registered handler returned an error or panicked; the
// delivery itself is still acknowledged in that case so the provider
// does not retry what the application already saw.
type WebhookResult struct {
	Success   bool   `json:"success"`
	EventType string `json:"event_type"`
	Error     string `json:"error,omitempty"`
}

// HandleWebhook verifies the raw payload against the signature header,
// transforms the event into its canonical shape and dispatches it to
// the registered handler. A failed signature check returns a
// SignatureError and nothing is dispatched. Handler failures are
// reported through the result, not the error return.
func (c *Client) HandleWebhook(ctx context.Context, payload []byte, sigHeader, secret string) (WebhookResult, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return WebhookResult{}, &SignatureError{Err: err}
	}

	return c.dispatchEvent(ctx, &event), nil
}

func (c *Client) dispatchEvent(ctx context.Context, event *stripe.Event) WebhookResult {
	canonical := TransformEvent(event)

	result := WebhookResult{
		Success:   true,
		EventType: canonical.Type,
	}
	if err := c.Registry.dispatch(ctx, canonical, event); err != nil {
		result.Success = false
		result.Error = err.Error()
	}
	return result
}
