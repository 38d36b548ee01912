package keyfox

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v76"
)

// Provider event types the gateway maps to canonical shapes. Everything
// else passes through untouched.
const (
	EventPaymentSucceeded    = "payment_intent.succeeded"
	EventPaymentFailed       = "payment_intent.payment_failed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionEnded   = "customer.subscription.deleted"
	EventChargeRefunded      = "charge.refunded"
)

// PaymentOutcome is the canonical shape for succeeded/failed payments.
// Amount is in decimal currency units (the provider reports minor units).
type PaymentOutcome struct {
	PaymentID  string            `json:"payment_id"`
	CustomerID string            `json:"customer_id"`
	Amount     float64           `json:"amount"`
	Currency   string            `json:"currency"`
	Status     string            `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SubscriptionLifecycle is the canonical shape for subscription
// creation and termination events.
type SubscriptionLifecycle struct {
	SubscriptionID string    `json:"subscription_id"`
	CustomerID     string    `json:"customer_id"`
	Status         string    `json:"status"`
	NextBillingAt  time.Time `json:"next_billing_at"`
}

// ChargeRefund is the canonical shape for refunded charges.
type ChargeRefund struct {
	ChargeID   string  `json:"charge_id"`
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Refunded   bool    `json:"refunded"`
}

// PassThrough carries any event type without an explicit mapping. The
// provider's event vocabulary evolves; unknown types are expected and
// must not fail.
type PassThrough struct {
	EventType string          `json:"event_type"`
	Raw       json.RawMessage `json:"raw"`
}

// CanonicalEvent is the gateway's normalized representation of a
// provider webhook. Exactly one of the shape fields is set.
type CanonicalEvent struct {
	Type         string
	Payment      *PaymentOutcome
	Subscription *SubscriptionLifecycle
	Refund       *ChargeRefund
	PassThrough  *PassThrough
}

// TransformEvent maps a verified provider event into its canonical
// domain shape. It never fails: a malformed or unmapped nested object
// degrades to PassThrough with the raw payload preserved.
func TransformEvent(event *stripe.Event) CanonicalEvent {
	eventType := string(event.Type)

	if event.Data == nil {
		return CanonicalEvent{
			Type:        eventType,
			PassThrough: &PassThrough{EventType: eventType},
		}
	}

	switch eventType {
	case EventPaymentSucceeded, EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			break
		}
		status := "succeeded"
		if eventType == EventPaymentFailed {
			status = "failed"
		}
		return CanonicalEvent{
			Type: eventType,
			Payment: &PaymentOutcome{
				PaymentID:  pi.ID,
				CustomerID: customerID(pi.Customer),
				Amount:     minorToDecimal(pi.Amount),
				Currency:   string(pi.Currency),
				Status:     status,
				Metadata:   pi.Metadata,
			},
		}

	case EventSubscriptionCreated, EventSubscriptionEnded:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			break
		}
		return CanonicalEvent{
			Type: eventType,
			Subscription: &SubscriptionLifecycle{
				SubscriptionID: sub.ID,
				CustomerID:     customerID(sub.Customer),
				Status:         string(sub.Status),
				NextBillingAt:  time.Unix(sub.CurrentPeriodEnd, 0),
			},
		}

	case EventChargeRefunded:
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			break
		}
		return CanonicalEvent{
			Type: eventType,
			Refund: &ChargeRefund{
				ChargeID:   ch.ID,
				CustomerID: customerID(ch.Customer),
				Amount:     minorToDecimal(ch.Amount),
				Refunded:   ch.Refunded,
			},
		}
	}

	return CanonicalEvent{
		Type:        eventType,
		PassThrough: &PassThrough{EventType: eventType, Raw: event.Data.Raw},
	}
}

// minorToDecimal converts a minor-unit amount (e.g. cents) to decimal
// currency units: 2999 -> 29.99.
func minorToDecimal(amount int64) float64 {
	return float64(amount) / 100
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
