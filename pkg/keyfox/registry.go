package keyfox

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
)

// Handler signatures for the canonical event shapes. Handlers receive
// the canonical object plus the original verified provider event.
type (
	PaymentHandler      func(ctx context.Context, payment PaymentOutcome, event *stripe.Event) error
	SubscriptionHandler func(ctx context.Context, sub SubscriptionLifecycle, event *stripe.Event) error
	RefundHandler       func(ctx context.Context, refund ChargeRefund, event *stripe.Event) error
	PassThroughHandler  func(ctx context.Context, raw PassThrough, event *stripe.Event) error
)

// HandlerRegistry holds at most one callback per canonical event type.
// It belongs to a Client instance; registrations are expected during
// setup, before webhook traffic begins. Registering again for the same
// type replaces the previous callback.
type HandlerRegistry struct {
	paymentSucceeded    PaymentHandler
	paymentFailed       PaymentHandler
	subscriptionCreated SubscriptionHandler
	subscriptionEnded   SubscriptionHandler
	chargeRefunded      RefundHandler
	passThrough         PassThroughHandler
}

// NewHandlerRegistry returns an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

func (r *HandlerRegistry) OnPaymentSucceeded(h PaymentHandler)         { r.paymentSucceeded = h }
func (r *HandlerRegistry) OnPaymentFailed(h PaymentHandler)            { r.paymentFailed = h }
func (r *HandlerRegistry) OnSubscriptionCreated(h SubscriptionHandler) { r.subscriptionCreated = h }
func (r *HandlerRegistry) OnSubscriptionEnded(h SubscriptionHandler)   { r.subscriptionEnded = h }
func (r *HandlerRegistry) OnChargeRefunded(h RefundHandler)            { r.chargeRefunded = h }
func (r *HandlerRegistry) OnPassThrough(h PassThroughHandler)          { r.passThrough = h }

// dispatch invokes the registered callback for the event's canonical
// type, if any. A missing callback is a no-op success. A callback error
// or panic is returned to the caller but never re-thrown further up.
func (r *HandlerRegistry) dispatch(ctx context.Context, canonical CanonicalEvent, event *stripe.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler for %s panicked: %v", canonical.Type, rec)
		}
	}()

	switch {
	case canonical.Payment != nil:
		h := r.paymentSucceeded
		if canonical.Payment.Status == "failed" {
			h = r.paymentFailed
		}
		if h != nil {
			return h(ctx, *canonical.Payment, event)
		}
	case canonical.Subscription != nil:
		h := r.subscriptionCreated
		if canonical.Type == EventSubscriptionEnded {
			h = r.subscriptionEnded
		}
		if h != nil {
			return h(ctx, *canonical.Subscription, event)
		}
	case canonical.Refund != nil:
		if r.chargeRefunded != nil {
			return r.chargeRefunded(ctx, *canonical.Refund, event)
		}
	case canonical.PassThrough != nil:
		if r.passThrough != nil {
			return r.passThrough(ctx, *canonical.PassThrough, event)
		}
	}
	return nil
}
