package keyfox

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v76"
)

func paymentEvent(t *testing.T, eventType string, amount int64) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id":     "pi_test",
		"amount": amount,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestDispatch_UnregisteredTypeIsNoOpSuccess(t *testing.T) {
	r := NewHandlerRegistry()
	event := paymentEvent(t, EventPaymentSucceeded, 100)

	if err := r.dispatch(context.Background(), TransformEvent(event), event); err != nil {
		t.Fatalf("dispatch without handler must succeed, got %v", err)
	}
}

func TestDispatch_LastRegistrationWins(t *testing.T) {
	r := NewHandlerRegistry()

	var first, second int
	r.OnPaymentSucceeded(func(ctx context.Context, p PaymentOutcome, e *stripe.Event) error {
		first++
		return nil
	})
	r.OnPaymentSucceeded(func(ctx context.Context, p PaymentOutcome, e *stripe.Event) error {
		second++
		return nil
	})

	event := paymentEvent(t, EventPaymentSucceeded, 100)
	if err := r.dispatch(context.Background(), TransformEvent(event), event); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if first != 0 || second != 1 {
		t.Fatalf("first called %d times, second %d; only the second registration may run", first, second)
	}
}

func TestDispatch_HandlerErrorIsReturnedNotThrown(t *testing.T) {
	r := NewHandlerRegistry()
	want := errors.New("downstream unavailable")
	r.OnPaymentFailed(func(ctx context.Context, p PaymentOutcome, e *stripe.Event) error {
		return want
	})

	event := paymentEvent(t, EventPaymentFailed, 100)
	err := r.dispatch(context.Background(), TransformEvent(event), event)
	if !errors.Is(err, want) {
		t.Fatalf("dispatch error = %v, want %v", err, want)
	}
}

func TestDispatch_HandlerPanicIsCaptured(t *testing.T) {
	r := NewHandlerRegistry()
	r.OnPaymentSucceeded(func(ctx context.Context, p PaymentOutcome, e *stripe.Event) error {
		panic("boom")
	})

	event := paymentEvent(t, EventPaymentSucceeded, 100)
	err := r.dispatch(context.Background(), TransformEvent(event), event)
	if err == nil {
		t.Fatalf("panicking handler must surface as error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error %q does not mention the panic", err)
	}
}

func TestDispatch_RoutesFailedPaymentsSeparately(t *testing.T) {
	r := NewHandlerRegistry()

	var succeeded, failed int
	r.OnPaymentSucceeded(func(ctx context.Context, p PaymentOutcome, e *stripe.Event) error {
		succeeded++
		return nil
	})
	r.OnPaymentFailed(func(ctx context.Context, p PaymentOutcome, e *stripe.Event) error {
		failed++
		return nil
	})

	event := paymentEvent(t, EventPaymentFailed, 100)
	if err := r.dispatch(context.Background(), TransformEvent(event), event); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if succeeded != 0 || failed != 1 {
		t.Fatalf("succeeded=%d failed=%d; failed payment must reach the failed handler only", succeeded, failed)
	}
}
