package keyfox

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v76"
)

const testWebhookSecret = "whsec_test_secret"

// signStripePayload builds a Stripe-Signature header over the exact
// payload bytes, the same scheme the provider uses.
func signStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Config{SecretKey: "sk_test_dummy"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestHandleWebhook_ValidSignatureDispatchesPayment(t *testing.T) {
	client := newTestClient(t)

	var got PaymentOutcome
	client.Registry.OnPaymentSucceeded(func(ctx context.Context, p PaymentOutcome, e *stripe.Event) error {
		got = p
		return nil
	})

	payload := []byte(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": "pi_1",
				"amount": 2999,
				"currency": "usd",
				"customer": {"id": "cus_1"}
			}
		}
	}`)
	sig := signStripePayload(payload, testWebhookSecret)

	result, err := client.HandleWebhook(context.Background(), payload, sig, testWebhookSecret)
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.EventType != EventPaymentSucceeded {
		t.Fatalf("event type = %q, want %q", result.EventType, EventPaymentSucceeded)
	}
	if got.Amount != 29.99 {
		t.Fatalf("handler received amount %v, want 29.99", got.Amount)
	}
	if got.Currency != "usd" {
		t.Fatalf("handler received currency %q, want usd", got.Currency)
	}
}

func TestHandleWebhook_ReserializedPayloadFailsVerification(t *testing.T) {
	client := newTestClient(t)

	// Indented original as delivered on the wire.
	payload := []byte(`{
		"id": "evt_2",
		"type": "payment_intent.succeeded",
		"data": { "object": { "id": "pi_2", "amount": 100 } }
	}`)

	// A signature computed over a parse-and-reserialize of the payload
	// covers different bytes and must not verify the original.
	var parsed map[string]interface{}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	reserialized, err := json.Marshal(parsed)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	sig := signStripePayload(reserialized, testWebhookSecret)

	_, err = client.HandleWebhook(context.Background(), payload, sig, testWebhookSecret)
	var sigErr *SignatureError
	if !errors.As(err, &sigErr) {
		t.Fatalf("err = %v, want SignatureError", err)
	}
}

func TestHandleWebhook_WrongSecretFails(t *testing.T) {
	client := newTestClient(t)

	payload := []byte(`{"id": "evt_3", "type": "charge.refunded", "data": {"object": {"id": "ch_1"}}}`)
	sig := signStripePayload(payload, "whsec_other")

	_, err := client.HandleWebhook(context.Background(), payload, sig, testWebhookSecret)
	var sigErr *SignatureError
	if !errors.As(err, &sigErr) {
		t.Fatalf("err = %v, want SignatureError", err)
	}
}

func TestHandleWebhook_HandlerFailureReportedInResult(t *testing.T) {
	client := newTestClient(t)
	client.Registry.OnChargeRefunded(func(ctx context.Context, r ChargeRefund, e *stripe.Event) error {
		return errors.New("ledger write failed")
	})

	payload := []byte(`{"id": "evt_4", "type": "charge.refunded", "data": {"object": {"id": "ch_2", "amount": 100, "refunded": true}}}`)
	sig := signStripePayload(payload, testWebhookSecret)

	result, err := client.HandleWebhook(context.Background(), payload, sig, testWebhookSecret)
	if err != nil {
		t.Fatalf("handler failure must not surface as an error: %v", err)
	}
	if result.Success {
		t.Fatalf("result = %+v, want success=false", result)
	}
	if result.Error == "" {
		t.Fatalf("expected the handler error message in the result")
	}
}

func TestHandleWebhook_UnknownEventTypeSucceeds(t *testing.T) {
	client := newTestClient(t)

	payload := []byte(`{"id": "evt_5", "type": "invoice.finalized", "data": {"object": {"id": "in_1"}}}`)
	sig := signStripePayload(payload, testWebhookSecret)

	result, err := client.HandleWebhook(context.Background(), payload, sig, testWebhookSecret)
	if err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if !result.Success || result.EventType != "invoice.finalized" {
		t.Fatalf("result = %+v", result)
	}
}
