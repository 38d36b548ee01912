package keyfox

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
)

// SignatureError reports a webhook payload that failed authentication.
// Callers must never act on event data when this error is returned.
type SignatureError struct {
	Err error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("webhook signature verification failed: %v", e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}

// ProviderError wraps any failure coming back from the upstream billing
// provider, including transport timeouts.
type ProviderError struct {
	Op   string
	Code string
	Msg  string
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("stripe %s failed: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("stripe %s failed: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// wrapProviderError converts a Stripe SDK error into a ProviderError,
// keeping the provider's own message when one exists.
func wrapProviderError(op string, err error) error {
	if err == nil {
		return nil
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &ProviderError{
			Op:   op,
			Code: string(stripeErr.Code),
			Msg:  stripeErr.Msg,
			Err:  err,
		}
	}
	return &ProviderError{Op: op, Err: err}
}
