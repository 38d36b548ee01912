package licensing

import "fmt"

// ValidationError reports missing or malformed caller input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// FormatError reports a license key that fails the prefix/shape check.
type FormatError struct {
	Key string
}

func (e *FormatError) Error() string {
	return "license key has invalid format"
}

// NotFoundError reports a key or account that does not exist in the
// directory.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.What)
}

// SubscriptionInactiveError reports an account whose subscriptions are
// all in a non-active status.
type SubscriptionInactiveError struct {
	CustomerID string
}

func (e *SubscriptionInactiveError) Error() string {
	return "no active subscription"
}
