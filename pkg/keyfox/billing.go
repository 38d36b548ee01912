package keyfox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/paymentmethod"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/usagerecord"
)

// maxCustomerScan bounds customer listings so a metadata scan over the
// account directory stays cheap.
const maxCustomerScan = 100

// CreateCustomer registers a new account with the provider.
func (c *Client) CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	cust, err := customer.New(params)
	if err != nil {
		return nil, wrapProviderError("customer.create", err)
	}
	return cust, nil
}

// GetCustomer fetches a customer by its provider ID.
func (c *Client) GetCustomer(ctx context.Context, id string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := customer.Get(id, params)
	if err != nil {
		return nil, wrapProviderError("customer.get", err)
	}
	return cust, nil
}

// FindCustomerByEmail returns the most recent customer with the given
// email, or nil when none exists.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*stripe.Customer, error) {
	params := &stripe.CustomerListParams{Email: stripe.String(email)}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := customer.List(params)
	if iter.Next() {
		return iter.Customer(), nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapProviderError("customer.list", err)
	}
	return nil, nil
}

// ListCustomers returns up to limit customers, newest first. Limits
// above maxCustomerScan are clamped.
func (c *Client) ListCustomers(ctx context.Context, limit int64) ([]*stripe.Customer, error) {
	if limit <= 0 || limit > maxCustomerScan {
		limit = maxCustomerScan
	}
	params := &stripe.CustomerListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)

	var customers []*stripe.Customer
	iter := customer.List(params)
	for iter.Next() {
		customers = append(customers, iter.Customer())
		if int64(len(customers)) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, wrapProviderError("customer.list", err)
	}
	return customers, nil
}

// UpdateCustomerMetadata merges the given keys into the customer's
// metadata. Existing keys not named are left alone by the provider.
func (c *Client) UpdateCustomerMetadata(ctx context.Context, id string, metadata map[string]string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	cust, err := customer.Update(id, params)
	if err != nil {
		return nil, wrapProviderError("customer.update", err)
	}
	return cust, nil
}

// AttachPaymentMethod attaches a payment method to a customer and makes
// it the default for invoices.
func (c *Client) AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*stripe.PaymentMethod, error) {
	attachParams := &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	}
	attachParams.Context = ctx

	pm, err := paymentmethod.Attach(paymentMethodID, attachParams)
	if err != nil {
		return nil, wrapProviderError("paymentmethod.attach", err)
	}

	updateParams := &stripe.CustomerParams{
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	}
	updateParams.Context = ctx
	if _, err := customer.Update(customerID, updateParams); err != nil {
		return nil, wrapProviderError("customer.update", err)
	}
	return pm, nil
}

// CreateSubscription starts a subscription for the customer on the
// given prices. Payment must succeed immediately; an incomplete first
// invoice fails the call instead of leaving a dangling subscription.
func (c *Client) CreateSubscription(ctx context.Context, customerID string, priceIDs []string) (*stripe.Subscription, error) {
	items := make([]*stripe.SubscriptionItemsParams, 0, len(priceIDs))
	for _, priceID := range priceIDs {
		items = append(items, &stripe.SubscriptionItemsParams{Price: stripe.String(priceID)})
	}

	params := &stripe.SubscriptionParams{
		Customer:        stripe.String(customerID),
		Items:           items,
		PaymentBehavior: stripe.String("error_if_incomplete"),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.New().String())
	params.AddExpand("latest_invoice.payment_intent")

	sub, err := subscription.New(params)
	if err != nil {
		return nil, wrapProviderError("subscription.create", err)
	}
	return sub, nil
}

// ListSubscriptions returns the customer's subscriptions across all
// statuses.
func (c *Client) ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx

	var subs []*stripe.Subscription
	iter := subscription.List(params)
	for iter.Next() {
		subs = append(subs, iter.Subscription())
	}
	if err := iter.Err(); err != nil {
		return nil, wrapProviderError("subscription.list", err)
	}
	return subs, nil
}

// CancelSubscription cancels a subscription immediately.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	sub, err := subscription.Cancel(subscriptionID, params)
	if err != nil {
		return nil, wrapProviderError("subscription.cancel", err)
	}
	return sub, nil
}

// CreatePaymentIntent starts a one-off charge. Amount is in minor
// currency units.
func (c *Client) CreatePaymentIntent(ctx context.Context, customerID string, amount int64, currency string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.New().String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, wrapProviderError("paymentintent.create", err)
	}
	return pi, nil
}

// CreateRefund refunds a payment intent in full.
func (c *Client) CreateRefund(ctx context.Context, paymentIntentID string) (*stripe.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(uuid.New().String())

	ref, err := refund.New(params)
	if err != nil {
		return nil, wrapProviderError("refund.create", err)
	}
	return ref, nil
}

// RecordUsage reports one unit of usage against a metered subscription
// item. The provider aggregates records into the period's invoice.
func (c *Client) RecordUsage(ctx context.Context, subscriptionItemID string, at time.Time) error {
	params := &stripe.UsageRecordParams{
		SubscriptionItem: stripe.String(subscriptionItemID),
		Quantity:         stripe.Int64(1),
		Timestamp:        stripe.Int64(at.Unix()),
		Action:           stripe.String("increment"),
	}
	params.Context = ctx

	if _, err := usagerecord.New(params); err != nil {
		return wrapProviderError("usagerecord.create", err)
	}
	return nil
}
