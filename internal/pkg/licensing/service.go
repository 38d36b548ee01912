// Package licensing implements the license key lifecycle: generation,
// validation against live subscription state, per-call usage metering
// and the provisioning flow for new signups.
package licensing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v76"
)

// Metadata keys carried on the provider's customer object. They are the
// only place license state lives.
const (
	MetadataAPIKey = "api_key"
	MetadataPlan   = "plan"
)

// directoryScanLimit caps the account scan during key lookup. Accounts
// beyond this page are not reachable by key.
// TODO: replace the scan with an indexed key lookup once the account
// count approaches the page size.
const directoryScanLimit = 100

// KeyInfo is the successful result of a validation call.
type KeyInfo struct {
	CustomerID     string `json:"customerId"`
	Email          string `json:"email"`
	SubscriptionID string `json:"subscriptionId"`
	Status         string `json:"status"`
	Plan           string `json:"plan,omitempty"`

	// Metered reports whether this call submitted a usage increment.
	Metered bool `json:"-"`
}

// ProvisionResult is the successful outcome of the provisioning flow.
type ProvisionResult struct {
	APIKey         string `json:"apiKey"`
	CustomerID     string `json:"customerId"`
	SubscriptionID string `json:"subscriptionId"`
	Plan           string `json:"plan"`
}

// Service runs the licensing protocols against a remote account
// directory.
type Service struct {
	dir   Directory
	plans *PlanCatalog
}

// NewService creates a licensing service backed by the given directory.
func NewService(dir Directory, plans *PlanCatalog) *Service {
	return &Service{dir: dir, plans: plans}
}

// Validate runs the validation protocol for a license key: format
// check, directory lookup, subscription status evaluation and, when
// meter is set, one usage increment against the subscription's metered
// line item. Metering failures never fail the validation.
func (s *Service) Validate(ctx context.Context, key string, meter bool) (*KeyInfo, error) {
	if !HasKeyFormat(key) {
		return nil, &FormatError{Key: key}
	}

	account, err := s.findAccountByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	sub, err := s.activeSubscription(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	info := &KeyInfo{
		CustomerID:     account.ID,
		Email:          account.Email,
		SubscriptionID: sub.ID,
		Status:         string(sub.Status),
		Plan:           account.Metadata[MetadataPlan],
	}

	if meter {
		info.Metered = s.meterUsage(ctx, sub)
	}

	return info, nil
}

// CustomerInfo resolves a key without billing the call.
func (s *Service) CustomerInfo(ctx context.Context, key string) (*KeyInfo, error) {
	return s.Validate(ctx, key, false)
}

// findAccountByKey scans the directory for the account carrying the
// key in its metadata. The scan is bounded by directoryScanLimit.
func (s *Service) findAccountByKey(ctx context.Context, key string) (*stripe.Customer, error) {
	accounts, err := s.dir.ListCustomers(ctx, directoryScanLimit)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		if account.Metadata[MetadataAPIKey] == key {
			return account, nil
		}
	}
	return nil, &NotFoundError{What: "license key"}
}

// activeSubscription returns the account's first subscription with
// status exactly active. Canceled, past-due or incomplete subscriptions
// do not qualify.
func (s *Service) activeSubscription(ctx context.Context, customerID string) (*stripe.Subscription, error) {
	subs, err := s.dir.ListSubscriptions(ctx, customerID)
	if err != nil {
		return nil, err
	}
	for _, sub := range subs {
		if sub.Status == stripe.SubscriptionStatusActive {
			return sub, nil
		}
	}
	return nil, &SubscriptionInactiveError{CustomerID: customerID}
}

// meterUsage submits one usage increment against the subscription's
// metered line item, if it has one. Flat-fee-only plans are skipped
// silently. Returns whether an increment was submitted.
func (s *Service) meterUsage(ctx context.Context, sub *stripe.Subscription) bool {
	item := meteredItem(sub)
	if item == nil {
		return false
	}
	if err := s.dir.RecordUsage(ctx, item.ID, time.Now()); err != nil {
		log.Errorf("usage metering failed for subscription %s: %v", sub.ID, err)
		return false
	}
	return true
}

// meteredItem finds the subscription line item priced by usage. At most
// one is expected per subscription.
func meteredItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub.Items == nil {
		return nil
	}
	for _, item := range sub.Items.Data {
		if item.Price != nil && item.Price.Recurring != nil &&
			item.Price.Recurring.UsageType == stripe.PriceRecurringUsageTypeMetered {
			return item
		}
	}
	return nil
}

// Provision turns a new paying signup into an account, a license key
// and an active subscription. Each step can fail and aborts the rest;
// the key is written into account metadata before the subscription is
// created, so a crash mid-flow leaves a keyed but inactive account
// rather than an unreachable active subscription. No rollback of
// earlier steps is attempted on failure.
func (s *Service) Provision(ctx context.Context, email, name, paymentMethodID, planName string) (*ProvisionResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Msg: "must not be empty"}
	}

	plan, err := s.plans.Lookup(planName)
	if err != nil {
		return nil, err
	}

	account, err := s.dir.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account, err = s.dir.CreateCustomer(ctx, email, name, nil)
		if err != nil {
			return nil, err
		}
		log.Infof("created billing account %s for %s", account.ID, email)
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	if _, err := s.dir.UpdateCustomerMetadata(ctx, account.ID, map[string]string{
		MetadataAPIKey: key,
		MetadataPlan:   plan.Name,
	}); err != nil {
		return nil, err
	}

	if _, err := s.dir.AttachPaymentMethod(ctx, account.ID, paymentMethodID); err != nil {
		return nil, err
	}

	sub, err := s.dir.CreateSubscription(ctx, account.ID, plan.PriceIDs)
	if err != nil {
		return nil, err
	}
	if sub.Status != stripe.SubscriptionStatusActive {
		return nil, fmt.Errorf("subscription %s is %s, not active; manual reconciliation required", sub.ID, sub.Status)
	}

	log.Infof("provisioned %s on plan %s (subscription %s)", email, plan.Name, sub.ID)

	return &ProvisionResult{
		APIKey:         key,
		CustomerID:     account.ID,
		SubscriptionID: sub.ID,
		Plan:           plan.Name,
	}, nil
}

// GenerateKeyFor issues a fresh license key for an existing account and
// stores it in the account's metadata, replacing any previous key.
func (s *Service) GenerateKeyFor(ctx context.Context, customerID string) (string, error) {
	if strings.TrimSpace(customerID) == "" {
		return "", &ValidationError{Field: "customerId", Msg: "must not be empty"}
	}

	if _, err := s.dir.GetCustomer(ctx, customerID); err != nil {
		return "", err
	}

	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	if _, err := s.dir.UpdateCustomerMetadata(ctx, customerID, map[string]string{
		MetadataAPIKey: key,
	}); err != nil {
		return "", err
	}
	return key, nil
}
