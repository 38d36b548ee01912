package licensing

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v76"

	"github.com/ManuelReschke/KeyFox/pkg/keyfox"
)

// Directory is the remote account store the licensing service runs
// against. The provider owns all account and subscription state; the
// service holds nothing locally.
type Directory interface {
	CreateCustomer(ctx context.Context, email, name string, metadata map[string]string) (*stripe.Customer, error)
	GetCustomer(ctx context.Context, id string) (*stripe.Customer, error)
	FindCustomerByEmail(ctx context.Context, email string) (*stripe.Customer, error)
	ListCustomers(ctx context.Context, limit int64) ([]*stripe.Customer, error)
	UpdateCustomerMetadata(ctx context.Context, id string, metadata map[string]string) (*stripe.Customer, error)
	AttachPaymentMethod(ctx context.Context, customerID, paymentMethodID string) (*stripe.PaymentMethod, error)
	CreateSubscription(ctx context.Context, customerID string, priceIDs []string) (*stripe.Subscription, error)
	ListSubscriptions(ctx context.Context, customerID string) ([]*stripe.Subscription, error)
	RecordUsage(ctx context.Context, subscriptionItemID string, at time.Time) error
}

var _ Directory = (*keyfox.Client)(nil)
