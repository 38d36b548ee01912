package counter

import (
	"context"
	"strconv"
	"time"

	"github.com/ManuelReschke/KeyFox/internal/pkg/cache"
)

const (
	webhookEventsKey   = "gateway:counters:webhook_events"
	keyValidationsKey  = "gateway:counters:key_validations"
	usageIncrementsKey = "gateway:counters:usage_increments"
	provisioningsKey   = "gateway:counters:provisionings"
)

// Totals is a snapshot of the gateway operation counters.
type Totals struct {
	WebhookEvents   map[string]int64 `json:"webhook_events"`
	KeyValidations  map[string]int64 `json:"key_validations"`
	UsageIncrements int64            `json:"usage_increments"`
	Provisionings   int64            `json:"provisionings"`
}

// AddWebhookEvent increments the per-type webhook delivery counter in Redis.
// Every delivery counts, duplicates included.
func AddWebhookEvent(eventType string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, webhookEventsKey, eventType, 1).Err()
}

// AddKeyValidation increments the validation counter for an outcome
// ("valid", "invalid", "inactive", "error").
func AddKeyValidation(outcome string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, keyValidationsKey, outcome, 1).Err()
}

// AddUsageIncrement records one reported usage unit.
func AddUsageIncrement() error {
	ctx := context.Background()
	day := time.Now().UTC().Format("2006-01-02")
	return cache.GetClient().HIncrBy(ctx, usageIncrementsKey, day, 1).Err()
}

// AddProvisioning records one completed provisioning flow.
func AddProvisioning() error {
	ctx := context.Background()
	day := time.Now().UTC().Format("2006-01-02")
	return cache.GetClient().HIncrBy(ctx, provisioningsKey, day, 1).Err()
}

// GetTotals reads all counters back for the stats endpoint.
func GetTotals() (*Totals, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	events, err := rdb.HGetAll(ctx, webhookEventsKey).Result()
	if err != nil {
		return nil, err
	}
	validations, err := rdb.HGetAll(ctx, keyValidationsKey).Result()
	if err != nil {
		return nil, err
	}

	totals := &Totals{
		WebhookEvents:  parseHash(events),
		KeyValidations: parseHash(validations),
	}
	totals.UsageIncrements = sumHash(rdb.HGetAll(ctx, usageIncrementsKey).Val())
	totals.Provisionings = sumHash(rdb.HGetAll(ctx, provisioningsKey).Val())
	return totals, nil
}

func parseHash(data map[string]string) map[string]int64 {
	out := make(map[string]int64, len(data))
	for k, v := range data {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[k] = n
	}
	return out
}

func sumHash(data map[string]string) int64 {
	var total int64
	for _, v := range data {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		total += n
	}
	return total
}
