package licensing

import (
	"strings"

	"github.com/ManuelReschke/KeyFox/internal/pkg/env"
)

// Plan names accepted by the provisioning flow.
const (
	PlanBasic = "basic"
	PlanPro   = "pro"
)

// Plan describes one purchasable tier. PriceIDs holds the provider
// price identifiers the subscription is created against: a single flat
// price for basic, a flat plus a metered price for pro.
type Plan struct {
	Name     string
	PriceIDs []string
}

// PlanCatalog resolves plan selectors to their provider prices.
type PlanCatalog struct {
	plans map[string]Plan
}

// LoadPlanCatalog builds the catalog from environment configuration.
// BASIC_PRICE_ID and PRO_PRICE_ID are the flat recurring prices;
// METERED_PRICE_ID is the usage price attached to the pro tier.
func LoadPlanCatalog() *PlanCatalog {
	basicPrice := env.GetEnv("BASIC_PRICE_ID", "")
	proPrice := env.GetEnv("PRO_PRICE_ID", "")
	meteredPrice := env.GetEnv("METERED_PRICE_ID", "")

	plans := map[string]Plan{
		PlanBasic: {Name: PlanBasic, PriceIDs: []string{basicPrice}},
	}

	proPrices := []string{proPrice}
	if meteredPrice != "" {
		proPrices = append(proPrices, meteredPrice)
	}
	plans[PlanPro] = Plan{Name: PlanPro, PriceIDs: proPrices}

	return &PlanCatalog{plans: plans}
}

// NewPlanCatalog builds a catalog from explicit plans, mainly for
// tests.
func NewPlanCatalog(plans ...Plan) *PlanCatalog {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[strings.ToLower(p.Name)] = p
	}
	return &PlanCatalog{plans: m}
}

// Lookup resolves a caller-supplied plan selector. Selectors are
// case-insensitive.
func (c *PlanCatalog) Lookup(name string) (Plan, error) {
	p, ok := c.plans[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Plan{}, &ValidationError{Field: "plan", Msg: "unknown plan " + name}
	}
	for _, priceID := range p.PriceIDs {
		if priceID == "" {
			return Plan{}, &ValidationError{Field: "plan", Msg: "plan " + p.Name + " has no price configured"}
		}
	}
	return p, nil
}
