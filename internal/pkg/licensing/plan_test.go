package licensing

import (
	"errors"
	"testing"
)

func testCatalog() *PlanCatalog {
	return NewPlanCatalog(
		Plan{Name: PlanBasic, PriceIDs: []string{"price_basic"}},
		Plan{Name: PlanPro, PriceIDs: []string{"price_pro", "price_metered"}},
	)
}

func TestPlanCatalogLookup(t *testing.T) {
	c := testCatalog()

	plan, err := c.Lookup("pro")
	if err != nil {
		t.Fatalf("Lookup(pro): %v", err)
	}
	if len(plan.PriceIDs) != 2 {
		t.Fatalf("pro plan prices = %v, want flat + metered", plan.PriceIDs)
	}

	// Selector is case-insensitive and whitespace-tolerant.
	if _, err := c.Lookup(" Basic "); err != nil {
		t.Fatalf("Lookup( Basic ): %v", err)
	}
}

func TestPlanCatalogLookup_UnknownPlan(t *testing.T) {
	c := testCatalog()

	_, err := c.Lookup("enterprise")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestPlanCatalogLookup_MissingPrice(t *testing.T) {
	c := NewPlanCatalog(Plan{Name: PlanBasic, PriceIDs: []string{""}})

	_, err := c.Lookup(PlanBasic)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want ValidationError for unconfigured price", err)
	}
}
