package model

import "github.com/shopspring/decimal"

// Plan identifies a credit purchase plan.
type Plan string

const (
	PlanBasic    Plan = "Basic"
	PlanAdvanced Plan = "Advanced"
	PlanBusiness Plan = "Business"
)

// PlanDetails holds the server-assigned pricing of a plan. Amount is in major
// currency units; conversion to the gateway's minor unit happens only inside
// the gateway adapter.
type PlanDetails struct {
	Plan    Plan            `json:"plan"`
	Amount  decimal.Decimal `json:"amount"`
	Credits int64           `json:"credits"`
}

// PlanCatalog is the single source of truth for plan pricing. Amounts or
// credits supplied by clients are never honored.
var PlanCatalog = map[Plan]PlanDetails{
	PlanBasic:    {Plan: PlanBasic, Amount: decimal.NewFromInt(10), Credits: 100},
	PlanAdvanced: {Plan: PlanAdvanced, Amount: decimal.NewFromInt(50), Credits: 500},
	PlanBusiness: {Plan: PlanBusiness, Amount: decimal.NewFromInt(250), Credits: 5000},
}

// LookupPlan returns the catalog entry for a plan id.
func LookupPlan(id string) (PlanDetails, bool) {
	details, ok := PlanCatalog[Plan(id)]
	return details, ok
}

// Plans returns the catalog as a slice in a stable order.
func Plans() []PlanDetails {
	return []PlanDetails{
		PlanCatalog[PlanBasic],
		PlanCatalog[PlanAdvanced],
		PlanCatalog[PlanBusiness],
	}
}
