package plans

import "fmt"

// PlanName identifies a subscription tier. The set is closed and defined at
// build time; new tiers require a new release.
type PlanName string

const (
	PlanBasic PlanName = "Basic"
	PlanPro   PlanName = "Pro"
	PlanVIP   PlanName = "VIP"
)

// planRank orders plans for better-or-equal comparisons. Higher is better.
var planRank = map[PlanName]int{
	PlanBasic: 1,
	PlanPro:   2,
	PlanVIP:   3,
}

// Valid reports whether the plan name belongs to the known set.
func (p PlanName) Valid() bool {
	_, ok := planRank[p]
	return ok
}

// Rank returns the priority rank of the plan. Unknown plans rank 0,
// below every valid plan.
func (p PlanName) Rank() int {
	return planRank[p]
}

// BetterOrEqual reports whether p is at least as good as other.
func (p PlanName) BetterOrEqual(other PlanName) bool {
	return p.Rank() >= other.Rank()
}

// ParsePlanName converts a raw string into a PlanName.
func ParsePlanName(s string) (PlanName, error) {
	p := PlanName(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlan, s)
	}
	return p, nil
}

// Plan binds a tier to its storefront product and monthly analysis allowance.
type Plan struct {
	Name         PlanName `yaml:"name"`
	ProductID    string   `yaml:"product_id"`
	MonthlyLimit int      `yaml:"monthly_limit"`
}
