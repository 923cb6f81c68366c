package billing

import (
	"fmt"
	"math"

	"ai-chat-quota-be/internal/entity"
)

// YearlyMultiplier prices a yearly bundle at ten monthly periods.
const YearlyMultiplier = 10

type Plan struct {
	MaxMessages  *int // nil = unlimited
	MonthlyPrice float64
}

var plans = map[entity.BundleTier]Plan{
	entity.BundleTierBasic:      {MaxMessages: intPtr(10), MonthlyPrice: 9.99},
	entity.BundleTierPro:        {MaxMessages: intPtr(100), MonthlyPrice: 49.99},
	entity.BundleTierEnterprise: {MaxMessages: nil, MonthlyPrice: 199.99},
}

// PriceFor returns the message cap and price of a tier for one billing cycle.
// The cap does not scale with the cycle.
func PriceFor(tier entity.BundleTier, cycle entity.BillingCycle) (*int, float64, error) {
	plan, ok := plans[tier]
	if !ok {
		return nil, 0, fmt.Errorf("unknown bundle tier %q", tier)
	}
	if !cycle.IsValid() {
		return nil, 0, fmt.Errorf("unknown billing cycle %q", cycle)
	}

	price := plan.MonthlyPrice
	if cycle == entity.BillingCycleYearly {
		price = round2(price * YearlyMultiplier)
	}

	var maxMessages *int
	if plan.MaxMessages != nil {
		maxMessages = intPtr(*plan.MaxMessages)
	}
	return maxMessages, price, nil
}

func intPtr(v int) *int {
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
