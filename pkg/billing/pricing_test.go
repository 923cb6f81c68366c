package billing

import (
	"testing"

	"ai-chat-quota-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceFor(t *testing.T) {
	tests := []struct {
		name        string
		tier        entity.BundleTier
		cycle       entity.BillingCycle
		maxMessages *int
		price       float64
	}{
		{"basic monthly", entity.BundleTierBasic, entity.BillingCycleMonthly, intPtr(10), 9.99},
		{"basic yearly", entity.BundleTierBasic, entity.BillingCycleYearly, intPtr(10), 99.90},
		{"pro monthly", entity.BundleTierPro, entity.BillingCycleMonthly, intPtr(100), 49.99},
		{"pro yearly", entity.BundleTierPro, entity.BillingCycleYearly, intPtr(100), 499.90},
		{"enterprise monthly", entity.BundleTierEnterprise, entity.BillingCycleMonthly, nil, 199.99},
		{"enterprise yearly", entity.BundleTierEnterprise, entity.BillingCycleYearly, nil, 1999.90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxMessages, price, err := PriceFor(tt.tier, tt.cycle)
			require.NoError(t, err)
			assert.Equal(t, tt.maxMessages, maxMessages)
			assert.InDelta(t, tt.price, price, 0.001)
		})
	}
}

func TestPriceFor_UnknownInputs(t *testing.T) {
	_, _, err := PriceFor("GOLD", entity.BillingCycleMonthly)
	assert.Error(t, err)

	_, _, err = PriceFor(entity.BundleTierPro, "WEEKLY")
	assert.Error(t, err)
}

func TestPriceFor_ReturnsFreshCap(t *testing.T) {
	first, _, _ := PriceFor(entity.BundleTierBasic, entity.BillingCycleMonthly)
	*first = 999

	second, _, _ := PriceFor(entity.BundleTierBasic, entity.BillingCycleMonthly)
	assert.Equal(t, 10, *second)
}
