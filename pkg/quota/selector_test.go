package quota

import (
	"testing"
	"time"

	"ai-chat-quota-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func bundle(tier entity.BundleTier, max *int, used int, createdAt time.Time) *entity.Bundle {
	b := entity.NewBundle(uuid.New(), tier, max, 0, entity.BillingCycleMonthly, createdAt)
	b.MessagesUsed = used
	return b
}

func TestSelectBundle_Empty(t *testing.T) {
	assert.Nil(t, SelectBundle(nil))
	assert.Nil(t, SelectBundle([]*entity.Bundle{}))
}

func TestSelectBundle_AllExhausted(t *testing.T) {
	bundles := []*entity.Bundle{
		bundle(entity.BundleTierBasic, intPtr(10), 10, now),
		bundle(entity.BundleTierPro, intPtr(100), 100, now),
	}
	assert.Nil(t, SelectBundle(bundles))
}

func TestSelectBundle_TierWins(t *testing.T) {
	basic := bundle(entity.BundleTierBasic, intPtr(10), 0, now)
	pro := bundle(entity.BundleTierPro, intPtr(100), 99, now.Add(-time.Hour))
	enterprise := bundle(entity.BundleTierEnterprise, nil, 5000, now.Add(-48*time.Hour))

	assert.Same(t, enterprise, SelectBundle([]*entity.Bundle{basic, pro, enterprise}))
	assert.Same(t, pro, SelectBundle([]*entity.Bundle{basic, pro}))
}

func TestSelectBundle_SkipsExhaustedHigherTier(t *testing.T) {
	basic := bundle(entity.BundleTierBasic, intPtr(10), 3, now)
	pro := bundle(entity.BundleTierPro, intPtr(100), 100, now)

	assert.Same(t, basic, SelectBundle([]*entity.Bundle{pro, basic}))
}

func TestSelectBundle_MoreRemainingWins(t *testing.T) {
	a := bundle(entity.BundleTierPro, intPtr(100), 90, now)
	b := bundle(entity.BundleTierPro, intPtr(100), 10, now.Add(-time.Hour))

	assert.Same(t, b, SelectBundle([]*entity.Bundle{a, b}))
}

func TestSelectBundle_UnlimitedBeatsFiniteOfSameTier(t *testing.T) {
	finite := bundle(entity.BundleTierEnterprise, intPtr(1_000_000), 0, now)
	unlimited := bundle(entity.BundleTierEnterprise, nil, 10, now.Add(-time.Hour))

	assert.Same(t, unlimited, SelectBundle([]*entity.Bundle{finite, unlimited}))
}

func TestSelectBundle_NewestBreaksTies(t *testing.T) {
	older := bundle(entity.BundleTierBasic, intPtr(10), 2, now.Add(-24*time.Hour))
	newer := bundle(entity.BundleTierBasic, intPtr(10), 2, now)

	assert.Same(t, newer, SelectBundle([]*entity.Bundle{older, newer}))
	assert.Same(t, newer, SelectBundle([]*entity.Bundle{newer, older}))
}

func TestSelectBundle_DoesNotReorderInput(t *testing.T) {
	basic := bundle(entity.BundleTierBasic, intPtr(10), 0, now)
	pro := bundle(entity.BundleTierPro, intPtr(100), 0, now)
	input := []*entity.Bundle{basic, pro}

	selected := SelectBundle(input)

	require.Same(t, pro, selected)
	assert.Same(t, basic, input[0])
	assert.Same(t, pro, input[1])
}
