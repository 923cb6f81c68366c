package quota

import (
	"sort"

	"ai-chat-quota-be/internal/entity"
)

// SelectBundle picks the bundle that absorbs the next message, or nil when none has quota left.
//
// Ranking, highest first: tier priority, then remaining quota (unlimited beats any finite
// amount), then the most recently created bundle. The input slice is not reordered.
func SelectBundle(bundles []*entity.Bundle) *entity.Bundle {
	candidates := make([]*entity.Bundle, 0, len(bundles))
	for _, b := range bundles {
		if b != nil && b.HasRemainingMessages() {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return ranksBefore(candidates[i], candidates[j])
	})
	return candidates[0]
}

func ranksBefore(a, b *entity.Bundle) bool {
	if pa, pb := a.Tier.Priority(), b.Tier.Priority(); pa != pb {
		return pa > pb
	}

	ra, rb := a.RemainingMessages(), b.RemainingMessages()
	switch {
	case ra == nil && rb != nil:
		return true
	case ra != nil && rb == nil:
		return false
	case ra != nil && rb != nil && *ra != *rb:
		return *ra > *rb
	}

	return a.CreatedAt.After(b.CreatedAt)
}
