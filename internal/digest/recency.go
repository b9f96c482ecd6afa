package digest

import (
	"time"

	"rivalwatch/internal/domain"
)

// RecencyWindow is the fixed look-back applied to every collected mention.
const RecencyWindow = 36 * time.Hour

// FilterRecent keeps mentions whose timestamp falls inside the window ending
// at now. The boundary is inclusive: an item exactly window old survives.
// Mentions without a usable timestamp are treated as stale and dropped, never
// defaulted to now.
func FilterRecent(items []domain.Mention, now time.Time, window time.Duration) []domain.Mention {
	kept := make([]domain.Mention, 0, len(items))
	for _, item := range items {
		if item.SeenAt.IsZero() {
			continue
		}
		if now.Sub(item.SeenAt) <= window {
			kept = append(kept, item)
		}
	}
	return kept
}
