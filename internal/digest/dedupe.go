package digest

import "rivalwatch/internal/domain"

// Deduplicate collapses mentions to one per URL. The first occurrence wins and
// input order is preserved. URLs are compared byte-for-byte: scheme, case and
// query-string variants count as distinct identities, so near-duplicates
// pointing at the same article are not collapsed.
func Deduplicate(items []domain.Mention) []domain.Mention {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.Mention, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.URL]; ok {
			continue
		}
		seen[item.URL] = struct{}{}
		out = append(out, item)
	}
	return out
}
