package ledger

import (
	"sort"
	"strings"
)

// DetectParents returns the ids that are a string prefix of another id in ids.
// Only the given ids are considered, so an account without postings is never
// a parent.
func DetectParents(ids []string) map[string]struct{} {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	parents := make(map[string]struct{})
	for i := 0; i < len(sorted); i++ {
		j := i + 1
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		// ids extending sorted[i] form a contiguous run right after it.
		if j < len(sorted) && strings.HasPrefix(sorted[j], sorted[i]) {
			parents[sorted[i]] = struct{}{}
		}
		i = j - 1
	}
	return parents
}
