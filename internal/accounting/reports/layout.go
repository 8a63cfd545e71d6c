package reports

import "strings"

// Layout maps id prefixes to balance sheet sub-categories.
type Layout struct {
	CurrentAssets         []string
	NonCurrentAssets      []string
	CurrentLiabilities    []string
	NonCurrentLiabilities []string
}

// DefaultLayout follows the common 11/12/13 and 21/22 numbering.
func DefaultLayout() Layout {
	return Layout{
		CurrentAssets:         []string{"11"},
		NonCurrentAssets:      []string{"12", "13"},
		CurrentLiabilities:    []string{"21"},
		NonCurrentLiabilities: []string{"22"},
	}
}

func hasAnyPrefix(id string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
