package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func TestDetectParents(t *testing.T) {
	parents := DetectParents([]string{"1", "11", "1101", "12"})
	assert.ElementsMatch(t, []string{"1", "11"}, keys(parents))
}

func TestDetectParentsIgnoresUnrelatedAndDuplicates(t *testing.T) {
	cases := []struct {
		name string
		ids  []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"siblings", []string{"1101", "1102", "3101"}, []string{}},
		{"duplicates", []string{"11", "11", "1101"}, []string{"11"}},
		{"duplicate leaf", []string{"12", "12"}, []string{}},
		{"unordered", []string{"1101", "2", "1", "21"}, []string{"1", "2"}},
		{"not numeric range", []string{"2", "10"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ElementsMatch(t, tc.want, keys(DetectParents(tc.ids)))
		})
	}
}

func TestDetectParentsDoesNotMutateInput(t *testing.T) {
	ids := []string{"12", "1", "11"}
	DetectParents(ids)
	assert.Equal(t, []string{"12", "1", "11"}, ids)
}
