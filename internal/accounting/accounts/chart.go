package accounts

import (
	"fmt"
	"sort"
	"strings"
)

// Chart assigns categories to account ids by code prefix.
type Chart struct {
	prefixes []string
	byPrefix map[string]Category
}

// DefaultChart maps the leading digit: 1 asset, 2 liability, 3 equity, 4 expense, 5 income.
func DefaultChart() Chart {
	chart, _ := NewChart(map[string]Category{
		"1": CategoryAsset,
		"2": CategoryLiability,
		"3": CategoryEquity,
		"4": CategoryExpense,
		"5": CategoryIncome,
	})
	return chart
}

// NewChart builds a chart from prefix to category. The longest matching prefix wins.
func NewChart(mapping map[string]Category) (Chart, error) {
	chart := Chart{byPrefix: make(map[string]Category, len(mapping))}
	for prefix, cat := range mapping {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return Chart{}, fmt.Errorf("accounts: empty category prefix")
		}
		parsed, err := ParseCategory(string(cat))
		if err != nil {
			return Chart{}, err
		}
		chart.byPrefix[prefix] = parsed
		chart.prefixes = append(chart.prefixes, prefix)
	}
	sort.Slice(chart.prefixes, func(i, j int) bool {
		if len(chart.prefixes[i]) != len(chart.prefixes[j]) {
			return len(chart.prefixes[i]) > len(chart.prefixes[j])
		}
		return chart.prefixes[i] < chart.prefixes[j]
	})
	return chart, nil
}

// ParseCategory accepts category names case-insensitively.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToUpper(strings.TrimSpace(raw))) {
	case CategoryAsset:
		return CategoryAsset, nil
	case CategoryLiability:
		return CategoryLiability, nil
	case CategoryEquity:
		return CategoryEquity, nil
	case CategoryExpense:
		return CategoryExpense, nil
	case CategoryIncome:
		return CategoryIncome, nil
	}
	return "", fmt.Errorf("accounts: unknown category %q", raw)
}

// Categorize returns the category of id, false when no prefix matches.
func (c Chart) Categorize(id string) (Category, bool) {
	for _, prefix := range c.prefixes {
		if strings.HasPrefix(id, prefix) {
			return c.byPrefix[prefix], true
		}
	}
	return "", false
}
