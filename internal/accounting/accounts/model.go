package accounts

import "time"

// Category enumerates chart of accounts categories.
type Category string

const (
	CategoryAsset     Category = "ASSET"
	CategoryLiability Category = "LIABILITY"
	CategoryEquity    Category = "EQUITY"
	CategoryExpense   Category = "EXPENSE"
	CategoryIncome    Category = "INCOME"
)

// DebitNormal reports whether the category's natural balance is a debit.
func (c Category) DebitNormal() bool {
	return c == CategoryAsset || c == CategoryExpense
}

// Account models a chart of accounts node. ID is the hierarchical code, e.g. "1101".
type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lookup resolves account ids to accounts.
type Lookup interface {
	Lookup(id string) (Account, bool)
}

// Catalog is an in-memory Lookup keyed by account id.
type Catalog map[string]Account

// NewCatalog indexes accounts by id, filling Category from the chart.
func NewCatalog(chart Chart, list []Account) Catalog {
	out := make(Catalog, len(list))
	for _, acc := range list {
		if cat, ok := chart.Categorize(acc.ID); ok {
			acc.Category = cat
		}
		out[acc.ID] = acc
	}
	return out
}

// Lookup implements Lookup.
func (c Catalog) Lookup(id string) (Account, bool) {
	acc, ok := c[id]
	return acc, ok
}
