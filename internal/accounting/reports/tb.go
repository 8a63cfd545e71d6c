package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
)

// TrialBalanceRow splits a leaf balance into its debit or credit column.
type TrialBalanceRow struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// TrialBalance lists leaf accounts sorted by id.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
}

// BuildTrialBalance converts leaf ledger rows into trial balance data.
func BuildTrialBalance(l ledger.Ledger, parents map[string]struct{}) TrialBalance {
	result := TrialBalance{Rows: []TrialBalanceRow{}}
	for _, acc := range l.Leaves(parents) {
		row := TrialBalanceRow{AccountID: acc.AccountID, Name: acc.Name}
		if acc.Balance.IsNegative() {
			row.Credit = acc.Balance.Abs()
		} else {
			row.Debit = acc.Balance
		}
		result.Rows = append(result.Rows, row)
		result.TotalDebit = result.TotalDebit.Add(row.Debit)
		result.TotalCredit = result.TotalCredit.Add(row.Credit)
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		return result.Rows[i].AccountID < result.Rows[j].AccountID
	})
	return result
}

// Balanced reports whether the debit and credit columns agree.
func (tb TrialBalance) Balanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}
