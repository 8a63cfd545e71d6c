package reports

import "time"

// Statements bundles the three reports built from one snapshot.
type Statements struct {
	AsOf            *time.Time      `json:"as_of,omitempty"`
	TrialBalance    TrialBalance    `json:"trial_balance"`
	IncomeStatement IncomeStatement `json:"income_statement"`
	BalanceSheet    BalanceSheet    `json:"balance_sheet"`
}
