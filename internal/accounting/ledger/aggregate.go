// Package ledger folds committed journal entries into per-account rows.
package ledger

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
)

// Movement is one posted line as seen from its account.
type Movement struct {
	EntryID        int64           `json:"entry_id"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Row is the derived ledger of a single account. Balance is TotalDebit - TotalCredit.
type Row struct {
	AccountID   string            `json:"account_id"`
	Name        string            `json:"name"`
	Category    accounts.Category `json:"category,omitempty"`
	TotalDebit  decimal.Decimal   `json:"total_debit"`
	TotalCredit decimal.Decimal   `json:"total_credit"`
	Balance     decimal.Decimal   `json:"balance"`
	Movements   []Movement        `json:"movements"`
}

// Ledger holds rows in first-seen order with an index by account id.
type Ledger struct {
	rows  []Row
	index map[string]int
}

// Aggregate folds entries, in the given order, into a Ledger. Lines whose
// account does not resolve are skipped. Inputs are never modified.
func Aggregate(entries []journals.JournalEntry, lookup accounts.Lookup) Ledger {
	acc := Ledger{index: make(map[string]int)}
	for _, entry := range entries {
		for _, line := range entry.Lines {
			acc = acc.post(entry, line, lookup)
		}
	}
	return acc
}

func (l Ledger) post(entry journals.JournalEntry, line journals.JournalLine, lookup accounts.Lookup) Ledger {
	i, seen := l.index[line.AccountID]
	if !seen {
		if lookup == nil {
			return l
		}
		account, ok := lookup.Lookup(line.AccountID)
		if !ok {
			return l
		}
		name := account.Name
		if name == "" {
			name = line.AccountID
		}
		i = len(l.rows)
		l.index[line.AccountID] = i
		l.rows = append(l.rows, Row{AccountID: line.AccountID, Name: name, Category: account.Category})
	}
	row := &l.rows[i]
	row.TotalDebit = row.TotalDebit.Add(line.Debit)
	row.TotalCredit = row.TotalCredit.Add(line.Credit)
	row.Balance = row.TotalDebit.Sub(row.TotalCredit)
	row.Movements = append(row.Movements, Movement{
		EntryID:        entry.ID,
		Date:           entry.Date,
		Description:    entry.Description,
		Debit:          line.Debit,
		Credit:         line.Credit,
		RunningBalance: row.Balance,
	})
	return l
}

// Len returns the number of posted accounts.
func (l Ledger) Len() int {
	return len(l.rows)
}

// Rows returns a copy of the rows in first-seen order.
func (l Ledger) Rows() []Row {
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Row returns the row of account id.
func (l Ledger) Row(id string) (Row, bool) {
	i, ok := l.index[id]
	if !ok {
		return Row{}, false
	}
	return l.rows[i], true
}

// IDs returns the posted account ids in first-seen order.
func (l Ledger) IDs() []string {
	ids := make([]string, len(l.rows))
	for i, row := range l.rows {
		ids[i] = row.AccountID
	}
	return ids
}

// Leaves returns the rows whose id is not in parents, in first-seen order.
func (l Ledger) Leaves(parents map[string]struct{}) []Row {
	out := make([]Row, 0, len(l.rows))
	for _, row := range l.rows {
		if _, skip := parents[row.AccountID]; skip {
			continue
		}
		out = append(out, row)
	}
	return out
}

// MarshalJSON renders the ledger as an object keyed by account id.
func (l Ledger) MarshalJSON() ([]byte, error) {
	out := make(map[string]Row, len(l.rows))
	for _, row := range l.rows {
		out[row.AccountID] = row
	}
	return json.Marshal(out)
}
