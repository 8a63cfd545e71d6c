package journals

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is a committed, balanced set of journal lines.
type JournalEntry struct {
	ID          int64         `json:"id"`
	Date        time.Time     `json:"date"`
	Description string        `json:"description"`
	Lines       []JournalLine `json:"lines"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// JournalLine stores debit or credit amount for an account.
type JournalLine struct {
	ID        int64           `json:"id"`
	EntryID   int64           `json:"entry_id"`
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

// Totals returns the debit and credit sums of the entry.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	for _, line := range e.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}
