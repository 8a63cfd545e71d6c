package journals

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LineDraft describes a journal line for a create or replace request.
type LineDraft struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// EntryDraft groups fields required to create or replace a journal entry.
type EntryDraft struct {
	Date        time.Time
	Description string
	Lines       []LineDraft
}

// Normalize trims identifiers and text without touching amounts.
func (d EntryDraft) Normalize() EntryDraft {
	out := EntryDraft{
		Date:        d.Date,
		Description: strings.TrimSpace(d.Description),
		Lines:       make([]LineDraft, len(d.Lines)),
	}
	for i, line := range d.Lines {
		line.AccountID = strings.TrimSpace(line.AccountID)
		out.Lines[i] = line
	}
	return out
}

// AccountIDs returns the distinct non-empty account ids referenced by the draft.
func (d EntryDraft) AccountIDs() []string {
	seen := make(map[string]struct{}, len(d.Lines))
	ids := make([]string, 0, len(d.Lines))
	for _, line := range d.Lines {
		if line.AccountID == "" {
			continue
		}
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}

// Filter narrows entry listings. Nil bounds are open.
type Filter struct {
	From  *time.Time
	To    *time.Time
	Query string
}
