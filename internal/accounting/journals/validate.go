package journals

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Policy holds the tunable validation rules.
type Policy struct {
	// StrictZeroEntry rejects balanced entries whose total is zero.
	StrictZeroEntry bool
	// Scale is the number of fractional digits the store keeps. Negative disables the check.
	Scale int32
}

// DefaultPolicy matches a NUMERIC(18,2) store and accepts zero totals.
func DefaultPolicy() Policy {
	return Policy{Scale: 2}
}

// Validator enforces the structural and balance invariants of a journal entry.
type Validator struct {
	policy Policy
}

func NewValidator(policy Policy) *Validator {
	return &Validator{policy: policy}
}

// Policy returns the active validation policy.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate checks draft against lookup and returns the normalized draft.
// It has no side effects and can be re-run on every edit.
func (v *Validator) Validate(draft EntryDraft, lookup accounts.Lookup) (EntryDraft, error) {
	draft = draft.Normalize()
	if len(draft.Lines) < 2 {
		return EntryDraft{}, shared.Invalid(shared.ErrTooFewLines, shared.NoLine, "",
			fmt.Sprintf("got %d", len(draft.Lines)))
	}
	var debit, credit decimal.Decimal
	for idx, line := range draft.Lines {
		if err := v.validateLine(idx, line, lookup); err != nil {
			return EntryDraft{}, err
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return EntryDraft{}, shared.Invalid(shared.ErrUnbalanced, shared.NoLine, "",
			fmt.Sprintf("debit %s != credit %s", debit.String(), credit.String()))
	}
	if v.policy.StrictZeroEntry && debit.IsZero() {
		return EntryDraft{}, shared.Invalid(shared.ErrZeroEntry, shared.NoLine, "", "")
	}
	return draft, nil
}

func (v *Validator) validateLine(idx int, line LineDraft, lookup accounts.Lookup) error {
	if line.AccountID == "" {
		return shared.Invalid(shared.ErrMissingAccount, idx, "", "")
	}
	if lookup == nil {
		return shared.Invalid(shared.ErrUnknownAccount, idx, line.AccountID, "")
	}
	if _, ok := lookup.Lookup(line.AccountID); !ok {
		return shared.Invalid(shared.ErrUnknownAccount, idx, line.AccountID, "")
	}
	if line.Debit.IsNegative() || line.Credit.IsNegative() {
		return shared.Invalid(shared.ErrNegativeAmount, idx, line.AccountID, "")
	}
	hasDebit := line.Debit.IsPositive()
	hasCredit := line.Credit.IsPositive()
	if hasDebit && hasCredit {
		return shared.Invalid(shared.ErrAmbiguousLine, idx, line.AccountID, "")
	}
	if !hasDebit && !hasCredit {
		return shared.Invalid(shared.ErrEmptyLine, idx, line.AccountID, "")
	}
	if v.policy.Scale >= 0 {
		amount := line.Debit
		if hasCredit {
			amount = line.Credit
		}
		if !amount.Equal(amount.Truncate(v.policy.Scale)) {
			return shared.Invalid(shared.ErrExcessPrecision, idx, line.AccountID,
				fmt.Sprintf("%s has more than %d decimal places", amount.String(), v.policy.Scale))
		}
	}
	return nil
}
