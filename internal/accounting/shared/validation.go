package shared

import (
	"errors"
	"fmt"
)

// NoLine marks a validation error that is not tied to a single line.
const NoLine = -1

// ValidationError describes why a journal draft was rejected.
type ValidationError struct {
	Kind      error
	Line      int
	AccountID string
	Detail    string
}

// Invalid builds a ValidationError for the given kind.
func Invalid(kind error, line int, accountID, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Line: line, AccountID: accountID, Detail: detail}
}

func (e *ValidationError) Error() string {
	msg := e.Kind.Error()
	if e.Line != NoLine {
		msg = fmt.Sprintf("%s (line %d", msg, e.Line)
		if e.AccountID != "" {
			msg += ", account " + e.AccountID
		}
		msg += ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// KindName returns the short machine name of a validation kind.
func KindName(kind error) string {
	switch {
	case errors.Is(kind, ErrTooFewLines):
		return "too_few_lines"
	case errors.Is(kind, ErrMissingAccount):
		return "missing_account"
	case errors.Is(kind, ErrUnknownAccount):
		return "unknown_account"
	case errors.Is(kind, ErrNegativeAmount):
		return "negative_amount"
	case errors.Is(kind, ErrAmbiguousLine):
		return "ambiguous_line"
	case errors.Is(kind, ErrEmptyLine):
		return "empty_line"
	case errors.Is(kind, ErrExcessPrecision):
		return "excess_precision"
	case errors.Is(kind, ErrUnbalanced):
		return "unbalanced"
	case errors.Is(kind, ErrZeroEntry):
		return "zero_entry"
	case errors.Is(kind, ErrEntryNotFound):
		return "entry_not_found"
	case errors.Is(kind, ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(kind, ErrAccountHasMovements):
		return "account_has_movements"
	case errors.Is(kind, ErrStorage):
		return "storage_failure"
	default:
		return "unknown"
	}
}
