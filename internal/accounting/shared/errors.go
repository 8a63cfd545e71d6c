package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrMissingAccount indicates a line without account id.
	ErrMissingAccount = errors.New("accounting: line missing account")
	// ErrUnknownAccount indicates a line pointing to an account outside the chart.
	ErrUnknownAccount = errors.New("accounting: unknown account")
	// ErrNegativeAmount indicates a negative debit or credit.
	ErrNegativeAmount = errors.New("accounting: negative amount")
	// ErrAmbiguousLine indicates a line with both debit and credit.
	ErrAmbiguousLine = errors.New("accounting: line cannot be both debit and credit")
	// ErrEmptyLine indicates a line with neither debit nor credit.
	ErrEmptyLine = errors.New("accounting: line requires a debit or a credit")
	// ErrExcessPrecision indicates an amount finer than the store scale.
	ErrExcessPrecision = errors.New("accounting: amount exceeds allowed precision")
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrZeroEntry indicates a balanced entry whose total is zero.
	ErrZeroEntry = errors.New("accounting: journal total must be greater than zero")
	// ErrEntryNotFound indicates missing entry.
	ErrEntryNotFound = errors.New("accounting: journal entry not found")
	// ErrAccountNotFound indicates missing account.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrAccountHasMovements blocks deleting an account that has postings.
	ErrAccountHasMovements = errors.New("accounting: account has movements")
	// ErrStorage marks failures coming from the entry store.
	ErrStorage = errors.New("accounting: storage failure")
)

// StorageError wraps a store failure with the operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("accounting: storage %s: %v", e.Op, e.Err)
}

// Is reports ErrStorage so callers can branch on the kind.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Storage wraps err as a StorageError unless it is nil or already a domain error.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomain(err) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

// IsDomain reports whether err is one of the accounting sentinels (storage excluded).
func IsDomain(err error) bool {
	for _, target := range []error{
		ErrTooFewLines, ErrMissingAccount, ErrUnknownAccount, ErrNegativeAmount,
		ErrAmbiguousLine, ErrEmptyLine, ErrExcessPrecision, ErrUnbalanced,
		ErrZeroEntry, ErrEntryNotFound, ErrAccountNotFound, ErrAccountHasMovements,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	var se *StorageError
	return errors.As(err, &se)
}
