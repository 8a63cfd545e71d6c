package journals

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

func testCatalog() accounts.Catalog {
	return accounts.NewCatalog(accounts.DefaultChart(), []accounts.Account{
		{ID: "1101", Name: "Cash", Active: true},
		{ID: "2101", Name: "Suppliers", Active: true},
		{ID: "3101", Name: "Capital", Active: true},
		{ID: "4101", Name: "Rent", Active: true},
		{ID: "5101", Name: "Sales", Active: true},
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debit(id, amount string) LineDraft {
	return LineDraft{AccountID: id, Debit: dec(amount)}
}

func credit(id, amount string) LineDraft {
	return LineDraft{AccountID: id, Credit: dec(amount)}
}

func draftOf(lines ...LineDraft) EntryDraft {
	return EntryDraft{Date: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Description: "test", Lines: lines}
}

func requireKind(t *testing.T, err error, kind error, line int) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, line, verr.Line)
}

func TestValidateAcceptsBalancedEntry(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	out, err := v.Validate(draftOf(debit(" 1101 ", "1000"), credit("3101", "1000")), testCatalog())
	require.NoError(t, err)
	assert.Equal(t, "1101", out.Lines[0].AccountID)
}

func TestValidateRejectsTooFewLines(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	_, err := v.Validate(draftOf(debit("1101", "10")), testCatalog())
	requireKind(t, err, shared.ErrTooFewLines, shared.NoLine)

	_, err = v.Validate(draftOf(), testCatalog())
	requireKind(t, err, shared.ErrTooFewLines, shared.NoLine)
}

func TestValidateLineRules(t *testing.T) {
	cases := []struct {
		name string
		line LineDraft
		kind error
	}{
		{"missing account", LineDraft{Debit: dec("10")}, shared.ErrMissingAccount},
		{"unknown account", debit("9999", "10"), shared.ErrUnknownAccount},
		{"negative debit", LineDraft{AccountID: "1101", Debit: dec("-10")}, shared.ErrNegativeAmount},
		{"negative credit", LineDraft{AccountID: "1101", Credit: dec("-1")}, shared.ErrNegativeAmount},
		{"both sides", LineDraft{AccountID: "1101", Debit: dec("10"), Credit: dec("10")}, shared.ErrAmbiguousLine},
		{"neither side", LineDraft{AccountID: "1101"}, shared.ErrEmptyLine},
		{"excess precision", debit("1101", "10.005"), shared.ErrExcessPrecision},
	}
	v := NewValidator(DefaultPolicy())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Validate(draftOf(credit("3101", "10"), tc.line), testCatalog())
			requireKind(t, err, tc.kind, 1)
		})
	}
}

func TestValidateFirstFailingLineWins(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	_, err := v.Validate(draftOf(debit("9999", "10"), LineDraft{AccountID: "1101"}), testCatalog())
	requireKind(t, err, shared.ErrUnknownAccount, 0)
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "9999", verr.AccountID)
}

func TestValidateRejectsUnbalancedByOneCent(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	_, err := v.Validate(draftOf(debit("1101", "100"), credit("3101", "99.99")), testCatalog())
	requireKind(t, err, shared.ErrUnbalanced, shared.NoLine)
}

func TestValidateTrailingZerosArePrecise(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	_, err := v.Validate(draftOf(debit("1101", "0.100"), credit("3101", "0.1")), testCatalog())
	require.NoError(t, err)
}

func TestValidateScaleDisabled(t *testing.T) {
	v := NewValidator(Policy{Scale: -1})
	_, err := v.Validate(draftOf(debit("1101", "0.001"), credit("3101", "0.001")), testCatalog())
	require.NoError(t, err)
}

func TestValidateSplitEntry(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	_, err := v.Validate(draftOf(
		debit("4101", "300.50"),
		credit("1101", "100.25"),
		credit("2101", "200.25"),
	), testCatalog())
	require.NoError(t, err)
}

func TestValidateNilLookupRejectsAccounts(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	_, err := v.Validate(draftOf(debit("1101", "1"), credit("3101", "1")), nil)
	requireKind(t, err, shared.ErrUnknownAccount, 0)
}

func TestValidateIsPure(t *testing.T) {
	v := NewValidator(DefaultPolicy())
	in := draftOf(debit(" 1101", "5"), credit("3101", "5"))
	_, err := v.Validate(in, testCatalog())
	require.NoError(t, err)
	assert.Equal(t, " 1101", in.Lines[0].AccountID)
}

func TestStrictPolicyKeepsNonZeroEntries(t *testing.T) {
	v := NewValidator(Policy{StrictZeroEntry: true, Scale: 2})
	_, err := v.Validate(draftOf(debit("1101", "0.01"), credit("3101", "0.01")), testCatalog())
	require.NoError(t, err)
}
