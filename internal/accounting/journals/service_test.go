package journals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

func newTestService() (*Service, *stubRepo, *stubMetrics) {
	repo := newStubRepo(
		accounts.Account{ID: "1101", Name: "Cash", Active: true},
		accounts.Account{ID: "2101", Name: "Suppliers", Active: true},
		accounts.Account{ID: "3101", Name: "Capital", Active: true},
		accounts.Account{ID: "4101", Name: "Rent", Active: true},
		accounts.Account{ID: "5101", Name: "Sales", Active: true},
	)
	svc := NewService(repo, NewValidator(DefaultPolicy()), accounts.DefaultChart(), nil)
	metrics := newStubMetrics()
	svc.WithMetrics(metrics)
	return svc, repo, metrics
}

func dated(d EntryDraft, day int, desc string) EntryDraft {
	d.Date = time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	d.Description = desc
	return d
}

func TestCreatePersistsEntryWithLines(t *testing.T) {
	svc, repo, metrics := newTestService()
	entry, err := svc.Create(context.Background(), draftOf(debit("1101", "1000"), credit("3101", "1000")))
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.ID)
	require.Len(t, entry.Lines, 2)
	assert.Equal(t, entry.ID, entry.Lines[0].EntryID)
	assert.Equal(t, 1, repo.commits)
	assert.Equal(t, 1, metrics.written["create"])

	got, err := svc.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
}

func TestCreateRejectedLeavesStoreUntouched(t *testing.T) {
	svc, repo, metrics := newTestService()
	_, err := svc.Create(context.Background(), draftOf(debit("1101", "100"), credit("3101", "99.99")))
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	assert.Empty(t, repo.state.entries)
	assert.Zero(t, repo.commits)
	assert.Equal(t, 1, metrics.rejected["unbalanced"])
}

func TestCreateRejectsUnknownAccount(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), draftOf(debit("1101", "10"), credit("7777", "10")))
	require.ErrorIs(t, err, shared.ErrUnknownAccount)
}

func TestCreateRejectsSingleLine(t *testing.T) {
	svc, _, metrics := newTestService()
	_, err := svc.Create(context.Background(), draftOf(debit("1101", "10")))
	require.ErrorIs(t, err, shared.ErrTooFewLines)
	assert.Equal(t, 1, metrics.rejected["too_few_lines"])
}

func TestUpdateReplacesWholeLineSet(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	entry, err := svc.Create(ctx, draftOf(debit("1101", "1000"), credit("3101", "1000")))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, entry.ID, dated(draftOf(
		debit("4101", "300"),
		credit("1101", "100"),
		credit("2101", "200"),
	), 9, "rent split"))
	require.NoError(t, err)
	assert.Equal(t, entry.ID, updated.ID)
	assert.Equal(t, "rent split", updated.Description)

	stored := repo.state.entries[entry.ID]
	require.Len(t, stored.Lines, 3)
	assert.Equal(t, "4101", stored.Lines[0].AccountID)
	d, c := stored.Totals()
	assert.True(t, d.Equal(c))
}

func TestUpdateRevalidatesAndKeepsPreviousLines(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	entry, err := svc.Create(ctx, draftOf(debit("1101", "50"), credit("3101", "50")))
	require.NoError(t, err)

	_, err = svc.Update(ctx, entry.ID, draftOf(debit("1101", "50"), credit("3101", "40")))
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Len(t, repo.state.entries[entry.ID].Lines, 2)
	assert.True(t, repo.state.entries[entry.ID].Lines[1].Credit.Equal(dec("50")))
}

func TestUpdateUnknownEntry(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Update(context.Background(), 99, draftOf(debit("1101", "1"), credit("3101", "1")))
	require.ErrorIs(t, err, shared.ErrEntryNotFound)
}

func TestDeleteRemovesEntry(t *testing.T) {
	svc, repo, metrics := newTestService()
	ctx := context.Background()
	entry, err := svc.Create(ctx, draftOf(debit("1101", "10"), credit("3101", "10")))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	assert.Empty(t, repo.state.entries)
	assert.Equal(t, 1, metrics.written["delete"])

	err = svc.Delete(ctx, entry.ID)
	require.ErrorIs(t, err, shared.ErrEntryNotFound)
}

func TestListFiltersAndJournalOrdering(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	for _, d := range []EntryDraft{
		dated(draftOf(debit("1101", "1000"), credit("3101", "1000")), 20, "capital"),
		dated(draftOf(debit("4101", "300"), credit("1101", "300")), 3, "rent"),
		dated(draftOf(debit("1101", "500"), credit("5101", "500")), 10, "cash sale"),
	} {
		_, err := svc.Create(ctx, d)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})

	book, err := svc.Journal(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, []int64{book[0].ID, book[1].ID, book[2].ID})

	from := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	ranged, err := svc.List(ctx, Filter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "cash sale", ranged[0].Description)

	matched, err := svc.List(ctx, Filter{Query: "RENT"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, int64(2), matched[0].ID)
}

func TestStorageFailureIsWrapped(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failTx = errors.New("connection refused")
	_, err := svc.Create(context.Background(), draftOf(debit("1101", "1"), credit("3101", "1")))
	require.ErrorIs(t, err, shared.ErrStorage)
	assert.Equal(t, "storage_failure", shared.KindName(err))
}
