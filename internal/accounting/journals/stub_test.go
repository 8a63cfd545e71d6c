package journals

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

type memState struct {
	accounts map[string]accounts.Account
	entries  map[int64]JournalEntry
	nextID   int64
	nextLine int64
}

func (s memState) clone() memState {
	out := memState{
		accounts: make(map[string]accounts.Account, len(s.accounts)),
		entries:  make(map[int64]JournalEntry, len(s.entries)),
		nextID:   s.nextID,
		nextLine: s.nextLine,
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.entries {
		v.Lines = append([]JournalLine(nil), v.Lines...)
		out.entries[k] = v
	}
	return out
}

// stubRepo commits a copy of the state only when fn succeeds.
type stubRepo struct {
	state   memState
	failTx  error
	commits int
}

func newStubRepo(list ...accounts.Account) *stubRepo {
	repo := &stubRepo{state: memState{
		accounts: make(map[string]accounts.Account),
		entries:  make(map[int64]JournalEntry),
	}}
	for _, acc := range list {
		repo.state.accounts[acc.ID] = acc
	}
	return repo
}

func (r *stubRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r.failTx != nil {
		return shared.Storage("begin tx", r.failTx)
	}
	work := &stubTx{state: r.state.clone()}
	if err := fn(ctx, work); err != nil {
		return err
	}
	r.state = work.state
	r.commits++
	return nil
}

func (r *stubRepo) WithSnapshot(ctx context.Context, fn func(context.Context, Reader) error) error {
	if r.failTx != nil {
		return shared.Storage("snapshot", r.failTx)
	}
	return fn(ctx, &stubTx{state: r.state.clone()})
}

type stubTx struct {
	state memState
}

func (t *stubTx) ListEntries(_ context.Context, filter Filter) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range t.state.entries {
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *stubTx) GetEntry(_ context.Context, id int64) (JournalEntry, error) {
	e, ok := t.state.entries[id]
	if !ok {
		return JournalEntry{}, shared.ErrEntryNotFound
	}
	return e, nil
}

func (t *stubTx) ListAccounts(context.Context) ([]accounts.Account, error) {
	out := make([]accounts.Account, 0, len(t.state.accounts))
	for _, acc := range t.state.accounts {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *stubTx) LookupAccounts(_ context.Context, ids []string) ([]accounts.Account, error) {
	var out []accounts.Account
	for _, id := range ids {
		if acc, ok := t.state.accounts[id]; ok {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (t *stubTx) LockAccounts(ctx context.Context, ids []string) ([]accounts.Account, error) {
	return t.LookupAccounts(ctx, ids)
}

func (t *stubTx) LockEntry(_ context.Context, id int64) error {
	if _, ok := t.state.entries[id]; !ok {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (t *stubTx) InsertEntry(_ context.Context, draft EntryDraft) (JournalEntry, error) {
	t.state.nextID++
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	e := JournalEntry{ID: t.state.nextID, Date: draft.Date, Description: draft.Description, CreatedAt: now, UpdatedAt: now}
	t.state.entries[e.ID] = e
	return e, nil
}

func (t *stubTx) UpdateEntry(_ context.Context, id int64, draft EntryDraft) (JournalEntry, error) {
	e, ok := t.state.entries[id]
	if !ok {
		return JournalEntry{}, shared.ErrEntryNotFound
	}
	e.Date = draft.Date
	e.Description = draft.Description
	t.state.entries[id] = e
	return e, nil
}

func (t *stubTx) InsertLines(_ context.Context, entryID int64, lines []LineDraft) ([]JournalLine, error) {
	e, ok := t.state.entries[entryID]
	if !ok {
		return nil, errors.New("entry missing")
	}
	out := make([]JournalLine, 0, len(lines))
	for _, line := range lines {
		t.state.nextLine++
		out = append(out, JournalLine{ID: t.state.nextLine, EntryID: entryID, AccountID: line.AccountID, Debit: line.Debit, Credit: line.Credit})
	}
	e.Lines = append(e.Lines, out...)
	t.state.entries[entryID] = e
	return out, nil
}

func (t *stubTx) DeleteLines(_ context.Context, entryID int64) error {
	if e, ok := t.state.entries[entryID]; ok {
		e.Lines = nil
		t.state.entries[entryID] = e
	}
	return nil
}

func (t *stubTx) DeleteEntry(_ context.Context, id int64) error {
	if _, ok := t.state.entries[id]; !ok {
		return shared.ErrEntryNotFound
	}
	delete(t.state.entries, id)
	return nil
}

type stubMetrics struct {
	written  map[string]int
	rejected map[string]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{written: map[string]int{}, rejected: map[string]int{}}
}

func (m *stubMetrics) EntryWritten(op string)        { m.written[op]++ }
func (m *stubMetrics) ValidationFailed(kind string) { m.rejected[kind]++ }
