package reports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

type snapshotRepo struct {
	entries   []journals.JournalEntry
	accounts  []accounts.Account
	err       error
	snapshots atomic.Int32
}

func (r *snapshotRepo) WithTx(context.Context, func(context.Context, journals.TxRepository) error) error {
	return errors.New("read only")
}

func (r *snapshotRepo) WithSnapshot(ctx context.Context, fn func(context.Context, journals.Reader) error) error {
	r.snapshots.Add(1)
	if r.err != nil {
		return shared.Storage("snapshot", r.err)
	}
	return fn(ctx, r)
}

func (r *snapshotRepo) ListEntries(_ context.Context, f journals.Filter) ([]journals.JournalEntry, error) {
	var out []journals.JournalEntry
	for _, e := range r.entries {
		if f.From != nil && e.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Date.After(*f.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *snapshotRepo) GetEntry(_ context.Context, id int64) (journals.JournalEntry, error) {
	for _, e := range r.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return journals.JournalEntry{}, shared.ErrEntryNotFound
}

func (r *snapshotRepo) ListAccounts(context.Context) ([]accounts.Account, error) {
	return r.accounts, nil
}

func (r *snapshotRepo) LookupAccounts(_ context.Context, ids []string) ([]accounts.Account, error) {
	var out []accounts.Account
	for _, acc := range r.accounts {
		for _, id := range ids {
			if acc.ID == id {
				out = append(out, acc)
			}
		}
	}
	return out, nil
}

type recordingMetrics struct {
	reports []string
}

func (m *recordingMetrics) ReportBuilt(report string, _ time.Duration) {
	m.reports = append(m.reports, report)
}

func newReportService(t *testing.T) (*Service, *snapshotRepo, *recordingMetrics) {
	t.Helper()
	repo := &snapshotRepo{entries: sampleEntries(), accounts: chartAccounts()}
	svc := NewService(repo, accounts.DefaultChart(), DefaultLayout(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	metrics := &recordingMetrics{}
	svc.WithMetrics(metrics)
	return svc, repo, metrics
}

func TestStatementsUseOneSnapshot(t *testing.T) {
	svc, repo, metrics := newReportService(t)
	st, err := svc.Statements(context.Background(), journals.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.snapshots.Load())
	assert.True(t, st.TrialBalance.Balanced())
	assert.True(t, st.IncomeStatement.NetIncome.Equal(dec("130")))
	assert.True(t, st.BalanceSheet.Balanced)
	assert.Equal(t, []string{"statements"}, metrics.reports)
}

func TestReportsAsOfDate(t *testing.T) {
	svc, _, _ := newReportService(t)
	to := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	is, err := svc.IncomeStatement(context.Background(), journals.Filter{To: &to})
	require.NoError(t, err)
	assert.True(t, is.Income.IsZero())
	assert.True(t, is.Expense.Equal(dec("300")))
}

func TestGeneralLedgerIsIdempotent(t *testing.T) {
	svc, _, _ := newReportService(t)
	first, err := svc.GeneralLedger(context.Background(), journals.Filter{})
	require.NoError(t, err)
	second, err := svc.GeneralLedger(context.Background(), journals.Filter{})
	require.NoError(t, err)
	assert.Equal(t, first.Rows(), second.Rows())
}

func TestDeletedEntryLeavesNoTrace(t *testing.T) {
	svc, repo, _ := newReportService(t)
	repo.entries = repo.entries[:len(repo.entries)-1]
	row, err := svc.AccountLedger(context.Background(), "4199", journals.Filter{})
	require.NoError(t, err)
	assert.Empty(t, row.Movements)
	assert.True(t, row.Balance.IsZero())

	tb, err := svc.TrialBalance(context.Background(), journals.Filter{})
	require.NoError(t, err)
	for _, r := range tb.Rows {
		assert.NotEqual(t, "4199", r.AccountID)
	}
}

func TestAccountLedger(t *testing.T) {
	svc, _, _ := newReportService(t)
	row, err := svc.AccountLedger(context.Background(), "1101", journals.Filter{})
	require.NoError(t, err)
	require.Len(t, row.Movements, 3)
	assert.True(t, row.Balance.Equal(dec("745.5")))

	_, err = svc.AccountLedger(context.Background(), "9999", journals.Filter{})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestReportStorageFailure(t *testing.T) {
	svc, repo, _ := newReportService(t)
	repo.err = errors.New("connection reset")
	_, err := svc.BalanceSheet(context.Background(), journals.Filter{})
	require.ErrorIs(t, err, shared.ErrStorage)
}

func newReportRouter(t *testing.T) (http.Handler, *snapshotRepo) {
	t.Helper()
	svc, repo, _ := newReportService(t)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Route("/reports", h.MountRoutes)
	r.Route("/ledger", h.MountLedgerRoutes)
	return r, repo
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerBalanceSheet(t *testing.T) {
	h, _ := newReportRouter(t)
	rec := get(h, "/reports/balance-sheet")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["balanced"])
	assert.Equal(t, "1605.5", body["assets"])
}

func TestHandlerTrialBalanceAndStatements(t *testing.T) {
	h, _ := newReportRouter(t)
	rec := get(h, "/reports/trial-balance?to=2024-01-01")
	require.Equal(t, http.StatusOK, rec.Code)
	var tb TrialBalance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tb))
	require.Len(t, tb.Rows, 2)
	assert.True(t, tb.TotalDebit.Equal(dec("1000")))

	assert.Equal(t, http.StatusOK, get(h, "/reports/statements").Code)
	assert.Equal(t, http.StatusOK, get(h, "/reports/income-statement").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/reports/trial-balance?to=01-01-2024").Code)
}

func TestHandlerLedger(t *testing.T) {
	h, _ := newReportRouter(t)
	rec := get(h, "/ledger?from=2024-01-03")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "4101")
	assert.NotContains(t, body, "3101")

	assert.Equal(t, http.StatusOK, get(h, "/ledger/1101").Code)
	assert.Equal(t, http.StatusNotFound, get(h, "/ledger/9999").Code)
}

func TestHandlerStorageFailureIs500(t *testing.T) {
	h, repo := newReportRouter(t)
	repo.err = errors.New("boom")
	assert.Equal(t, http.StatusInternalServerError, get(h, "/reports/balance-sheet").Code)
}

// gatedRepo parks the first snapshot after it has read its entries.
type gatedRepo struct {
	*snapshotRepo
	reading chan struct{}
	gate    chan struct{}
	reads   atomic.Int32
}

func (g *gatedRepo) WithSnapshot(ctx context.Context, fn func(context.Context, journals.Reader) error) error {
	return g.snapshotRepo.WithSnapshot(ctx, func(ctx context.Context, _ journals.Reader) error {
		return fn(ctx, g)
	})
}

func (g *gatedRepo) ListEntries(ctx context.Context, f journals.Filter) ([]journals.JournalEntry, error) {
	out, err := g.snapshotRepo.ListEntries(ctx, f)
	if g.reads.Add(1) == 1 {
		close(g.reading)
		<-g.gate
	}
	return out, err
}

func TestHandlerReportAfterDeleteIgnoresEarlierRead(t *testing.T) {
	svc, inner, _ := newReportService(t)
	repo := &gatedRepo{snapshotRepo: inner, reading: make(chan struct{}), gate: make(chan struct{})}
	svc.repo = repo
	r := chi.NewRouter()
	r.Route("/reports", NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).MountRoutes)

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() { first <- get(r, "/reports/trial-balance") }()
	<-repo.reading

	kept := inner.entries[:0]
	for _, e := range inner.entries {
		if e.ID != 7 {
			kept = append(kept, e)
		}
	}
	inner.entries = kept

	second := make(chan *httptest.ResponseRecorder, 1)
	go func() { second <- get(r, "/reports/trial-balance") }()
	var rec *httptest.ResponseRecorder
	select {
	case rec = <-second:
		close(repo.gate)
	case <-time.After(2 * time.Second):
		close(repo.gate)
		rec = <-second
	}

	require.Equal(t, http.StatusOK, rec.Code)
	var tb TrialBalance
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tb))
	for _, row := range tb.Rows {
		assert.NotEqual(t, "4199", row.AccountID, "report built before the delete was returned")
	}
	assert.True(t, tb.Balanced())
	assert.Equal(t, http.StatusOK, (<-first).Code)
}

func TestFlightJoinsOnlyBeforeSnapshot(t *testing.T) {
	var f flight
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	build := func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		if n == 1 {
			snapshotStarting(ctx)
			close(started)
			<-release
		}
		return n, nil
	}

	leader := make(chan any, 1)
	go func() {
		v, _, _ := f.do(context.Background(), "tb|", build)
		leader <- v
	}()
	<-started

	v, err, joined := f.do(context.Background(), "tb|", build)
	require.NoError(t, err)
	assert.False(t, joined)
	assert.EqualValues(t, 2, v)

	close(release)
	assert.EqualValues(t, 1, <-leader)
}
