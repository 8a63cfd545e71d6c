package journals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

// Repository encapsulates DB operations for journals.
type Repository interface {
	// WithTx runs fn in a read-write RepeatableRead transaction.
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	// WithSnapshot runs fn against a read-only snapshot of committed entries.
	WithSnapshot(ctx context.Context, fn func(context.Context, Reader) error) error
}

// Reader exposes the queries available on a snapshot.
type Reader interface {
	// ListEntries returns entries with their lines in insertion order.
	ListEntries(ctx context.Context, filter Filter) ([]JournalEntry, error)
	GetEntry(ctx context.Context, id int64) (JournalEntry, error)
	ListAccounts(ctx context.Context) ([]accounts.Account, error)
	LookupAccounts(ctx context.Context, ids []string) ([]accounts.Account, error)
}

// TxRepository exposes methods available within a write transaction.
type TxRepository interface {
	Reader
	// LockAccounts loads ids and holds a share lock until commit.
	LockAccounts(ctx context.Context, ids []string) ([]accounts.Account, error)
	LockEntry(ctx context.Context, id int64) error
	InsertEntry(ctx context.Context, draft EntryDraft) (JournalEntry, error)
	UpdateEntry(ctx context.Context, id int64, draft EntryDraft) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []LineDraft) ([]JournalLine, error)
	DeleteLines(ctx context.Context, entryID int64) error
	DeleteEntry(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
	return shared.Storage("tx", err)
}

func (r *repository) WithSnapshot(ctx context.Context, fn func(context.Context, Reader) error) error {
	err := db.WithSnapshot(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
	return shared.Storage("snapshot", err)
}

type txRepository struct {
	tx pgx.Tx
}

const entryColumns = `id, date, description, created_at, updated_at`

func (r *txRepository) ListEntries(ctx context.Context, filter Filter) ([]JournalEntry, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE ($1::date IS NULL OR date >= $1::date)
  AND ($2::date IS NULL OR date <= $2::date)
  AND ($3 = '' OR description ILIKE '%' || $3 || '%')
ORDER BY id ASC`, filter.From, filter.To, filter.Query)
	if err != nil {
		return nil, shared.Storage("list entries", err)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, shared.Storage("scan entries", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}
	ids := make([]int64, len(entries))
	index := make(map[int64]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
		index[e.ID] = i
	}
	lines, err := r.linesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		i := index[line.EntryID]
		entries[i].Lines = append(entries[i].Lines, line)
	}
	return entries, nil
}

func (r *txRepository) GetEntry(ctx context.Context, id int64) (JournalEntry, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id=$1`, id)
	if err != nil {
		return JournalEntry{}, shared.Storage("get entry", err)
	}
	entry, err := pgx.CollectExactlyOneRow(rows, scanEntry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrEntryNotFound
		}
		return JournalEntry{}, shared.Storage("get entry", err)
	}
	entry.Lines, err = r.linesFor(ctx, []int64{id})
	if err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) linesFor(ctx context.Context, entryIDs []int64) ([]JournalLine, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, entry_id, account_id, debit::text, credit::text
FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id ASC, id ASC`, entryIDs)
	if err != nil {
		return nil, shared.Storage("list lines", err)
	}
	lines, err := pgx.CollectRows(rows, scanLine)
	if err != nil {
		return nil, shared.Storage("scan lines", err)
	}
	return lines, nil
}

func (r *txRepository) ListAccounts(ctx context.Context) ([]accounts.Account, error) {
	return r.queryAccounts(ctx, `SELECT id, name, active, created_at, updated_at FROM accounts ORDER BY id`)
}

func (r *txRepository) LookupAccounts(ctx context.Context, ids []string) ([]accounts.Account, error) {
	return r.queryAccounts(ctx, `SELECT id, name, active, created_at, updated_at FROM accounts WHERE id = ANY($1)`, ids)
}

func (r *txRepository) LockAccounts(ctx context.Context, ids []string) ([]accounts.Account, error) {
	return r.queryAccounts(ctx, `SELECT id, name, active, created_at, updated_at FROM accounts WHERE id = ANY($1) ORDER BY id FOR SHARE`, ids)
}

func (r *txRepository) queryAccounts(ctx context.Context, sql string, args ...any) ([]accounts.Account, error) {
	rows, err := r.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, shared.Storage("list accounts", err)
	}
	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (accounts.Account, error) {
		var a accounts.Account
		err := row.Scan(&a.ID, &a.Name, &a.Active, &a.CreatedAt, &a.UpdatedAt)
		return a, err
	})
	if err != nil {
		return nil, shared.Storage("scan accounts", err)
	}
	return list, nil
}

func (r *txRepository) LockEntry(ctx context.Context, id int64) error {
	var got int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM journal_entries WHERE id=$1 FOR UPDATE`, id).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.ErrEntryNotFound
	}
	return shared.Storage("lock entry", err)
}

func (r *txRepository) InsertEntry(ctx context.Context, draft EntryDraft) (JournalEntry, error) {
	entry := JournalEntry{Date: draft.Date, Description: draft.Description}
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (date, description)
VALUES ($1,$2) RETURNING id, created_at, updated_at`, draft.Date, draft.Description).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return JournalEntry{}, shared.Storage("insert entry", err)
	}
	return entry, nil
}

func (r *txRepository) UpdateEntry(ctx context.Context, id int64, draft EntryDraft) (JournalEntry, error) {
	entry := JournalEntry{ID: id, Date: draft.Date, Description: draft.Description}
	err := r.tx.QueryRow(ctx, `UPDATE journal_entries SET date=$2, description=$3, updated_at=NOW()
WHERE id=$1 RETURNING created_at, updated_at`, id, draft.Date, draft.Description).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrEntryNotFound
		}
		return JournalEntry{}, shared.Storage("update entry", err)
	}
	return entry, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []LineDraft) ([]JournalLine, error) {
	out := make([]JournalLine, 0, len(lines))
	for idx, line := range lines {
		stored := JournalLine{EntryID: entryID, AccountID: line.AccountID, Debit: line.Debit, Credit: line.Credit}
		err := r.tx.QueryRow(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit)
VALUES ($1,$2,$3::numeric,$4::numeric) RETURNING id`, entryID, line.AccountID, line.Debit.String(), line.Credit.String()).
			Scan(&stored.ID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return nil, shared.Invalid(shared.ErrUnknownAccount, idx, line.AccountID, "account removed concurrently")
			}
			return nil, shared.Storage("insert line", err)
		}
		out = append(out, stored)
	}
	return out, nil
}

func (r *txRepository) DeleteLines(ctx context.Context, entryID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id=$1`, entryID)
	return shared.Storage("delete lines", err)
}

func (r *txRepository) DeleteEntry(ctx context.Context, id int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1`, id)
	if err != nil {
		return shared.Storage("delete entry", err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func scanEntry(row pgx.CollectableRow) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.Date, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func scanLine(row pgx.CollectableRow) (JournalLine, error) {
	var (
		line          JournalLine
		debit, credit string
	)
	if err := row.Scan(&line.ID, &line.EntryID, &line.AccountID, &debit, &credit); err != nil {
		return JournalLine{}, err
	}
	var err error
	if line.Debit, err = decimal.NewFromString(debit); err != nil {
		return JournalLine{}, fmt.Errorf("debit of line %d: %w", line.ID, err)
	}
	if line.Credit, err = decimal.NewFromString(credit); err != nil {
		return JournalLine{}, fmt.Errorf("credit of line %d: %w", line.ID, err)
	}
	return line, nil
}
