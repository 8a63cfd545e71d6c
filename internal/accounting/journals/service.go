package journals

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// MetricsPort records write outcomes.
type MetricsPort interface {
	EntryWritten(op string)
	ValidationFailed(kind string)
}

type Service struct {
	repo      Repository
	validator *Validator
	chart     accounts.Chart
	metrics   MetricsPort
	logger    *slog.Logger
}

func NewService(repo Repository, validator *Validator, chart accounts.Chart, logger *slog.Logger) *Service {
	if validator == nil {
		validator = NewValidator(DefaultPolicy())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: validator, chart: chart, logger: logger}
}

// WithMetrics attaches a metrics sink.
func (s *Service) WithMetrics(m MetricsPort) {
	s.metrics = m
}

// List returns entries matching filter in insertion order.
func (s *Service) List(ctx context.Context, filter Filter) ([]JournalEntry, error) {
	var entries []JournalEntry
	err := s.repo.WithSnapshot(ctx, func(ctx context.Context, r Reader) error {
		var err error
		entries, err = r.ListEntries(ctx, filter)
		return err
	})
	return entries, err
}

// Journal returns the journal book: entries ordered by date, then id.
func (s *Service) Journal(ctx context.Context, filter Filter) ([]JournalEntry, error) {
	entries, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *Service) Get(ctx context.Context, id int64) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithSnapshot(ctx, func(ctx context.Context, r Reader) error {
		var err error
		entry, err = r.GetEntry(ctx, id)
		return err
	})
	return entry, err
}

// Create validates draft and persists it with its lines atomically.
func (s *Service) Create(ctx context.Context, draft EntryDraft) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		valid, err := s.validate(ctx, tx, draft)
		if err != nil {
			return err
		}
		inserted, err := tx.InsertEntry(ctx, valid)
		if err != nil {
			return err
		}
		inserted.Lines, err = tx.InsertLines(ctx, inserted.ID, valid.Lines)
		if err != nil {
			return err
		}
		entry = inserted
		return nil
	})
	if err != nil {
		s.fail("create", err)
		return JournalEntry{}, err
	}
	s.written("create", entry.ID)
	return entry, nil
}

// Update replaces the header and the whole line set of entry id.
func (s *Service) Update(ctx context.Context, id int64, draft EntryDraft) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockEntry(ctx, id); err != nil {
			return err
		}
		valid, err := s.validate(ctx, tx, draft)
		if err != nil {
			return err
		}
		updated, err := tx.UpdateEntry(ctx, id, valid)
		if err != nil {
			return err
		}
		if err := tx.DeleteLines(ctx, id); err != nil {
			return err
		}
		updated.Lines, err = tx.InsertLines(ctx, id, valid.Lines)
		if err != nil {
			return err
		}
		entry = updated
		return nil
	})
	if err != nil {
		s.fail("update", err)
		return JournalEntry{}, err
	}
	s.written("update", entry.ID)
	return entry, nil
}

// Delete removes entry id and all of its lines.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockEntry(ctx, id); err != nil {
			return err
		}
		if err := tx.DeleteLines(ctx, id); err != nil {
			return err
		}
		return tx.DeleteEntry(ctx, id)
	})
	if err != nil {
		s.fail("delete", err)
		return err
	}
	s.written("delete", id)
	return nil
}

func (s *Service) validate(ctx context.Context, tx TxRepository, draft EntryDraft) (EntryDraft, error) {
	draft = draft.Normalize()
	if len(draft.Lines) < 2 {
		return s.validator.Validate(draft, nil)
	}
	list, err := tx.LockAccounts(ctx, draft.AccountIDs())
	if err != nil {
		return EntryDraft{}, err
	}
	return s.validator.Validate(draft, accounts.NewCatalog(s.chart, list))
}

func (s *Service) written(op string, id int64) {
	if s.metrics != nil {
		s.metrics.EntryWritten(op)
	}
	s.logger.Info("journal entry written", slog.String("op", op), slog.Int64("entry_id", id))
}

func (s *Service) fail(op string, err error) {
	var verr *shared.ValidationError
	if errors.As(err, &verr) {
		if s.metrics != nil {
			s.metrics.ValidationFailed(shared.KindName(verr.Kind))
		}
		s.logger.Debug("journal entry rejected", slog.String("op", op), slog.Any("error", err))
		return
	}
	if errors.Is(err, shared.ErrStorage) || !shared.IsDomain(err) {
		s.logger.Error("journal entry write", slog.String("op", op), slog.Any("error", err))
	}
}
