package reports

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// MetricsPort observes report build durations.
type MetricsPort interface {
	ReportBuilt(report string, elapsed time.Duration)
}

// Service derives every report from one read snapshot per call.
type Service struct {
	repo    journals.Repository
	chart   accounts.Chart
	layout  Layout
	metrics MetricsPort
	logger  *slog.Logger
}

func NewService(repo journals.Repository, chart accounts.Chart, layout Layout, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, chart: chart, layout: layout, logger: logger}
}

// WithMetrics attaches a metrics sink.
func (s *Service) WithMetrics(m MetricsPort) {
	s.metrics = m
}

// Chart returns the category chart used by the statements.
func (s *Service) Chart() accounts.Chart {
	return s.chart
}

type snapshot struct {
	ledger  ledger.Ledger
	catalog accounts.Catalog
}

func (s *Service) load(ctx context.Context, filter journals.Filter) (snapshot, error) {
	var snap snapshot
	err := s.repo.WithSnapshot(ctx, func(ctx context.Context, r journals.Reader) error {
		snapshotStarting(ctx)
		list, err := r.ListAccounts(ctx)
		if err != nil {
			return err
		}
		entries, err := r.ListEntries(ctx, filter)
		if err != nil {
			return err
		}
		snap.catalog = accounts.NewCatalog(s.chart, list)
		snap.ledger = ledger.Aggregate(entries, snap.catalog)
		return nil
	})
	return snap, err
}

func (s *Service) observe(report string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ReportBuilt(report, time.Since(start))
	}
}

// GeneralLedger returns every posted account with its movements.
func (s *Service) GeneralLedger(ctx context.Context, filter journals.Filter) (ledger.Ledger, error) {
	defer s.observe("general_ledger", time.Now())
	snap, err := s.load(ctx, filter)
	return snap.ledger, err
}

// AccountLedger returns the ledger row of one account. An account without
// postings yields an empty row.
func (s *Service) AccountLedger(ctx context.Context, id string, filter journals.Filter) (ledger.Row, error) {
	defer s.observe("account_ledger", time.Now())
	snap, err := s.load(ctx, filter)
	if err != nil {
		return ledger.Row{}, err
	}
	if row, ok := snap.ledger.Row(id); ok {
		return row, nil
	}
	acc, ok := snap.catalog.Lookup(id)
	if !ok {
		return ledger.Row{}, shared.ErrAccountNotFound
	}
	return ledger.Row{AccountID: acc.ID, Name: acc.Name, Category: acc.Category, Movements: []ledger.Movement{}}, nil
}

func (s *Service) TrialBalance(ctx context.Context, filter journals.Filter) (TrialBalance, error) {
	defer s.observe("trial_balance", time.Now())
	snap, err := s.load(ctx, filter)
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(snap.ledger, ledger.DetectParents(snap.ledger.IDs())), nil
}

func (s *Service) IncomeStatement(ctx context.Context, filter journals.Filter) (IncomeStatement, error) {
	defer s.observe("income_statement", time.Now())
	snap, err := s.load(ctx, filter)
	if err != nil {
		return IncomeStatement{}, err
	}
	return BuildIncomeStatement(snap.ledger, ledger.DetectParents(snap.ledger.IDs()), s.chart), nil
}

func (s *Service) BalanceSheet(ctx context.Context, filter journals.Filter) (BalanceSheet, error) {
	defer s.observe("balance_sheet", time.Now())
	snap, err := s.load(ctx, filter)
	if err != nil {
		return BalanceSheet{}, err
	}
	bs := BuildBalanceSheet(snap.ledger, ledger.DetectParents(snap.ledger.IDs()), s.chart, s.layout)
	if !bs.Balanced {
		s.logger.Warn("balance sheet out of balance",
			slog.String("assets", bs.Assets.String()),
			slog.String("liabilities_and_equity", bs.TotalLiabilitiesAndEquity().String()))
	}
	return bs, nil
}

// Statements builds the three reports from a single snapshot.
func (s *Service) Statements(ctx context.Context, filter journals.Filter) (Statements, error) {
	defer s.observe("statements", time.Now())
	snap, err := s.load(ctx, filter)
	if err != nil {
		return Statements{}, err
	}
	parents := ledger.DetectParents(snap.ledger.IDs())
	out := Statements{AsOf: filter.To}
	var g errgroup.Group
	g.Go(func() error {
		out.TrialBalance = BuildTrialBalance(snap.ledger, parents)
		return nil
	})
	g.Go(func() error {
		out.IncomeStatement = BuildIncomeStatement(snap.ledger, parents, s.chart)
		return nil
	})
	g.Go(func() error {
		out.BalanceSheet = BuildBalanceSheet(snap.ledger, parents, s.chart, s.layout)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Statements{}, err
	}
	return out, nil
}
