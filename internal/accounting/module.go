package accounting

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
)

// Options configures the ledger services.
type Options struct {
	Chart  accounts.Chart
	Layout reports.Layout
	Policy journals.Policy
}

// Module holds the ledger services sharing one store.
type Module struct {
	Accounts *accounts.Service
	Journals *journals.Service
	Reports  *reports.Service
}

// NewModule builds the services on top of a PostgreSQL pool.
func NewModule(pool *pgxpool.Pool, opts Options, logger *slog.Logger) *Module {
	entries := journals.NewRepository(pool)
	return &Module{
		Accounts: accounts.NewService(accounts.NewRepository(pool), opts.Chart, logger),
		Journals: journals.NewService(entries, journals.NewValidator(opts.Policy), opts.Chart, logger),
		Reports:  reports.NewService(entries, opts.Chart, opts.Layout, logger),
	}
}

// Handler builds the HTTP handler for the module.
func (m *Module) Handler(logger *slog.Logger, idempotency journals.IdempotencyPort) *Handler {
	return NewHandler(
		accounts.NewHandler(logger, m.Accounts),
		journals.NewHandler(logger, m.Journals, idempotency),
		reports.NewHandler(logger, m.Reports),
	)
}
