package accounting

import (
	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
)

// Handler wires ledger endpoints.
type Handler struct {
	accounts *accounts.Handler
	journals *journals.Handler
	reports  *reports.Handler
}

// NewHandler builds a Handler instance.
func NewHandler(accountsHandler *accounts.Handler, journalsHandler *journals.Handler, reportsHandler *reports.Handler) *Handler {
	return &Handler{accounts: accountsHandler, journals: journalsHandler, reports: reportsHandler}
}

// MountRoutes registers HTTP routes for the ledger module.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/accounts", h.accounts.MountRoutes)
	r.Route("/journals", h.journals.MountRoutes)
	r.Route("/ledger", h.reports.MountLedgerRoutes)
	r.Route("/reports", h.reports.MountRoutes)
}
