package reports

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
	flight  flight
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the financial statement endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.report("trial_balance", func(ctx context.Context, f journals.Filter) (any, error) {
		return h.service.TrialBalance(ctx, f)
	}))
	r.Get("/income-statement", h.report("income_statement", func(ctx context.Context, f journals.Filter) (any, error) {
		return h.service.IncomeStatement(ctx, f)
	}))
	r.Get("/balance-sheet", h.report("balance_sheet", func(ctx context.Context, f journals.Filter) (any, error) {
		return h.service.BalanceSheet(ctx, f)
	}))
	r.Get("/statements", h.report("statements", func(ctx context.Context, f journals.Filter) (any, error) {
		return h.service.Statements(ctx, f)
	}))
}

// MountLedgerRoutes registers the general ledger endpoints.
func (h *Handler) MountLedgerRoutes(r chi.Router) {
	r.Get("/", h.generalLedger)
	r.Get("/{accountID}", h.accountLedger)
}

func (h *Handler) report(name string, build func(context.Context, journals.Filter) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		to, err := httpx.QueryDate(r, "to")
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		key := name + "|" + strings.TrimSpace(r.URL.Query().Get("to"))
		result, err, _ := h.flight.do(r.Context(), key, func(ctx context.Context) (any, error) {
			return build(ctx, journals.Filter{To: to})
		})
		if err != nil {
			shared.RespondError(w, h.logger, err)
			return
		}
		httpx.JSON(w, http.StatusOK, result)
	}
}

func (h *Handler) generalLedger(w http.ResponseWriter, r *http.Request) {
	filter, err := rangeFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	l, err := h.service.GeneralLedger(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, l)
}

func (h *Handler) accountLedger(w http.ResponseWriter, r *http.Request) {
	filter, err := rangeFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	row, err := h.service.AccountLedger(r.Context(), chi.URLParam(r, "accountID"), filter)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func rangeFilter(r *http.Request) (journals.Filter, error) {
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		return journals.Filter{}, err
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		return journals.Filter{}, err
	}
	return journals.Filter{From: from, To: to}, nil
}
