package journals

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

const maxBodyBytes = 1 << 20

// IdempotencyPort deduplicates create requests carrying an Idempotency-Key.
type IdempotencyPort interface {
	Begin(ctx context.Context, key, fingerprint string) (int64, bool, error)
	Complete(ctx context.Context, key, fingerprint string, id int64) error
	Release(ctx context.Context, key string) error
}

type Handler struct {
	service     *Service
	logger      *slog.Logger
	idempotency IdempotencyPort
	validator   *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service, idempotency IdempotencyPort) *Handler {
	return &Handler{logger: logger, service: service, idempotency: idempotency, validator: validator.New()}
}

type lineRequest struct {
	AccountID string          `json:"account_id" validate:"max=20"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

type entryRequest struct {
	Date        string        `json:"date" validate:"required,datetime=2006-01-02"`
	Description string        `json:"description" validate:"required,max=500"`
	Lines       []lineRequest `json:"lines" validate:"dive"`
}

func (req entryRequest) draft() EntryDraft {
	date, _ := time.Parse(httpx.DateLayout, req.Date)
	draft := EntryDraft{Date: date, Description: req.Description, Lines: make([]LineDraft, len(req.Lines))}
	for i, line := range req.Lines {
		draft.Lines[i] = LineDraft{AccountID: line.AccountID, Debit: line.Debit, Credit: line.Credit}
	}
	return draft
}

type lineResponse struct {
	ID        int64           `json:"id"`
	AccountID string          `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
}

type entryResponse struct {
	ID          int64           `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Lines       []lineResponse  `json:"lines"`
}

func toResponse(e JournalEntry) entryResponse {
	debit, credit := e.Totals()
	out := entryResponse{
		ID:          e.ID,
		Date:        e.Date.Format(httpx.DateLayout),
		Description: e.Description,
		TotalDebit:  debit,
		TotalCredit: credit,
		Lines:       make([]lineResponse, len(e.Lines)),
	}
	for i, line := range e.Lines {
		out.Lines[i] = lineResponse{ID: line.ID, AccountID: line.AccountID, Debit: line.Debit, Credit: line.Credit}
	}
	return out
}

func toResponses(entries []JournalEntry) []entryResponse {
	out := make([]entryResponse, len(entries))
	for i, e := range entries {
		out[i] = toResponse(e)
	}
	return out
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.List(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponses(entries))
}

// Book renders the journal book ordered by date.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.Journal(r.Context(), filter)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponses(entries))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(entry))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	body, req, ok := h.decode(w, r)
	if !ok {
		return
	}
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" || h.idempotency == nil {
		h.create(w, r, req)
		return
	}
	fp := internalShared.Fingerprint(body)
	id, replay, err := h.idempotency.Begin(r.Context(), key, fp)
	switch {
	case errors.Is(err, internalShared.ErrIdempotencyConflict), errors.Is(err, internalShared.ErrIdempotencyInFlight):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		return
	case err != nil:
		h.logger.Error("idempotency begin", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "")
		return
	case replay:
		httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
		return
	}
	// The outcome must be recorded even when the client has gone away.
	detached := context.WithoutCancel(r.Context())
	entry, err := h.service.Create(r.Context(), req.draft())
	if err != nil {
		if relErr := h.idempotency.Release(detached, key); relErr != nil {
			h.logger.Warn("idempotency release", slog.Any("error", relErr))
		}
		shared.RespondError(w, h.logger, err)
		return
	}
	if err := h.idempotency.Complete(detached, key, fp, entry.ID); err != nil {
		h.logger.Warn("idempotency complete", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": entry.ID})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request, req entryRequest) {
	entry, err := h.service.Create(r.Context(), req.draft())
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": entry.ID})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	_, req, ok := h.decode(w, r)
	if !ok {
		return
	}
	entry, err := h.service.Update(r.Context(), id, req.draft())
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": entry.ID, "message": "entry updated"})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) ([]byte, entryRequest, bool) {
	var req entryRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		httpx.Problem(w, http.StatusRequestEntityTooLarge, "Request Too Large", "")
		return nil, req, false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return nil, req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationFailed(w, err)
		return nil, req, false
	}
	return body, req, true
}

func parseFilter(r *http.Request) (Filter, error) {
	from, err := httpx.QueryDate(r, "from")
	if err != nil {
		return Filter{}, err
	}
	to, err := httpx.QueryDate(r, "to")
	if err != nil {
		return Filter{}, err
	}
	return Filter{From: from, To: to, Query: strings.TrimSpace(r.URL.Query().Get("q"))}, nil
}
