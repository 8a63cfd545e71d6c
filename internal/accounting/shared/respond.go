package shared

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

// ValidationProblem extends the RFC7807 body with the offending line.
type ValidationProblem struct {
	httpx.ProblemDetail
	Kind      string `json:"kind"`
	Line      *int   `json:"line,omitempty"`
	AccountID string `json:"account_id,omitempty"`
}

// RespondError maps accounting errors to HTTP problem responses.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		body := ValidationProblem{
			ProblemDetail: httpx.ProblemDetail{
				Title:  "Invalid Journal Entry",
				Status: http.StatusUnprocessableEntity,
				Detail: verr.Error(),
			},
			Kind:      KindName(verr.Kind),
			AccountID: verr.AccountID,
		}
		if verr.Line != NoLine {
			line := verr.Line
			body.Line = &line
		}
		httpx.JSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, ErrEntryNotFound), errors.Is(err, ErrAccountNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAccountHasMovements):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrStorage):
		if logger != nil {
			logger.Error("ledger storage", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Storage Failure", "")
	default:
		if logger != nil {
			logger.Error("ledger request", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
	}
}
