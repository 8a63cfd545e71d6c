package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
)

// ErrLedgerOutOfBalance is returned when the derived statements disagree.
var ErrLedgerOutOfBalance = errors.New("jobs: ledger out of balance")

// StatementSource builds the statements from one snapshot.
type StatementSource interface {
	Statements(ctx context.Context, filter journals.Filter) (reports.Statements, error)
}

// IntegrityRecorder records integrity outcomes.
type IntegrityRecorder interface {
	IntegrityChecked(ok bool)
}

// RunGLIntegrityCheck rebuilds trial balance and balance sheet and fails when
// either one does not balance.
func RunGLIntegrityCheck(ctx context.Context, source StatementSource, asOf *time.Time, logger *slog.Logger) (reports.Statements, error) {
	st, err := source.Statements(ctx, journals.Filter{To: asOf})
	if err != nil {
		return reports.Statements{}, err
	}
	tb, bs := st.TrialBalance, st.BalanceSheet
	if !tb.Balanced() {
		return st, fmt.Errorf("%w: trial balance debit %s credit %s", ErrLedgerOutOfBalance, tb.TotalDebit, tb.TotalCredit)
	}
	if !bs.Balanced {
		return st, fmt.Errorf("%w: assets %s liabilities and equity %s", ErrLedgerOutOfBalance, bs.Assets, bs.TotalLiabilitiesAndEquity())
	}
	if logger != nil {
		logger.Info("GL integrity check executed",
			slog.String("job", "gl_integrity"),
			slog.Int("accounts", len(tb.Rows)),
			slog.String("total_debit", tb.TotalDebit.String()))
	}
	return st, nil
}

// IntegrityHandler processes TaskLedgerIntegrity tasks.
type IntegrityHandler struct {
	source  StatementSource
	metrics IntegrityRecorder
	logger  *slog.Logger
}

// NewIntegrityHandler wires the integrity task to a statement source.
func NewIntegrityHandler(source StatementSource, metrics IntegrityRecorder, logger *slog.Logger) *IntegrityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityHandler{source: source, metrics: metrics, logger: logger}
}

// ProcessTask implements asynq.Handler. Imbalances are not retried.
func (h *IntegrityHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload IntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("jobs: decode integrity payload: %w", errors.Join(err, asynq.SkipRetry))
	}
	asOf, err := payload.AsOfDate()
	if err != nil {
		return errors.Join(err, asynq.SkipRetry)
	}
	runID := payload.RunID
	if runID == "" && t.ResultWriter() != nil {
		runID = t.ResultWriter().TaskID()
	}
	_, err = RunGLIntegrityCheck(ctx, h.source, asOf, h.logger.With(slog.String("run_id", runID)))
	if h.metrics != nil {
		h.metrics.IntegrityChecked(err == nil)
	}
	if errors.Is(err, ErrLedgerOutOfBalance) {
		h.logger.Error("ledger integrity failed", slog.String("run_id", runID), slog.Any("error", err))
		return errors.Join(err, asynq.SkipRetry)
	}
	return err
}

// TaskHandler exposes the handler for WorkerConfig.
func (h *IntegrityHandler) TaskHandler() TaskHandler {
	return TaskHandler{Type: TaskLedgerIntegrity, Handler: h.ProcessTask}
}
