package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/db"
)

type seedAccount struct {
	id   string
	name string
}

// Grouping accounts come first so every leaf has its parents in the chart.
var seedAccounts = []seedAccount{
	{"1", "Assets"},
	{"11", "Current assets"},
	{"1101", "Cash"},
	{"1102", "Receivables"},
	{"12", "Non-current assets"},
	{"1201", "Equipment"},
	{"2", "Liabilities"},
	{"21", "Current liabilities"},
	{"2101", "Suppliers"},
	{"22", "Non-current liabilities"},
	{"2201", "Long-term loan"},
	{"3", "Equity"},
	{"3101", "Capital"},
	{"4", "Expenses"},
	{"4101", "Rent"},
	{"4102", "Wages"},
	{"5", "Income"},
	{"5101", "Sales"},
}

func seedEntries(start time.Time) []journals.EntryDraft {
	line := func(account string, debit, credit int64) journals.LineDraft {
		return journals.LineDraft{AccountID: account, Debit: decimal.NewFromInt(debit), Credit: decimal.NewFromInt(credit)}
	}
	day := func(n int) time.Time { return start.AddDate(0, 0, n) }
	return []journals.EntryDraft{
		{Date: day(0), Description: "Owner contribution", Lines: []journals.LineDraft{line("1101", 10000, 0), line("3101", 0, 10000)}},
		{Date: day(1), Description: "Equipment financed by loan", Lines: []journals.LineDraft{line("1201", 4000, 0), line("2201", 0, 4000)}},
		{Date: day(5), Description: "Monthly rent", Lines: []journals.LineDraft{line("4101", 1200, 0), line("1101", 0, 1200)}},
		{Date: day(10), Description: "Invoice customer", Lines: []journals.LineDraft{line("1102", 3500, 0), line("5101", 0, 3500)}},
		{Date: day(15), Description: "Supplier bill", Lines: []journals.LineDraft{line("4102", 800, 0), line("2101", 0, 800)}},
		{Date: day(20), Description: "Customer payment", Lines: []journals.LineDraft{line("1101", 2000, 0), line("1102", 0, 2000)}},
	}
}

func newSeedCommand() *cobra.Command {
	var accountsOnly bool
	var from string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a sample chart of accounts and journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Date(time.Now().Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
			if from != "" {
				filter, err := parseTo(from)
				if err != nil {
					return err
				}
				start = *filter.To
			}

			e, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := db.Migrate(cmd.Context(), e.pool); err != nil {
				return fmt.Errorf("applying schema: %w", err)
			}
			inserted, err := seedChart(cmd.Context(), e.pool)
			if err != nil {
				return fmt.Errorf("seeding accounts: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%d accounts added", inserted))
			if accountsOnly {
				return nil
			}

			chart, err := e.cfg.Chart()
			if err != nil {
				return err
			}
			module := accounting.NewModule(e.pool, accounting.Options{
				Chart:  chart,
				Layout: e.cfg.Layout(),
				Policy: e.cfg.Policy(),
			}, e.logger)
			for _, draft := range seedEntries(start) {
				entry, err := module.Journals.Create(cmd.Context(), draft)
				if err != nil {
					return fmt.Errorf("seeding %q: %w", draft.Description, err)
				}
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("entry %d %s", entry.ID, entry.Description))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&accountsOnly, "accounts-only", false, "only insert the chart of accounts")
	cmd.Flags().StringVar(&from, "from", "", "date of the first sample entry (YYYY-MM-DD)")

	return cmd
}

func seedChart(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	var inserted int64
	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, acc := range seedAccounts {
			batch.Queue(`INSERT INTO accounts (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, acc.id, acc.name)
		}
		results := tx.SendBatch(ctx, batch)
		for range seedAccounts {
			tag, err := results.Exec()
			if err != nil {
				_ = results.Close()
				return err
			}
			inserted += tag.RowsAffected()
		}
		return results.Close()
	})
	return inserted, err
}
