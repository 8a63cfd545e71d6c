package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
)

func newReportCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a financial report from the current journal",
	}
	cmd.PersistentFlags().StringVar(&to, "to", "", "include entries dated on or before YYYY-MM-DD")

	cmd.AddCommand(&cobra.Command{
		Use:     "tb",
		Aliases: []string{"trial-balance"},
		Short:   "Trial balance of leaf accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReports(cmd, to, func(m *accounting.Module, filter journals.Filter) error {
				tb, err := m.Reports.TrialBalance(cmd.Context(), filter)
				if err != nil {
					return err
				}
				renderTrialBalance(cmd.OutOrStdout(), tb)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "is",
		Aliases: []string{"income-statement"},
		Short:   "Income statement",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReports(cmd, to, func(m *accounting.Module, filter journals.Filter) error {
				is, err := m.Reports.IncomeStatement(cmd.Context(), filter)
				if err != nil {
					return err
				}
				renderIncomeStatement(cmd.OutOrStdout(), is)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "bs",
		Aliases: []string{"balance-sheet"},
		Short:   "Balance sheet with the period result in equity",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReports(cmd, to, func(m *accounting.Module, filter journals.Filter) error {
				bs, err := m.Reports.BalanceSheet(cmd.Context(), filter)
				if err != nil {
					return err
				}
				renderBalanceSheet(cmd.OutOrStdout(), bs)
				return nil
			})
		},
	})

	return cmd
}

func parseTo(raw string) (journals.Filter, error) {
	if raw == "" {
		return journals.Filter{}, nil
	}
	t, err := time.Parse(httpx.DateLayout, raw)
	if err != nil {
		return journals.Filter{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return journals.Filter{To: &t}, nil
}

func withReports(cmd *cobra.Command, to string, fn func(*accounting.Module, journals.Filter) error) error {
	filter, err := parseTo(to)
	if err != nil {
		return err
	}
	e, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	chart, err := e.cfg.Chart()
	if err != nil {
		return err
	}
	module := accounting.NewModule(e.pool, accounting.Options{
		Chart:  chart,
		Layout: e.cfg.Layout(),
		Policy: e.cfg.Policy(),
	}, e.logger)
	return fn(module, filter)
}
