package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/reports"
	"github.com/odyssey-erp/odyssey-ledger/jobs"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	headingStyle = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	amountStyle  = cellStyle.Align(lipgloss.Right)

	titleCaser = cases.Title(language.English)
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func heading(category accounts.Category) string {
	return headingStyle.Render(titleCaser.String(string(category)))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// newTable renders rows whose numeric columns start at firstAmount.
func newTable(firstAmount int, headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= firstAmount:
				return amountStyle
			default:
				return cellStyle
			}
		})
}

func renderTrialBalance(w io.Writer, tb reports.TrialBalance) {
	t := newTable(2, "Account", "Name", "Debit", "Credit")
	for _, row := range tb.Rows {
		t.Row(row.AccountID, row.Name, money(row.Debit), money(row.Credit))
	}
	t.Row("", "Total", money(tb.TotalDebit), money(tb.TotalCredit))
	_, _ = fmt.Fprintln(w, t.String())
	if !tb.Balanced() {
		printError(w, "trial balance does not balance")
	}
}

func statementSection(w io.Writer, category accounts.Category, lines []reports.StatementLine, total decimal.Decimal) {
	_, _ = fmt.Fprintln(w, heading(category))
	t := newTable(2, "Account", "Name", "Amount")
	for _, line := range lines {
		t.Row(line.AccountID, line.Name, money(line.Amount))
	}
	t.Row("", "Total", money(total))
	_, _ = fmt.Fprintln(w, t.String())
}

func renderIncomeStatement(w io.Writer, is reports.IncomeStatement) {
	statementSection(w, accounts.CategoryIncome, is.IncomeLines, is.Income)
	statementSection(w, accounts.CategoryExpense, is.ExpenseLines, is.Expense)
	_, _ = fmt.Fprintf(w, "Net income: %s\n", money(is.NetIncome))
}

func renderBalanceSheet(w io.Writer, bs reports.BalanceSheet) {
	statementSection(w, accounts.CategoryAsset, bs.AssetLines, bs.Assets)
	_, _ = fmt.Fprintf(w, "Current %s  Non-current %s\n", money(bs.CurrentAssets), money(bs.NonCurrentAssets))
	statementSection(w, accounts.CategoryLiability, bs.LiabilityLines, bs.Liabilities)
	_, _ = fmt.Fprintf(w, "Current %s  Non-current %s\n", money(bs.CurrentLiabilities), money(bs.NonCurrentLiabilities))
	statementSection(w, accounts.CategoryEquity, bs.EquityLines, bs.Equity)
	_, _ = fmt.Fprintf(w, "Net income %s  Total equity %s\n", money(bs.NetIncome), money(bs.TotalEquity))
	if bs.Balanced {
		printSuccess(w, "assets equal liabilities plus equity")
		return
	}
	printError(w, fmt.Sprintf("assets %s differ from liabilities plus equity %s",
		money(bs.Assets), money(bs.TotalLiabilitiesAndEquity())))
}

func renderQueueStats(w io.Writer, stats jobs.QueueStats) {
	t := newTable(1, "Queue", "Pending", "Active", "Scheduled", "Retry", "Archived", "Processed", "Failed")
	t.Row(stats.Queue,
		fmt.Sprint(stats.Pending), fmt.Sprint(stats.Active), fmt.Sprint(stats.Scheduled),
		fmt.Sprint(stats.Retry), fmt.Sprint(stats.Archived), fmt.Sprint(stats.Processed),
		fmt.Sprint(stats.Failed))
	_, _ = fmt.Fprintln(w, t.String())
}
