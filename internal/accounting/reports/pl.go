package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
)

// StatementLine shows a leaf account next to what it contributed to its section.
type StatementLine struct {
	AccountID string          `json:"account_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Amount    decimal.Decimal `json:"amount"`
}

// IncomeStatement contains the structured output for the report.
type IncomeStatement struct {
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	NetIncome    decimal.Decimal `json:"net_income"`
	IncomeLines  []StatementLine `json:"income_lines"`
	ExpenseLines []StatementLine `json:"expense_lines"`
}

// BuildIncomeStatement sums leaf income and expense accounts. Income is
// credit-normal and only counts negative balances; expense keeps its sign so
// contra accounts reduce the total.
func BuildIncomeStatement(l ledger.Ledger, parents map[string]struct{}, chart accounts.Chart) IncomeStatement {
	out := IncomeStatement{IncomeLines: []StatementLine{}, ExpenseLines: []StatementLine{}}
	for _, acc := range l.Leaves(parents) {
		category, ok := chart.Categorize(acc.AccountID)
		if !ok {
			continue
		}
		line := StatementLine{AccountID: acc.AccountID, Name: acc.Name, Balance: acc.Balance}
		switch category {
		case accounts.CategoryIncome:
			line.Amount = creditNormal(acc.Balance)
			out.IncomeLines = append(out.IncomeLines, line)
			out.Income = out.Income.Add(line.Amount)
		case accounts.CategoryExpense:
			line.Amount = acc.Balance
			out.ExpenseLines = append(out.ExpenseLines, line)
			out.Expense = out.Expense.Add(line.Amount)
		}
	}
	sortLines(out.IncomeLines)
	sortLines(out.ExpenseLines)
	out.NetIncome = out.Income.Sub(out.Expense)
	return out
}

// creditNormal returns |balance| for a negative balance and zero otherwise.
func creditNormal(balance decimal.Decimal) decimal.Decimal {
	if balance.IsNegative() {
		return balance.Abs()
	}
	return decimal.Zero
}

func sortLines(lines []StatementLine) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].AccountID < lines[j].AccountID })
}
