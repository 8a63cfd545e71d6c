package reports

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/ledger"
)

// BalanceSheet is the structured response for the balance sheet report.
// TotalEquity includes the period result.
type BalanceSheet struct {
	Assets      decimal.Decimal `json:"assets"`
	Liabilities decimal.Decimal `json:"liabilities"`
	Equity      decimal.Decimal `json:"equity"`
	NetIncome   decimal.Decimal `json:"net_income"`
	TotalEquity decimal.Decimal `json:"total_equity"`
	Balanced    bool            `json:"balanced"`

	CurrentAssets         decimal.Decimal `json:"current_assets"`
	NonCurrentAssets      decimal.Decimal `json:"non_current_assets"`
	CurrentLiabilities    decimal.Decimal `json:"current_liabilities"`
	NonCurrentLiabilities decimal.Decimal `json:"non_current_liabilities"`

	AssetLines     []StatementLine `json:"asset_lines"`
	LiabilityLines []StatementLine `json:"liability_lines"`
	EquityLines    []StatementLine `json:"equity_lines"`
}

// BuildBalanceSheet aggregates leaf balances into assets, liabilities and
// equity, adds the recomputed net income to equity and checks the equation
// at two decimal places.
func BuildBalanceSheet(l ledger.Ledger, parents map[string]struct{}, chart accounts.Chart, layout Layout) BalanceSheet {
	out := BalanceSheet{
		AssetLines:     []StatementLine{},
		LiabilityLines: []StatementLine{},
		EquityLines:    []StatementLine{},
	}
	for _, acc := range l.Leaves(parents) {
		category, ok := chart.Categorize(acc.AccountID)
		if !ok {
			continue
		}
		line := StatementLine{AccountID: acc.AccountID, Name: acc.Name, Balance: acc.Balance}
		switch category {
		case accounts.CategoryAsset:
			line.Amount = acc.Balance
			out.Assets = out.Assets.Add(line.Amount)
			switch {
			case hasAnyPrefix(acc.AccountID, layout.CurrentAssets):
				out.CurrentAssets = out.CurrentAssets.Add(line.Amount)
			case hasAnyPrefix(acc.AccountID, layout.NonCurrentAssets):
				out.NonCurrentAssets = out.NonCurrentAssets.Add(line.Amount)
			}
			out.AssetLines = append(out.AssetLines, line)
		case accounts.CategoryLiability:
			line.Amount = creditNormal(acc.Balance)
			out.Liabilities = out.Liabilities.Add(line.Amount)
			switch {
			case hasAnyPrefix(acc.AccountID, layout.CurrentLiabilities):
				out.CurrentLiabilities = out.CurrentLiabilities.Add(line.Amount)
			case hasAnyPrefix(acc.AccountID, layout.NonCurrentLiabilities):
				out.NonCurrentLiabilities = out.NonCurrentLiabilities.Add(line.Amount)
			}
			out.LiabilityLines = append(out.LiabilityLines, line)
		case accounts.CategoryEquity:
			line.Amount = creditNormal(acc.Balance)
			out.Equity = out.Equity.Add(line.Amount)
			out.EquityLines = append(out.EquityLines, line)
		}
	}
	sortLines(out.AssetLines)
	sortLines(out.LiabilityLines)
	sortLines(out.EquityLines)

	out.NetIncome = BuildIncomeStatement(l, parents, chart).NetIncome
	out.TotalEquity = out.Equity.Add(out.NetIncome)
	out.Balanced = out.Assets.Round(2).Equal(out.Liabilities.Add(out.TotalEquity).Round(2))
	return out
}

// TotalLiabilitiesAndEquity is the right-hand side of the accounting equation.
func (bs BalanceSheet) TotalLiabilitiesAndEquity() decimal.Decimal {
	return bs.Liabilities.Add(bs.TotalEquity)
}
