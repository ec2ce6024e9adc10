// Package aggregator derives monthly, per-category and scalar summaries from
// a classified ledger. Every function is a pure re-derivation of its input.
package aggregator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

type monthKey struct {
	year  int
	month int
}

type monthAcc struct {
	summary  models.MonthlySummary
	balances int
}

// Monthly groups transactions by calendar month, earliest month first.
// AverageBalance is the mean over transactions with a known balance and is
// zero for months where none is known.
func Monthly(txns []models.Transaction) []models.MonthlySummary {
	accs := make(map[monthKey]*monthAcc)
	for _, txn := range txns {
		key := monthKey{year: txn.Date.Year(), month: int(txn.Date.Month())}
		acc, ok := accs[key]
		if !ok {
			acc = &monthAcc{summary: models.MonthlySummary{
				Year:           key.year,
				Month:          txn.Date.Month(),
				Credit:         decimal.Zero,
				Debit:          decimal.Zero,
				BalanceSum:     decimal.Zero,
				AverageBalance: decimal.Zero,
			}}
			accs[key] = acc
		}

		s := &acc.summary
		s.Credit = s.Credit.Add(txn.Credit)
		s.Debit = s.Debit.Add(txn.Debit)
		s.Count++
		if txn.HasBalance {
			s.BalanceSum = s.BalanceSum.Add(txn.Balance)
			acc.balances++
		}
	}

	out := make([]models.MonthlySummary, 0, len(accs))
	for _, acc := range accs {
		if acc.balances > 0 {
			acc.summary.AverageBalance = acc.summary.BalanceSum.Div(decimal.NewFromInt(int64(acc.balances)))
		}
		out = append(out, acc.summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// ByCategory sums transactions per category in report order, omitting
// categories with no transactions.
func ByCategory(txns []models.Transaction) []models.CategorySummary {
	sums := make(map[models.Category]*models.CategorySummary)
	for _, txn := range txns {
		cat := txn.Category
		if cat == "" {
			cat = models.CategoryOthers
		}
		s, ok := sums[cat]
		if !ok {
			s = &models.CategorySummary{Category: cat, Credit: decimal.Zero, Debit: decimal.Zero}
			sums[cat] = s
		}
		s.Credit = s.Credit.Add(txn.Credit)
		s.Debit = s.Debit.Add(txn.Debit)
		s.Count++
	}

	out := []models.CategorySummary{}
	for _, cat := range models.Categories {
		if s, ok := sums[cat]; ok {
			out = append(out, *s)
		}
	}
	return out
}

// Summarize computes the scalar report figures.
func Summarize(txns, flagged []models.Transaction, days []models.DayCount) models.Metrics {
	m := models.Metrics{
		TotalDeposits:         decimal.Zero,
		TotalWithdrawals:      decimal.Zero,
		AverageBalance:        decimal.Zero,
		TransactionCount:      len(txns),
		FlaggedCount:          len(flagged),
		HighFrequencyDayCount: len(days),
		CategoryCounts:        make(map[models.Category]int),
	}

	balanceSum := decimal.Zero
	balances := 0
	for _, txn := range txns {
		m.TotalDeposits = m.TotalDeposits.Add(txn.Credit)
		m.TotalWithdrawals = m.TotalWithdrawals.Add(txn.Debit)
		if txn.HasBalance {
			balanceSum = balanceSum.Add(txn.Balance)
			balances++
		}
		if txn.Category != "" {
			m.CategoryCounts[txn.Category]++
		}
	}
	if balances > 0 {
		m.AverageBalance = balanceSum.Div(decimal.NewFromInt(int64(balances)))
	}
	return m
}
