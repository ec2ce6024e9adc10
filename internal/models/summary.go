package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlySummary aggregates one calendar month of a ledger.
type MonthlySummary struct {
	Year           int             `json:"year"`
	Month          time.Month      `json:"month"`
	Credit         decimal.Decimal `json:"credit"`
	Debit          decimal.Decimal `json:"debit"`
	BalanceSum     decimal.Decimal `json:"balanceSum"`
	AverageBalance decimal.Decimal `json:"averageBalance"`
	Count          int             `json:"count"`
}

// Period renders the month as YYYY-MM.
func (s MonthlySummary) Period() string {
	return time.Date(s.Year, s.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// CategorySummary aggregates all transactions sharing a category.
type CategorySummary struct {
	Category Category        `json:"category"`
	Credit   decimal.Decimal `json:"credit"`
	Debit    decimal.Decimal `json:"debit"`
	Count    int             `json:"count"`
}

// DayCount is a calendar day together with a number of matching transactions.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Metrics are the scalar figures used by reports.
type Metrics struct {
	TotalDeposits         decimal.Decimal  `json:"totalDeposits"`
	TotalWithdrawals      decimal.Decimal  `json:"totalWithdrawals"`
	AverageBalance        decimal.Decimal  `json:"averageBalance"`
	TransactionCount      int              `json:"transactionCount"`
	FlaggedCount          int              `json:"flaggedCount"`
	HighFrequencyDayCount int              `json:"highFrequencyDayCount"`
	CategoryCounts        map[Category]int `json:"categoryCounts"`
}
