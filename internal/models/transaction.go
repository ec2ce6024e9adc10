package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single normalized ledger entry.
type Transaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Credit      decimal.Decimal `json:"credit"`
	Debit       decimal.Decimal `json:"debit"`
	Balance     decimal.Decimal `json:"balance"`
	HasBalance  bool            `json:"hasBalance"` // false when the source line carried no balance
	Category    Category        `json:"category"`
}

// RawEntry is a block of statement text believed to hold one transaction.
// It may span several physical lines, joined with single spaces.
type RawEntry struct {
	Text string
}

// BankType is the layout profile picked by bank detection.
type BankType string

const (
	BankICICI   BankType = "icici"
	BankHDFC    BankType = "hdfc"
	BankSBI     BankType = "sbi"
	BankUnknown BankType = "unknown"
)

// Category is the classifier's label for a transaction.
type Category string

const (
	CategoryOthers         Category = "Others"
	CategorySalary         Category = "Salary"
	CategoryEMIBounce      Category = "EMI Bounce"
	CategoryUPI            Category = "UPI"
	CategorySuspiciousCash Category = "Suspicious Cash Deposit"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategorySalary,
	CategoryEMIBounce,
	CategoryUPI,
	CategorySuspiciousCash,
	CategoryOthers,
}

// Warning is a non-fatal observation made while building a ledger.
type Warning struct {
	Kind    string `json:"kind"`
	Page    int    `json:"page,omitempty"`
	Message string `json:"message"`
}

// WarningPageBreakSplit marks a page whose leading lines were merged into the
// last entry of the previous page.
const WarningPageBreakSplit = "page_break_split"

// LedgerBatch holds the transactions parsed from one document, in document order.
type LedgerBatch struct {
	ID           uuid.UUID     `json:"id"`
	Bank         BankType      `json:"bank"`
	Strategy     string        `json:"strategy"`
	Transactions []Transaction `json:"transactions"`
	Dropped      int           `json:"dropped"`
	Warnings     []Warning     `json:"warnings,omitempty"`
}
