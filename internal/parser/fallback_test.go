package parser

import (
	"testing"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func TestFallbackParser_Extract(t *testing.T) {
	p := &FallbackParser{}

	tests := []struct {
		name        string
		entry       string
		wantOK      bool
		description string
		credit      string
		debit       string
		balance     string
		hasBalance  bool
	}{
		{
			name:        "context word marks credit",
			entry:       "01/04/2024 NEFT CR-ACME CORP SALARY 40,000.00 90,000.00",
			wantOK:      true,
			description: "NEFT CR-ACME CORP SALARY",
			credit:      "40000.00", debit: "0.00", balance: "90000.00", hasBalance: true,
		},
		{
			name:        "explicit DR marker beats credit word",
			entry:       "02/04/2024 CREDIT CARD BILL 5,000.00 DR 85,000.00",
			wantOK:      true,
			description: "CREDIT CARD BILL",
			credit:      "0.00", debit: "5000.00", balance: "85000.00", hasBalance: true,
		},
		{
			name:        "no direction defaults to debit",
			entry:       "03/04/24 UPI/ZOMATO/ORDER 350.00 84,650.00",
			wantOK:      true,
			description: "UPI/ZOMATO/ORDER",
			credit:      "0.00", debit: "350.00", balance: "84650.00", hasBalance: true,
		},
		{
			name:        "CR inside a word is not a marker",
			entry:       "04/04/2024 ACCRUED SCRIPT FEE 10.00 84,640.00",
			wantOK:      true,
			description: "ACCRUED SCRIPT FEE",
			credit:      "0.00", debit: "10.00", balance: "84640.00", hasBalance: true,
		},
		{
			name:        "single amount leaves balance unknown",
			entry:       "05/04/2024 CASH DEPOSIT CREDIT 25,000.00",
			wantOK:      true,
			description: "CASH DEPOSIT CREDIT",
			credit:      "25000.00", debit: "0.00", balance: "0.00", hasBalance: false,
		},
		{
			name:        "three amounts use the last two",
			entry:       "06/04/2024 IMPS 1.00 250.00 84,390.00",
			wantOK:      true,
			description: "IMPS",
			credit:      "0.00", debit: "250.00", balance: "84390.00", hasBalance: true,
		},
		{
			name:   "no amounts is dropped",
			entry:  "07/04/2024 BALANCE FORWARD",
			wantOK: false,
		},
		{
			name:   "no date is dropped",
			entry:  "UPI/SWIGGY 200.00 84,190.00",
			wantOK: false,
		},
		{
			name:   "invalid calendar date is dropped",
			entry:  "30/02/2024 UPI 10.00 20.00",
			wantOK: false,
		},
		{
			name:        "Rs. prefix glued to the amount",
			entry:       "08/04/2024 ATM WDL Rs.500.00 1,000.00",
			wantOK:      true,
			description: "ATM WDL",
			credit:      "0.00", debit: "500.00", balance: "1000.00", hasBalance: true,
		},
		{
			name:        "Rs. prefix with a space",
			entry:       "08/04/24 ATM WDL Rs. 500.00 1,000.00",
			wantOK:      true,
			description: "ATM WDL",
			credit:      "0.00", debit: "500.00", balance: "1000.00", hasBalance: true,
		},
		{
			name:   "opening balance line with a date is dropped",
			entry:  "Opening Balance as on 01/04/2024 10,000.00",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, ok := p.Extract(models.RawEntry{Text: tt.entry})
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if txn.Description != tt.description {
				t.Errorf("description: got %q, want %q", txn.Description, tt.description)
			}
			if txn.Credit.StringFixed(2) != tt.credit {
				t.Errorf("credit: got %s, want %s", txn.Credit.StringFixed(2), tt.credit)
			}
			if txn.Debit.StringFixed(2) != tt.debit {
				t.Errorf("debit: got %s, want %s", txn.Debit.StringFixed(2), tt.debit)
			}
			if txn.Balance.StringFixed(2) != tt.balance {
				t.Errorf("balance: got %s, want %s", txn.Balance.StringFixed(2), tt.balance)
			}
			if txn.HasBalance != tt.hasBalance {
				t.Errorf("hasBalance: got %v, want %v", txn.HasBalance, tt.hasBalance)
			}
		})
	}
}
