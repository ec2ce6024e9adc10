package writer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func sampleLedger() []models.Transaction {
	return []models.Transaction{
		{
			Date:        time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			Description: "SALARY CREDIT HRMS",
			Credit:      decimal.RequireFromString("50000"),
			Debit:       decimal.Zero,
			Balance:     decimal.RequireFromString("75000"),
			HasBalance:  true,
			Category:    models.CategorySalary,
		},
		{
			Date:        time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC),
			Description: "UPI/SWIGGY, ORDER 12",
			Credit:      decimal.Zero,
			Debit:       decimal.RequireFromString("1234.56"),
			Balance:     decimal.Zero,
			HasBalance:  false,
			Category:    models.CategoryUPI,
		},
	}
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.Write(&buf, sampleLedger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	expected := []string{
		"Date,Description,Credit,Debit,Balance",
		"01/04/2024,SALARY CREDIT HRMS,50000.00,0.00,75000.00",
		`02/04/2024,"UPI/SWIGGY, ORDER 12",0.00,1234.56,`,
	}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d: %q", len(expected), len(lines), buf.String())
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], expected[i])
		}
	}
}

func TestCSVWriter_WriteWithCategory(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeCategory: true}
	if err := w.Write(&buf, sampleLedger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.HasPrefix(output, "Date,Description,Credit,Debit,Balance,Category\n") {
		t.Errorf("expected category column header, got %q", output)
	}
	if !strings.Contains(output, "75000.00,Salary") {
		t.Error("expected salary category value")
	}
}

func TestCSVWriter_EmptyLedger(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	if err := w.Write(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Date,Description,Credit,Debit,Balance" {
		t.Errorf("expected header only, got %q", got)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	var first bytes.Buffer
	w := &CSVWriter{IncludeCategory: true}
	if err := w.Write(&first, sampleLedger()); err != nil {
		t.Fatalf("write: %v", err)
	}

	txns, err := ReadCSV(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if txns[1].HasBalance {
		t.Error("empty balance must read back as unknown")
	}
	if txns[1].Description != "UPI/SWIGGY, ORDER 12" {
		t.Errorf("description: got %q", txns[1].Description)
	}

	var second bytes.Buffer
	if err := w.Write(&second, txns); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if first.String() != second.String() {
		t.Errorf("round trip changed output:\nfirst:  %q\nsecond: %q", first.String(), second.String())
	}
}

func TestReadCSV_GroupedAmounts(t *testing.T) {
	in := "Date,Description,Credit,Debit,Balance\n05/04/2024,NEFT,\"1,234.56\",0.00,\"2,24,550.00\"\n"

	txns, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(txns))
	}
	if got := formatAmount(txns[0].Credit); got != "1234.56" {
		t.Errorf("credit: got %s, want 1234.56", got)
	}
	if got := formatAmount(txns[0].Balance); got != "224550.00" {
		t.Errorf("balance: got %s, want 224550.00", got)
	}
	if txns[0].Category != models.CategoryOthers {
		t.Errorf("category: got %q, want default", txns[0].Category)
	}
}

func TestReadCSV_InvalidDate(t *testing.T) {
	in := "Date,Description,Credit,Debit,Balance\n2024-04-05,NEFT,1.00,0.00,\n"
	if _, err := ReadCSV(strings.NewReader(in)); err == nil {
		t.Error("expected error for ISO date")
	}
}

func TestCSVWriter_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	w := &CSVWriter{}
	if err := w.WriteToFile(path, sampleLedger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "SALARY CREDIT HRMS") {
		t.Error("expected ledger content in file")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"25.99", "25.99"},
		{"1234.56", "1234.56"},
		{"0", "0.00"},
		{"2500", "2500.00"},
	}

	for _, tt := range tests {
		got := formatAmount(decimal.RequireFromString(tt.input))
		if got != tt.expected {
			t.Errorf("formatAmount(%s): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
