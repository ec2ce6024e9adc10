package parser

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Parser is an extraction strategy applied to one segmented entry.
type Parser interface {
	// Extract turns a raw entry into a transaction. The second result is
	// false when the entry does not hold a usable transaction.
	Extract(entry models.RawEntry) (models.Transaction, bool)
	// Name identifies the strategy in logs and reports.
	Name() string
}

// Source tells how the statement text was obtained.
type Source string

const (
	SourcePDF Source = "pdf"
	SourceOCR Source = "ocr"
)

// New returns the extraction strategy for a detected bank and text source.
// OCR text always goes through the OCR strategy regardless of bank.
func New(bank models.BankType, source Source) Parser {
	if source == SourceOCR {
		return &OCRParser{}
	}
	switch bank {
	case models.BankICICI:
		return &DirectParser{}
	default:
		return &FallbackParser{}
	}
}

// bankNeedles is checked in order; the first bank with a hit wins.
var bankNeedles = []struct {
	bank    models.BankType
	needles []string
}{
	{models.BankICICI, []string{"icici"}},
	{models.BankHDFC, []string{"hdfc"}},
	{models.BankSBI, []string{"state bank of india", "sbi"}},
}

// Detect identifies the issuing bank from statement text.
func Detect(text string) models.BankType {
	lower := strings.ToLower(text)
	for _, b := range bankNeedles {
		if containsAny(lower, b.needles) {
			return b.bank
		}
	}
	return models.BankUnknown
}

// ParseBankType resolves a user-supplied bank name.
func ParseBankType(name string) (models.BankType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "icici":
		return models.BankICICI, nil
	case "hdfc":
		return models.BankHDFC, nil
	case "sbi", "state bank of india":
		return models.BankSBI, nil
	case "unknown", "generic":
		return models.BankUnknown, nil
	default:
		return "", fmt.Errorf("unsupported bank type: %q", name)
	}
}

// Parse segments the pages and runs p over every entry. Entries the strategy
// rejects are counted in Dropped and never retried.
func Parse(p Parser, bank models.BankType, pages []string) *models.LedgerBatch {
	text, warnings := SegmentPages(pages)
	entries := Segment(text)

	batch := &models.LedgerBatch{
		ID:           uuid.New(),
		Bank:         bank,
		Strategy:     p.Name(),
		Transactions: []models.Transaction{},
		Warnings:     warnings,
	}
	for _, entry := range entries {
		txn, ok := p.Extract(entry)
		if !ok {
			batch.Dropped++
			continue
		}
		batch.Transactions = append(batch.Transactions, txn)
	}
	return batch
}

func containsAny(lower string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}
