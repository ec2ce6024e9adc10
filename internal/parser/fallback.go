package parser

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// FallbackParser is the generic strategy used for HDFC, SBI and statements
// from banks that could not be detected.
//
// It only relies on the entry starting with a DD/MM/YYYY or DD/MM/YY date and
// carrying at least one amount. With two or more amounts the last one is the
// balance and the one before it the transaction amount. Direction comes from a
// CR/DR marker after the amount, then from a CR/CREDIT word anywhere in the
// entry, and defaults to debit.
type FallbackParser struct{}

func (p *FallbackParser) Name() string {
	return "fallback"
}

func (p *FallbackParser) Extract(entry models.RawEntry) (models.Transaction, bool) {
	return extractTail(entry.Text, datePatternSlash)
}

// extractTail implements the date + trailing-amounts layout shared by the
// fallback and OCR strategies. The description is whatever sits between the
// date and the first amount.
func extractTail(text string, datePattern *regexp.Regexp) (models.Transaction, bool) {
	loc := datePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.Transaction{}, false
	}
	date, err := parseDate(text[loc[2]:loc[3]])
	if err != nil {
		return models.Transaction{}, false
	}

	rest := text[loc[1]:]
	tokens := amountTokens(rest)
	if len(tokens) == 0 {
		return models.Transaction{}, false
	}

	txn := models.Transaction{
		Date:        date,
		Description: cleanDescription(rest[:tokens[0].start]),
		Credit:      decimal.Zero,
		Debit:       decimal.Zero,
		Balance:     decimal.Zero,
		Category:    models.CategoryOthers,
	}
	if !fill(&txn, tokens, markerOrContext(text)) {
		return models.Transaction{}, false
	}
	return txn, true
}
