package parser

import (
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// DirectParser handles ICICI-style statements where every transaction reads
// left to right as one record:
//
//	DATE  DESCRIPTION  AMOUNT [CR|DR]  BALANCE
//
// Date format: DD/MM/YYYY
// Example entry: "01/04/2024 SALARY CREDIT HRMS 50,000.00 CR 75,000.00"
//
// The description stops at the first run of amounts. Within that run the
// last amount is the balance and the one before it the transaction amount.
// An entry without any amount is kept with zero credit and debit.
type DirectParser struct{}

func (p *DirectParser) Name() string {
	return "direct"
}

func (p *DirectParser) Extract(entry models.RawEntry) (models.Transaction, bool) {
	text := entry.Text
	loc := datePatternLong.FindStringSubmatchIndex(text)
	if loc == nil {
		return models.Transaction{}, false
	}
	date, err := parseDate(text[loc[2]:loc[3]])
	if err != nil {
		return models.Transaction{}, false
	}

	rest := text[loc[1]:]
	txn := models.Transaction{
		Date:     date,
		Credit:   decimal.Zero,
		Debit:    decimal.Zero,
		Balance:  decimal.Zero,
		Category: models.CategoryOthers,
	}

	tokens := amountTokens(rest)
	if len(tokens) == 0 {
		txn.Description = cleanDescription(rest)
		return txn, true
	}

	run := firstRun(rest, tokens)
	txn.Description = cleanDescription(rest[:run[0].start])
	if !fill(&txn, run, markerOnly) {
		return models.Transaction{}, false
	}
	return txn, true
}

// firstRun returns the first stretch of two or more adjacent amounts, or the
// first amount alone when no two amounts sit next to each other.
func firstRun(s string, tokens []amountToken) []amountToken {
	for i := 0; i+1 < len(tokens); i++ {
		if !adjacent(s, tokens[i], tokens[i+1]) {
			continue
		}
		j := i + 1
		for j+1 < len(tokens) && adjacent(s, tokens[j], tokens[j+1]) {
			j++
		}
		return tokens[i : j+1]
	}
	return tokens[:1]
}
