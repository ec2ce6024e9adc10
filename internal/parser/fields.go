package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// amountToken is an amount found in entry text plus the CR/DR marker that
// directly follows it, if any.
type amountToken struct {
	start, end int
	marker     string
	text       string
}

// amountTokens locates every amount in s together with its marker.
func amountTokens(s string) []amountToken {
	locs := findAmounts(s)
	tokens := make([]amountToken, 0, len(locs))
	for _, loc := range locs {
		marker, _ := markerAfter(s, loc[1])
		tokens = append(tokens, amountToken{
			start:  loc[0],
			end:    loc[1],
			marker: marker,
			text:   s[loc[0]:loc[1]],
		})
	}
	return tokens
}

// adjacent reports whether b follows a with nothing but whitespace and an
// optional CR/DR marker in between.
func adjacent(s string, a, b amountToken) bool {
	_, end := markerAfter(s, a.end)
	return strings.TrimSpace(s[end:b.start]) == ""
}

// direction decides whether the transaction amount is a credit.
type direction func(amount amountToken) bool

// fill sets credit/debit and balance on txn from the amount tokens. With two
// or more tokens the last is the balance and the one before it the amount;
// a single token is the amount with an unknown balance.
func fill(txn *models.Transaction, tokens []amountToken, isCredit direction) bool {
	if len(tokens) == 0 {
		return false
	}

	amountTok := tokens[0]
	if len(tokens) >= 2 {
		amountTok = tokens[len(tokens)-2]
		balance, err := parseAmount(tokens[len(tokens)-1].text)
		if err != nil {
			return false
		}
		txn.Balance = balance
		txn.HasBalance = true
	}

	amount, err := parseAmount(amountTok.text)
	if err != nil {
		return false
	}

	txn.Credit, txn.Debit = decimal.Zero, decimal.Zero
	if isCredit(amountTok) {
		txn.Credit = amount
	} else {
		txn.Debit = amount
	}
	return true
}

// markerOnly treats an amount as credit only when it carries a CR marker.
// Unmarked amounts are debits.
func markerOnly(amount amountToken) bool {
	return amount.marker == "CR"
}

// markerOrContext prefers the amount's own marker and otherwise looks for a
// CR/CREDIT word anywhere in text. Anything else is a debit.
func markerOrContext(text string) direction {
	return func(amount amountToken) bool {
		switch amount.marker {
		case "CR":
			return true
		case "DR":
			return false
		}
		return creditWordPattern.MatchString(text)
	}
}
