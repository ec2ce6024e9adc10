package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date and amount patterns shared by every strategy.
var (
	// DD/MM/YYYY or DD/MM/YY at the start of a line
	boundaryPattern = regexp.MustCompile(`^(\d{2}/\d{2}/(?:\d{4}|\d{2}))\b`)
	// leading DD/MM/YYYY or DD/MM/YY of an entry
	datePatternSlash = regexp.MustCompile(`^\s*(\d{2}/\d{2}/(?:\d{4}|\d{2}))\b`)
	// leading DD/MM/YYYY of an entry
	datePatternLong = regexp.MustCompile(`^\s*(\d{2}/\d{2}/\d{4})\b`)
	// a whole date token, captured as day / month / year
	dateTokenPattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4}|\d{2})$`)

	// 1,234.56 or 1,50,000.00 (lakh grouping) or 1234.56
	amountPattern = regexp.MustCompile(`(?:\d{1,3}(?:,\d{2,3})+|\d+)\.\d{2}`)
	// strict form accepted by parseAmount once separators are gone
	amountTokenPattern = regexp.MustCompile(`^\d+\.\d{2}$`)

	// CR / DR written right after an amount, e.g. "50,000.00 CR" or "50,000.00Dr"
	markerPattern = regexp.MustCompile(`(?i)^\s*(CR|DR)\b`)
	// credit words anywhere in the entry text, bounded by non-letters
	creditWordPattern = regexp.MustCompile(`(?i)(?:^|[^a-z])(?:CR|CREDIT)(?:[^a-z]|$)`)

	whitespacePattern = regexp.MustCompile(`\s+`)
	// currency prefix left dangling once its amount is cut off
	currencySuffixPattern = regexp.MustCompile(`(?i)\s*(?:\bRs\.?|\bINR|₹)$`)
)

// twoDigitYearPivot resolves YY years: below the pivot is 20YY, otherwise 19YY.
const twoDigitYearPivot = 70

// startsWithDate reports whether a line is a boundary line.
func startsWithDate(line string) bool {
	return boundaryPattern.MatchString(strings.TrimSpace(line))
}

// parseDate converts a DD/MM/YYYY or DD/MM/YY token into a UTC date.
// Calendar-invalid dates such as 31/02/2024 are rejected.
func parseDate(token string) (time.Time, error) {
	m := dateTokenPattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return time.Time{}, fmt.Errorf("malformed date %q", token)
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year = resolveYear(year)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("invalid calendar date %q", token)
	}
	return t, nil
}

// resolveYear applies the two-digit year pivot.
func resolveYear(yy int) int {
	if yy < twoDigitYearPivot {
		return 2000 + yy
	}
	return 1900 + yy
}

// parseAmount converts a comma-grouped amount like "1,234.56" into a decimal.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if !amountTokenPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("malformed amount %q", s)
	}
	return decimal.NewFromString(s)
}

// findAmounts returns the [start, end) offsets of every amount token in s.
// Matches glued to surrounding digits (e.g. "12.345" or "12.5.00") are
// ignored; a dot after letters, as in "Rs.500.00", is a currency prefix.
func findAmounts(s string) [][]int {
	var out [][]int
	for _, loc := range amountPattern.FindAllStringIndex(s, -1) {
		if i := loc[0]; i > 0 {
			prev := s[i-1]
			if isDigit(prev) || (prev == '.' && i > 1 && isDigit(s[i-2])) {
				continue
			}
		}
		if loc[1] < len(s) && isDigit(s[loc[1]]) {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// markerAfter returns "CR" or "DR" when one directly follows position end.
func markerAfter(s string, end int) (string, int) {
	loc := markerPattern.FindStringSubmatchIndex(s[end:])
	if loc == nil {
		return "", end
	}
	return strings.ToUpper(s[end+loc[2] : end+loc[3]]), end + loc[1]
}

// cleanDescription collapses runs of whitespace, drops a trailing currency
// prefix such as "Rs." and trims the result.
func cleanDescription(s string) string {
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	return strings.TrimSpace(currencySuffixPattern.ReplaceAllString(s, ""))
}

// sanitizeOCRAmounts fixes common OCR errors in amount strings.
// Tesseract often misreads periods as semicolons or colons in numbers.
// E.g., "19,720; 15" → "19,720.15", "1,234:56" → "1,234.56".
func sanitizeOCRAmounts(line string) string {
	line = ocrSemicolonPattern.ReplaceAllString(line, "$1.$3")
	line = ocrColonPattern.ReplaceAllString(line, "$1.$2")
	line = ocrTrailingColonPattern.ReplaceAllString(line, "$1 ")
	line = ocrEndColonPattern.ReplaceAllString(line, "$1")
	return line
}

var (
	ocrSemicolonPattern     = regexp.MustCompile(`(\d);(\s*)(\d{2})\b`)
	// comma group required so times like 10:30 are left alone
	ocrColonPattern         = regexp.MustCompile(`(\d{1,3}(?:,\d{2,3})+):(\d{2})\b`)
	ocrTrailingColonPattern = regexp.MustCompile(`(\d):\s`)
	ocrEndColonPattern      = regexp.MustCompile(`(\d):$`)
)
