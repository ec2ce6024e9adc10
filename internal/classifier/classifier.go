// Package classifier tags ledger entries with review categories and raises
// anomaly flags using ordered keyword and threshold rules.
package classifier

import (
	"sort"
	"strings"
	"time"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Config holds the thresholds used by the rules.
type Config struct {
	// Credits above this amount mentioning cash are Suspicious Cash Deposits.
	SuspiciousCashThreshold decimal.Decimal
	// Credits above this amount mentioning cash are flagged as anomalies.
	AnomalyCashThreshold decimal.Decimal
	// Days with more UPI transactions than this are high-frequency days.
	UPIDailyLimit int
	// ExtendedBounceKeywords adds RETURN, REJECTED, CHARGES and FAIL to the
	// EMI Bounce rule.
	ExtendedBounceKeywords bool
}

// DefaultConfig returns the standard review thresholds.
func DefaultConfig() Config {
	return Config{
		SuspiciousCashThreshold: decimal.NewFromInt(100000),
		AnomalyCashThreshold:    decimal.NewFromInt(10000),
		UPIDailyLimit:           5,
	}
}

var (
	salaryKeywords         = []string{"SALARY", "PAYROLL", "HRMS"}
	bounceKeywords         = []string{"EMI", "ACH RETURN", "BOUNCE"}
	extendedBounceKeywords = []string{"RETURN", "REJECTED", "CHARGES", "FAIL"}
	upiKeywords            = []string{"UPI"}
	cashKeywords           = []string{"CASH"}
	anomalyKeywords        = []string{"EMI", "BOUNCE", "LATE"}
)

// Classifier applies the category rules. It is safe for concurrent use.
type Classifier struct {
	cfg     Config
	salary  *keywordSet
	bounce  *keywordSet
	upi     *keywordSet
	cash    *keywordSet
	anomaly *keywordSet
}

// New builds a classifier for cfg.
func New(cfg Config) *Classifier {
	bounce := bounceKeywords
	if cfg.ExtendedBounceKeywords {
		bounce = append(append([]string{}, bounceKeywords...), extendedBounceKeywords...)
	}
	return &Classifier{
		cfg:     cfg,
		salary:  newKeywordSet(salaryKeywords),
		bounce:  newKeywordSet(bounce),
		upi:     newKeywordSet(upiKeywords),
		cash:    newKeywordSet(cashKeywords),
		anomaly: newKeywordSet(anomalyKeywords),
	}
}

// Category returns the category for one transaction. Rules run in a fixed
// order and a later match overwrites an earlier one, so a large cash credit
// is a Suspicious Cash Deposit even when it also mentions salary or UPI.
func (c *Classifier) Category(txn models.Transaction) models.Category {
	desc := strings.ToUpper(txn.Description)

	category := models.CategoryOthers
	if c.salary.matches(desc) {
		category = models.CategorySalary
	}
	if c.bounce.matches(desc) {
		category = models.CategoryEMIBounce
	}
	if c.upi.matches(desc) {
		category = models.CategoryUPI
	}
	if txn.Credit.GreaterThan(c.cfg.SuspiciousCashThreshold) && c.cash.matches(desc) {
		category = models.CategorySuspiciousCash
	}
	return category
}

// Classify sets Category on every transaction in place.
func (c *Classifier) Classify(txns []models.Transaction) {
	for i := range txns {
		txns[i].Category = c.Category(txns[i])
	}
}

// IsAnomaly reports whether a transaction deserves manual review: a cash
// credit above the anomaly threshold, or an EMI / bounce / late-payment
// mention. The flag is independent of the category.
func (c *Classifier) IsAnomaly(txn models.Transaction) bool {
	desc := strings.ToUpper(txn.Description)
	if c.cash.matches(desc) && txn.Credit.GreaterThan(c.cfg.AnomalyCashThreshold) {
		return true
	}
	return c.anomaly.matches(desc)
}

// Flagged returns the anomalous transactions in ledger order.
func (c *Classifier) Flagged(txns []models.Transaction) []models.Transaction {
	flagged := []models.Transaction{}
	for _, txn := range txns {
		if c.IsAnomaly(txn) {
			flagged = append(flagged, txn)
		}
	}
	return flagged
}

// HighFrequencyDays returns the calendar days holding more UPI transactions
// than the daily limit, earliest first. Transactions must be classified.
func (c *Classifier) HighFrequencyDays(txns []models.Transaction) []models.DayCount {
	counts := make(map[time.Time]int)
	for _, txn := range txns {
		if txn.Category != models.CategoryUPI {
			continue
		}
		y, m, d := txn.Date.Date()
		counts[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)]++
	}

	days := []models.DayCount{}
	for day, n := range counts {
		if n > c.cfg.UPIDailyLimit {
			days = append(days, models.DayCount{Date: day, Count: n})
		}
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// keywordSet matches any of a fixed set of upper-case keywords in one pass.
type keywordSet struct {
	matcher *ahocorasick.Matcher
}

func newKeywordSet(words []string) *keywordSet {
	return &keywordSet{matcher: ahocorasick.NewStringMatcher(words)}
}

// matches expects upper-cased input.
func (k *keywordSet) matches(upper string) bool {
	return len(k.matcher.MatchThreadSafe([]byte(upper))) > 0
}
