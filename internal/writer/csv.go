package writer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

const dateLayout = "02/01/2006"

// CSVWriter writes a ledger as CSV with the columns
// Date, Description, Credit, Debit, Balance and, optionally, Category.
// Dates are DD/MM/YYYY and amounts carry two decimals without grouping;
// an unknown balance is left empty.
type CSVWriter struct {
	IncludeCategory bool
}

// WriteToFile writes transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, txns []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, txns); err != nil {
		return err
	}
	return f.Close()
}

// Write writes transactions in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	var rows any
	if w.IncludeCategory {
		categorized := make([]categorizedRow, 0, len(txns))
		for _, txn := range txns {
			categorized = append(categorized, categorizedRow{
				Date:        csvDate(txn.Date),
				Description: txn.Description,
				Credit:      csvAmount(txn.Credit),
				Debit:       csvAmount(txn.Debit),
				Balance:     csvBalance{Amount: txn.Balance, Known: txn.HasBalance},
				Category:    txn.Category,
			})
		}
		rows = &categorized
	} else {
		plain := make([]ledgerRow, 0, len(txns))
		for _, txn := range txns {
			plain = append(plain, ledgerRow{
				Date:        csvDate(txn.Date),
				Description: txn.Description,
				Credit:      csvAmount(txn.Credit),
				Debit:       csvAmount(txn.Debit),
				Balance:     csvBalance{Amount: txn.Balance, Known: txn.HasBalance},
			})
		}
		rows = &plain
	}

	if err := gocsv.Marshal(rows, out); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// ReadCSV parses a ledger previously written by CSVWriter. Grouped amounts
// such as 1,234.56 are accepted. A missing Category column reads as Others.
func ReadCSV(in io.Reader) ([]models.Transaction, error) {
	var rows []categorizedRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	txns := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		category := row.Category
		if category == "" {
			category = models.CategoryOthers
		}
		txns = append(txns, models.Transaction{
			Date:        time.Time(row.Date),
			Description: row.Description,
			Credit:      decimal.Decimal(row.Credit),
			Debit:       decimal.Decimal(row.Debit),
			Balance:     row.Balance.Amount,
			HasBalance:  row.Balance.Known,
			Category:    category,
		})
	}
	return txns, nil
}

type ledgerRow struct {
	Date        csvDate    `csv:"Date"`
	Description string     `csv:"Description"`
	Credit      csvAmount  `csv:"Credit"`
	Debit       csvAmount  `csv:"Debit"`
	Balance     csvBalance `csv:"Balance"`
}

type categorizedRow struct {
	Date        csvDate         `csv:"Date"`
	Description string          `csv:"Description"`
	Credit      csvAmount       `csv:"Credit"`
	Debit       csvAmount       `csv:"Debit"`
	Balance     csvBalance      `csv:"Balance"`
	Category    models.Category `csv:"Category"`
}

type csvDate time.Time

func (d csvDate) MarshalCSV() (string, error) {
	return time.Time(d).Format(dateLayout), nil
}

func (d *csvDate) UnmarshalCSV(s string) error {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = csvDate(t)
	return nil
}

type csvAmount decimal.Decimal

func (a csvAmount) MarshalCSV() (string, error) {
	return formatAmount(decimal.Decimal(a)), nil
}

func (a *csvAmount) UnmarshalCSV(s string) error {
	d, err := parseAmount(s)
	if err != nil {
		return err
	}
	*a = csvAmount(d)
	return nil
}

type csvBalance struct {
	Amount decimal.Decimal
	Known  bool
}

func (b csvBalance) MarshalCSV() (string, error) {
	if !b.Known {
		return "", nil
	}
	return formatAmount(b.Amount), nil
}

func (b *csvBalance) UnmarshalCSV(s string) error {
	if strings.TrimSpace(s) == "" {
		*b = csvBalance{Amount: decimal.Zero}
		return nil
	}
	d, err := parseAmount(s)
	if err != nil {
		return err
	}
	*b = csvBalance{Amount: d, Known: true}
	return nil
}

func formatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// parseAmount reads an amount cell; empty cells are zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
