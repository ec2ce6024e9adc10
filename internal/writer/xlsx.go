package writer

import (
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Sheet names of the report workbook.
const (
	SheetLedger     = "Ledger"
	SheetMonthly    = "Monthly"
	SheetCategories = "Categories"
	SheetFlagged    = "Flagged"
	SheetSummary    = "Summary"
)

// builtin number format "#,##0.00"
const amountNumFmt = 4

// XLSXWriter writes an analysis report as a workbook with one sheet per
// view: the ledger, monthly totals, category totals, flagged transactions
// and a summary of the scalar metrics.
type XLSXWriter struct{}

// WriteToFile writes the report workbook to path.
func (w *XLSXWriter) WriteToFile(path string, report *analysis.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, report); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the report workbook to out.
func (w *XLSXWriter) Write(out io.Writer, report *analysis.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	b, err := newBook(f)
	if err != nil {
		return err
	}

	if err := b.sheet(SheetLedger, []any{"Date", "Description", "Credit", "Debit", "Balance", "Category"}, ledgerRows(report.Batch.Transactions)); err != nil {
		return err
	}
	if err := b.sheet(SheetMonthly, []any{"Month", "Credit", "Debit", "Average Balance", "Transactions"}, monthlyRows(report.Monthly)); err != nil {
		return err
	}
	if err := b.sheet(SheetCategories, []any{"Category", "Transactions", "Credit", "Debit"}, categoryRows(report.Categories)); err != nil {
		return err
	}
	if err := b.sheet(SheetFlagged, []any{"Date", "Description", "Credit", "Debit", "Balance", "Category"}, ledgerRows(report.Flagged)); err != nil {
		return err
	}
	if err := b.sheet(SheetSummary, []any{"Metric", "Value"}, summaryRows(report)); err != nil {
		return err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetLedger); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type book struct {
	f           *excelize.File
	headerStyle int
	amountStyle int
}

func newBook(f *excelize.File) (*book, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}
	return &book{f: f, headerStyle: header, amountStyle: amount}, nil
}

// sheet creates name with a styled header row followed by rows. Float cells
// get the amount number format.
func (b *book) sheet(name string, header []any, rows [][]any) error {
	if _, err := b.f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if err := b.f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := b.f.SetCellStyle(name, "A1", last, b.headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", name, err)
	}

	for i, row := range rows {
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := b.f.SetSheetRow(name, start, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", name, i+1, err)
		}
		for j, v := range row {
			if _, ok := v.(float64); !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := b.f.SetCellStyle(name, cell, cell, b.amountStyle); err != nil {
				return fmt.Errorf("failed to style %s!%s: %w", name, cell, err)
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return b.f.SetColWidth(name, "A", lastCol, 16)
}

func ledgerRows(txns []models.Transaction) [][]any {
	rows := make([][]any, 0, len(txns))
	for _, txn := range txns {
		var balance any = ""
		if txn.HasBalance {
			balance = txn.Balance.InexactFloat64()
		}
		rows = append(rows, []any{
			txn.Date.Format(dateLayout),
			txn.Description,
			txn.Credit.InexactFloat64(),
			txn.Debit.InexactFloat64(),
			balance,
			string(txn.Category),
		})
	}
	return rows
}

func monthlyRows(months []models.MonthlySummary) [][]any {
	rows := make([][]any, 0, len(months))
	for _, m := range months {
		rows = append(rows, []any{
			m.Period(),
			m.Credit.InexactFloat64(),
			m.Debit.InexactFloat64(),
			m.AverageBalance.Round(2).InexactFloat64(),
			m.Count,
		})
	}
	return rows
}

func categoryRows(cats []models.CategorySummary) [][]any {
	rows := make([][]any, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []any{string(c.Category), c.Count, c.Credit.InexactFloat64(), c.Debit.InexactFloat64()})
	}
	return rows
}

func summaryRows(report *analysis.Report) [][]any {
	m := report.Metrics
	rows := [][]any{
		{"Bank", string(report.Batch.Bank)},
		{"Strategy", report.Batch.Strategy},
		{"Transactions", m.TransactionCount},
		{"Dropped entries", report.Batch.Dropped},
		{"Total deposits", m.TotalDeposits.InexactFloat64()},
		{"Total withdrawals", m.TotalWithdrawals.InexactFloat64()},
		{"Average balance", m.AverageBalance.Round(2).InexactFloat64()},
		{"Flagged transactions", m.FlaggedCount},
		{"High-frequency UPI days", m.HighFrequencyDayCount},
	}
	for _, day := range report.HighFrequencyDays {
		rows = append(rows, []any{"UPI transactions on " + day.Date.Format(dateLayout), day.Count})
	}
	for _, w := range report.Batch.Warnings {
		rows = append(rows, []any{fmt.Sprintf("Warning (page %d)", w.Page), w.Message})
	}
	return rows
}
