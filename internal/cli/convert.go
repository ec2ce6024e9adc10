package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
	"github.com/insightdelivered/statement-analyzer/internal/writer"
)

type convertOptions struct {
	bank     string
	ocr      bool
	password string
	output   string
	xlsx     string
	category bool
}

func newConvertCommand(rt *runtime) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [flags] <statement> [statement ...]",
		Short: "Convert statements to CSV",
		Long: `Convert bank statements to a CSV ledger and print a summary.

Inputs may be PDFs, scanned images (.png, .jpg, .jpeg) or text already
extracted from a statement (.txt, pages separated by form feeds).

Example:
  # Auto-detect bank and convert
  statement-analyzer convert statement.pdf

  # Password-protected PDF with an explicit bank
  statement-analyzer convert --bank hdfc --password 1234 statement.pdf

  # Scanned statement, categorized CSV and an XLSX report
  statement-analyzer convert --ocr --category --xlsx report.xlsx scan.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 && (opts.output != "" || opts.xlsx != "") {
				return errors.New("--output and --xlsx take a single input file")
			}

			aopts := analysis.Options{Password: opts.password}
			if opts.bank != "" {
				bank, err := parser.ParseBankType(opts.bank)
				if err != nil {
					return err
				}
				aopts.Bank = bank
			}
			if opts.ocr {
				aopts.Source = parser.SourceOCR
			}

			a := analysis.New(rt.cfg.Classifier, rt.cfg.OCR)
			failed := 0
			for _, path := range args {
				if err := convertFile(cmd, a, path, aopts, opts); err != nil {
					rt.log.Error().Err(err).Str("path", path).Msg("conversion failed")
					fmt.Fprintf(cmd.ErrOrStderr(), "Error processing %s: %v\n", path, err)
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed", failed, len(args))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.bank, "bank", "", "bank layout: icici, hdfc, sbi, unknown (auto-detected if omitted)")
	f.BoolVar(&opts.ocr, "ocr", false, "read the statement with OCR instead of the PDF text layer")
	f.StringVar(&opts.password, "password", "", "password of an encrypted PDF")
	f.StringVarP(&opts.output, "output", "o", "", "output CSV path, - for stdout (default: input name with .csv)")
	f.StringVar(&opts.xlsx, "xlsx", "", "also write an XLSX report to this path")
	f.BoolVar(&opts.category, "category", false, "add a Category column to the CSV")
	return cmd
}

func convertFile(cmd *cobra.Command, a *analysis.Analyzer, path string, aopts analysis.Options, opts *convertOptions) error {
	out := cmd.OutOrStdout()
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("input file not found: %s", path)
	}

	// Summary lines go to stderr when the CSV itself goes to stdout.
	info := out
	if opts.output == "-" {
		info = cmd.ErrOrStderr()
	}
	fmt.Fprintf(info, "Processing: %s\n", path)

	var report *analysis.Report
	var err error
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		report, err = a.Analyze(cmd.Context(), strings.Split(string(data), "\f"), aopts)
	} else {
		report, err = a.AnalyzeFile(cmd.Context(), path, aopts)
	}
	if errors.Is(err, analysis.ErrEmptyResult) {
		fmt.Fprintf(info, "  Bank: %s, strategy: %s\n", report.Batch.Bank, report.Batch.Strategy)
		fmt.Fprintln(info, "  Warning: No transactions found. The statement layout may not match the expected patterns.")
		fmt.Fprintln(info, "  Try specifying the bank with --bank, or --ocr for scanned statements.")
		return err
	}
	if err != nil {
		return err
	}

	batch := report.Batch
	fmt.Fprintf(info, "  Bank: %s, strategy: %s\n", batch.Bank, batch.Strategy)
	fmt.Fprintf(info, "  Found %d transaction(s), %d entry block(s) dropped\n", len(batch.Transactions), batch.Dropped)
	for _, w := range batch.Warnings {
		fmt.Fprintf(info, "  Warning: %s\n", w.Message)
	}

	csvPath := opts.output
	if csvPath == "" {
		csvPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
	}
	csvWriter := &writer.CSVWriter{IncludeCategory: opts.category}
	if csvPath == "-" {
		err = csvWriter.Write(out, batch.Transactions)
	} else {
		err = csvWriter.WriteToFile(csvPath, batch.Transactions)
	}
	if err != nil {
		return fmt.Errorf("CSV write failed: %w", err)
	}
	if csvPath != "-" {
		fmt.Fprintf(info, "  Output: %s\n", csvPath)
	}

	if opts.xlsx != "" {
		if err := (&writer.XLSXWriter{}).WriteToFile(opts.xlsx, report); err != nil {
			return fmt.Errorf("XLSX write failed: %w", err)
		}
		fmt.Fprintf(info, "  Report: %s\n", opts.xlsx)
	}

	printSummary(info, report)
	fmt.Fprintln(info, "  Done.")
	return nil
}

func printSummary(w io.Writer, report *analysis.Report) {
	m := report.Metrics
	fmt.Fprintf(w, "  Deposits: %s, withdrawals: %s, average balance: %s\n",
		m.TotalDeposits.StringFixed(2), m.TotalWithdrawals.StringFixed(2), m.AverageBalance.StringFixed(2))
	for _, month := range report.Monthly {
		fmt.Fprintf(w, "    %s  credit %14s  debit %14s  avg balance %14s\n",
			month.Period(), month.Credit.StringFixed(2), month.Debit.StringFixed(2), month.AverageBalance.StringFixed(2))
	}
	for _, c := range report.Categories {
		fmt.Fprintf(w, "    %-24s %4d\n", c.Category, c.Count)
	}
	if m.FlaggedCount > 0 {
		fmt.Fprintf(w, "  Flagged for review: %d transaction(s)\n", m.FlaggedCount)
	}
	for _, day := range report.HighFrequencyDays {
		fmt.Fprintf(w, "  High UPI activity: %d transaction(s) on %s\n", day.Count, day.Date.Format("02/01/2006"))
	}
}
