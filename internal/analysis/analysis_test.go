package analysis

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-analyzer/internal/classifier"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
)

const iciciPage = `ICICI BANK LTD
Statement of Transactions
01/04/2024 SALARY CREDIT HRMS 50,000.00 CR 75,000.00
02/04/2024 UPI/SWIGGY/123 450.00 74,550.00
05/04/2024 BY CASH DEPOSIT 1,50,000.00 CR 2,24,550.00`

type stubPages struct {
	pages []string
	err   error
	calls int
}

func (s *stubPages) Pages(ctx context.Context, path, password string) ([]string, error) {
	s.calls++
	return s.pages, s.err
}

func (s *stubPages) extract(ctx context.Context, path, password string) ([]string, error) {
	return s.Pages(ctx, path, password)
}

func newTestAnalyzer(text, ocr *stubPages) *Analyzer {
	return &Analyzer{
		Classifier:  classifier.New(classifier.DefaultConfig()),
		ExtractText: text.extract,
		OCR:         ocr,
	}
}

func TestAnalyze_ICICIStatement(t *testing.T) {
	a := newTestAnalyzer(&stubPages{}, &stubPages{})

	report, err := a.Analyze(context.Background(), []string{iciciPage}, Options{})
	require.NoError(t, err)

	batch := report.Batch
	assert.Equal(t, models.BankICICI, batch.Bank)
	assert.Equal(t, "direct", batch.Strategy)
	assert.Equal(t, 1, batch.Dropped)
	require.Len(t, batch.Transactions, 3)

	assert.Equal(t, models.CategorySalary, batch.Transactions[0].Category)
	assert.Equal(t, "50000.00", batch.Transactions[0].Credit.StringFixed(2))
	assert.Equal(t, models.CategoryUPI, batch.Transactions[1].Category)
	assert.Equal(t, "450.00", batch.Transactions[1].Debit.StringFixed(2))
	assert.Equal(t, models.CategorySuspiciousCash, batch.Transactions[2].Category)
	assert.Equal(t, "224550.00", batch.Transactions[2].Balance.StringFixed(2))

	require.Len(t, report.Flagged, 1)
	assert.Equal(t, 5, report.Flagged[0].Date.Day())
	assert.Empty(t, report.HighFrequencyDays)

	require.Len(t, report.Monthly, 1)
	assert.Equal(t, "200000.00", report.Monthly[0].Credit.StringFixed(2))
	assert.Equal(t, "450.00", report.Monthly[0].Debit.StringFixed(2))

	require.Len(t, report.Categories, 3)
	assert.Equal(t, models.CategorySalary, report.Categories[0].Category)

	assert.Equal(t, 3, report.Metrics.TransactionCount)
	assert.Equal(t, 1, report.Metrics.FlaggedCount)
	assert.Equal(t, "200000.00", report.Metrics.TotalDeposits.StringFixed(2))
}

func TestAnalyze_UnknownTextWithoutDates(t *testing.T) {
	a := newTestAnalyzer(&stubPages{}, &stubPages{})

	report, err := a.Analyze(context.Background(), []string{"Dear customer,\nthank you for banking with us."}, Options{})

	assert.ErrorIs(t, err, ErrEmptyResult)
	require.NotNil(t, report)
	assert.Equal(t, models.BankUnknown, report.Batch.Bank)
	assert.Equal(t, "fallback", report.Batch.Strategy)
	assert.NotNil(t, report.Batch.Transactions)
	assert.Empty(t, report.Batch.Transactions)
	assert.Empty(t, report.Monthly)
}

func TestAnalyze_ForcedBankAndSource(t *testing.T) {
	a := newTestAnalyzer(&stubPages{}, &stubPages{})

	report, err := a.Analyze(context.Background(), []string{"01/04/24 UPI/PAYTM 1,250;50 48,750:00"}, Options{
		Bank:   models.BankHDFC,
		Source: parser.SourceOCR,
	})
	require.NoError(t, err)

	assert.Equal(t, models.BankHDFC, report.Batch.Bank)
	assert.Equal(t, "ocr", report.Batch.Strategy)
	require.Len(t, report.Batch.Transactions, 1)
	assert.Equal(t, "1250.50", report.Batch.Transactions[0].Debit.StringFixed(2))
}

func TestAnalyze_LogsSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := logger.WithContext(context.Background(), logger.NewWithWriter(buf, "info"))
	a := newTestAnalyzer(&stubPages{}, &stubPages{})

	_, err := a.Analyze(ctx, []string{iciciPage}, Options{})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "statement parsed")
	assert.Contains(t, buf.String(), `"strategy":"direct"`)
}

func TestAnalyzeFile_PDFUsesTextLayer(t *testing.T) {
	text := &stubPages{pages: []string{iciciPage}}
	ocr := &stubPages{}
	a := newTestAnalyzer(text, ocr)

	report, err := a.AnalyzeFile(context.Background(), "statement.pdf", Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, text.calls)
	assert.Equal(t, 0, ocr.calls)
	assert.Equal(t, "direct", report.Batch.Strategy)
}

func TestAnalyzeFile_ImageUsesOCR(t *testing.T) {
	text := &stubPages{}
	ocr := &stubPages{pages: []string{"HDFC BANK\n03/04/24 ATM WDL 500.00 9,500.00"}}
	a := newTestAnalyzer(text, ocr)

	report, err := a.AnalyzeFile(context.Background(), "scan.png", Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, text.calls)
	assert.Equal(t, 1, ocr.calls)
	assert.Equal(t, models.BankHDFC, report.Batch.Bank)
	assert.Equal(t, "ocr", report.Batch.Strategy)
}

func TestAnalyzeFile_ExtractionFailure(t *testing.T) {
	a := newTestAnalyzer(&stubPages{err: extractor.ErrDecryption}, &stubPages{})

	report, err := a.AnalyzeFile(context.Background(), "locked.pdf", Options{Password: "wrong"})

	assert.Nil(t, report)
	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "locked.pdf", extErr.Path)
	assert.ErrorIs(t, err, extractor.ErrDecryption)
	assert.NotErrorIs(t, err, ErrEmptyResult)
}
