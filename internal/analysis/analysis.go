// Package analysis runs the statement pipeline: text extraction, bank
// detection, strategy selection, entry parsing, classification and
// aggregation.
package analysis

import (
	"context"
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/aggregator"
	"github.com/insightdelivered/statement-analyzer/internal/classifier"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
)

// Report is everything derived from one statement.
type Report struct {
	Batch             *models.LedgerBatch      `json:"batch"`
	Monthly           []models.MonthlySummary  `json:"monthly"`
	Categories        []models.CategorySummary `json:"categories"`
	Flagged           []models.Transaction     `json:"flagged"`
	HighFrequencyDays []models.DayCount        `json:"highFrequencyDays"`
	Metrics           models.Metrics           `json:"metrics"`
}

// Options override what the pipeline would otherwise decide itself.
// Nothing is retried automatically; a caller unhappy with the result runs
// again with a different Bank or Source.
type Options struct {
	Bank     models.BankType // empty: detect from text
	Source   parser.Source   // empty: OCR for images, PDF text layer otherwise
	Password string
}

// TextExtractor returns per-page text from a PDF's text layer.
type TextExtractor func(ctx context.Context, path, password string) ([]string, error)

// PageReader returns per-page text recognized from a scan.
type PageReader interface {
	Pages(ctx context.Context, path, password string) ([]string, error)
}

// Analyzer runs the pipeline. It is safe for concurrent use.
type Analyzer struct {
	Classifier  *classifier.Classifier
	ExtractText TextExtractor
	OCR         PageReader
}

// New builds an analyzer backed by the PDF text layer and tesseract.
func New(cls classifier.Config, ocr extractor.OCRConfig) *Analyzer {
	return &Analyzer{
		Classifier:  classifier.New(cls),
		ExtractText: extractor.ExtractText,
		OCR:         extractor.NewOCR(ocr),
	}
}

// AnalyzeFile extracts the text of the document at path and analyzes it.
// Extraction failures come back as *ExtractionError.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, opts Options) (*Report, error) {
	log := logger.FromContext(ctx)

	source := opts.Source
	if source == "" {
		source = parser.SourcePDF
		if extractor.IsImage(path) {
			source = parser.SourceOCR
		}
	}

	var pages []string
	var err error
	if source == parser.SourceOCR {
		pages, err = a.OCR.Pages(ctx, path, opts.Password)
	} else {
		pages, err = a.ExtractText(ctx, path, opts.Password)
	}
	if err != nil {
		log.Error().Err(err).Str("path", path).Str("source", string(source)).Msg("text extraction failed")
		return nil, &ExtractionError{Path: path, Err: err}
	}
	log.Debug().Str("path", path).Str("source", string(source)).Int("pages", len(pages)).Msg("text extracted")

	opts.Source = source
	return a.Analyze(ctx, pages, opts)
}

// Analyze runs the pipeline over already extracted page text. When no
// transaction parses, the report is returned together with ErrEmptyResult.
func (a *Analyzer) Analyze(ctx context.Context, pages []string, opts Options) (*Report, error) {
	log := logger.FromContext(ctx)

	bank := opts.Bank
	if bank == "" {
		bank = parser.Detect(strings.Join(pages, "\n"))
	}
	source := opts.Source
	if source == "" {
		source = parser.SourcePDF
	}

	strategy := parser.New(bank, source)
	batch := parser.Parse(strategy, bank, pages)
	a.Classifier.Classify(batch.Transactions)

	for _, w := range batch.Warnings {
		log.Warn().Str("kind", w.Kind).Int("page", w.Page).Msg(w.Message)
	}
	log.Info().
		Str("batch", batch.ID.String()).
		Str("bank", string(bank)).
		Str("strategy", batch.Strategy).
		Int("transactions", len(batch.Transactions)).
		Int("dropped", batch.Dropped).
		Msg("statement parsed")

	report := a.report(batch)
	if len(batch.Transactions) == 0 {
		return report, ErrEmptyResult
	}
	return report, nil
}

func (a *Analyzer) report(batch *models.LedgerBatch) *Report {
	txns := batch.Transactions
	flagged := a.Classifier.Flagged(txns)
	days := a.Classifier.HighFrequencyDays(txns)
	return &Report{
		Batch:             batch,
		Monthly:           aggregator.Monthly(txns),
		Categories:        aggregator.ByCategory(txns),
		Flagged:           flagged,
		HighFrequencyDays: days,
		Metrics:           aggregator.Summarize(txns, flagged, days),
	}
}
