package api

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
	"github.com/insightdelivered/statement-analyzer/internal/writer"
)

// PageBreak separates pages in the extractedText form field.
const PageBreak = "\n---PAGE_BREAK---\n"

var allowedExtensions = map[string]bool{".pdf": true, ".png": true, ".jpg": true, ".jpeg": true}

// AnalyzeResponse is the JSON response from the /api/analyze endpoint.
type AnalyzeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	*analysis.Report
	CSV     string `json:"csv,omitempty"`
	Version string `json:"version,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Analyzer *analysis.Analyzer
	Metrics  *Metrics
	Log      zerolog.Logger
	Version  string
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// HandleAnalyze parses an uploaded statement, or text the client already
// extracted, and returns the ledger with its classification and summaries.
//
// Form fields: file, extractedText, password, bank, source (pdf|ocr) and
// category (include a Category column in the CSV).
func (h *Handler) HandleAnalyze(c *fiber.Ctx) error {
	start := time.Now()
	log := h.Log.With().Str("request_id", uuid.NewString()).Logger()
	ctx := logger.WithContext(c.UserContext(), log)

	opts, err := analyzeOptions(c)
	if err != nil {
		return h.fail(c, log, fiber.StatusBadRequest, outcomeBadRequest, err.Error(), nil)
	}
	includeCategory := c.FormValue("category") == "true"

	var report *analysis.Report
	if text := c.FormValue("extractedText"); strings.TrimSpace(text) != "" {
		report, err = h.Analyzer.Analyze(ctx, strings.Split(text, PageBreak), opts)
	} else {
		fh, ferr := c.FormFile("file")
		if ferr != nil {
			return h.fail(c, log, fiber.StatusBadRequest, outcomeBadRequest, "No file uploaded. Use form field 'file' or 'extractedText'.", nil)
		}
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedExtensions[ext] {
			return h.fail(c, log, fiber.StatusBadRequest, outcomeBadRequest, "Only PDF, PNG and JPEG files are supported.", nil)
		}

		tmp, terr := os.CreateTemp("", "statement-*"+ext)
		if terr != nil {
			return h.fail(c, log, fiber.StatusInternalServerError, outcomeInternal, "Failed to create temp file.", nil)
		}
		tmp.Close()
		defer os.Remove(tmp.Name())

		if err := c.SaveFile(fh, tmp.Name()); err != nil {
			return h.fail(c, log, fiber.StatusInternalServerError, outcomeInternal, "Failed to save uploaded file.", nil)
		}
		report, err = h.Analyzer.AnalyzeFile(ctx, tmp.Name(), opts)
	}
	h.Metrics.duration.Observe(time.Since(start).Seconds())

	var extErr *analysis.ExtractionError
	switch {
	case errors.Is(err, extractor.ErrDecryption):
		return h.fail(c, log, fiber.StatusUnauthorized, outcomeDecryptionFailed, "The PDF is password protected. Provide the correct password.", nil)
	case errors.As(err, &extErr):
		return h.fail(c, log, fiber.StatusUnprocessableEntity, outcomeExtractionFailed, fmt.Sprintf("Text extraction failed: %v", extErr.Err), nil)
	case errors.Is(err, analysis.ErrEmptyResult):
		h.record(report)
		return h.fail(c, log, fiber.StatusUnprocessableEntity, outcomeEmpty, "Could not parse any transactions. Try selecting the bank or OCR explicitly.", report)
	case err != nil:
		log.Error().Err(err).Msg("analysis failed")
		return h.fail(c, log, fiber.StatusInternalServerError, outcomeInternal, err.Error(), nil)
	}
	h.record(report)

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeCategory: includeCategory}
	if err := csvWriter.Write(&csvBuf, report.Batch.Transactions); err != nil {
		return h.fail(c, log, fiber.StatusInternalServerError, outcomeInternal, fmt.Sprintf("CSV generation failed: %v", err), nil)
	}

	h.Metrics.documents.WithLabelValues(outcomeOK).Inc()
	return c.JSON(AnalyzeResponse{
		Success: true,
		Report:  report,
		CSV:     csvBuf.String(),
		Version: h.Version,
	})
}

// analyzeOptions reads the optional bank, source and password fields.
func analyzeOptions(c *fiber.Ctx) (analysis.Options, error) {
	opts := analysis.Options{Password: c.FormValue("password")}

	if name := c.FormValue("bank"); name != "" {
		bank, err := parser.ParseBankType(name)
		if err != nil {
			return opts, fmt.Errorf("unknown bank %q: use icici, hdfc, sbi or unknown", name)
		}
		opts.Bank = bank
	}

	switch source := parser.Source(strings.ToLower(c.FormValue("source"))); source {
	case "", parser.SourcePDF, parser.SourceOCR:
		opts.Source = source
	default:
		return opts, fmt.Errorf("unknown source %q: use pdf or ocr", source)
	}
	return opts, nil
}

func (h *Handler) record(report *analysis.Report) {
	if report == nil {
		return
	}
	b := report.Batch
	h.Metrics.transactions.WithLabelValues(string(b.Bank), b.Strategy).Add(float64(len(b.Transactions)))
	h.Metrics.dropped.Add(float64(b.Dropped))
}

// fail logs through the request logger so the line carries request_id.
func (h *Handler) fail(c *fiber.Ctx, log zerolog.Logger, status int, outcome, msg string, report *analysis.Report) error {
	h.Metrics.documents.WithLabelValues(outcome).Inc()
	log.Warn().Int("status", status).Str("outcome", outcome).Msg(msg)
	if report != nil && report.Batch.Transactions == nil {
		report.Batch.Transactions = []models.Transaction{}
	}
	return c.Status(status).JSON(AnalyzeResponse{
		Success: false,
		Error:   msg,
		Report:  report,
		Version: h.Version,
	})
}
