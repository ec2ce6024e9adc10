package parser

import (
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// OCRParser handles text recognised from scanned statements.
//
// Scans usually print two-digit years (DD/MM/YY) and Tesseract tends to read
// decimal points as ';' or ':', so amounts are repaired before the entry is
// read with the same date + trailing-amounts layout as FallbackParser.
type OCRParser struct{}

func (p *OCRParser) Name() string {
	return "ocr"
}

func (p *OCRParser) Extract(entry models.RawEntry) (models.Transaction, bool) {
	return extractTail(sanitizeOCRAmounts(entry.Text), datePatternSlash)
}
