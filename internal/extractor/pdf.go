package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the text of each page of a PDF, one string per
// physical page. The embedded text layer is read first; if that fails or
// yields unreadable text, poppler's pdftotext is tried. An empty password
// opens only unencrypted PDFs and PDFs with an owner password alone.
func ExtractText(ctx context.Context, path, password string) ([]string, error) {
	pages, libErr := readTextLayer(path, password)
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	popplerPages, popplerErr := runPdftotext(ctx, path, password)
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}

	switch {
	case errors.Is(libErr, ErrDecryption):
		return nil, libErr
	case libErr != nil:
		return nil, fmt.Errorf("%w: %v", ErrNoText, libErr)
	default:
		return nil, fmt.Errorf("%w: the PDF may be image-based, try OCR", ErrNoText)
	}
}

// readTextLayer opens the PDF with ledongthuc/pdf and tries its extraction
// methods from best to worst layout preservation.
func readTextLayer(path, password string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader crashed: %v", r)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var pw func() string
	if password != "" {
		pw = passwordOnce(password)
	}
	r, err := pdf.NewReaderEncrypted(f, info.Size(), pw)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, ErrDecryption
		}
		return nil, err
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, errors.New("pdf has no pages")
	}

	pages = pagesByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	pages = pagesByPosition(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	if text := plainText(r); isReadableText([]string{text}) {
		return []string{text}, nil
	}
	return pages, nil
}

// passwordOnce offers the password a single time; the reader keeps asking
// until it gets "".
func passwordOnce(password string) func() string {
	offered := false
	return func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	}
}

// pagesByRow uses the library's row grouping.
func pagesByRow(r *pdf.Reader, numPages int) []string {
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			pages = append(pages, "")
			continue
		}
		var lines []string
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// columnGap is the horizontal distance, in points, treated as a column break.
const columnGap = 15

// pagesByPosition rebuilds rows from raw glyph positions: pieces sharing a
// rounded Y are one row, ordered top to bottom then left to right.
func pagesByPosition(r *pdf.Reader, numPages int) []string {
	type piece struct {
		x float64
		s string
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		rows := make(map[int][]piece)
		for _, t := range page.Content().Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], piece{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		// PDF user space grows upwards.
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			pieces := rows[y]
			sort.Slice(pieces, func(a, b int) bool { return pieces[a].x < pieces[b].x })

			var sb strings.Builder
			for j, p := range pieces {
				if j > 0 && p.x-pieces[j-1].x > columnGap {
					sb.WriteString("  ")
				}
				sb.WriteString(p.s)
			}
			if line := strings.TrimSpace(sb.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// plainText extracts the whole document as one block.
func plainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// runPdftotext extracts page by page with poppler so page boundaries survive.
func runPdftotext(ctx context.Context, path, password string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("%w: pdftotext", ErrToolMissing)
	}

	numPages := pdfPageCount(ctx, path, password)
	if numPages == 0 {
		out, err := exec.CommandContext(ctx, "pdftotext", popplerArgs(password, "-layout", path, "-")...).Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext: %w", err)
		}
		return []string{strings.TrimSpace(string(out))}, nil
	}

	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		n := strconv.Itoa(i)
		out, err := exec.CommandContext(ctx, "pdftotext", popplerArgs(password, "-layout", "-f", n, "-l", n, path, "-")...).Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(string(out)))
	}
	return pages, nil
}

// pdfPageCount reads the page count from pdfinfo, or returns 0.
func pdfPageCount(ctx context.Context, path, password string) int {
	out, err := exec.CommandContext(ctx, "pdfinfo", popplerArgs(password, path)...).Output()
	if err != nil {
		return 0
	}
	return parsePageCount(string(out))
}

func parsePageCount(info string) int {
	for _, line := range strings.Split(info, "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// popplerArgs prepends the user password flag shared by the poppler tools.
func popplerArgs(password string, args ...string) []string {
	if password == "" {
		return args
	}
	return append([]string{"-upw", password}, args...)
}

// statementWords appear in virtually every bank statement. Text containing
// none of them is most likely mis-decoded glyphs.
var statementWords = []string{
	"bank", "account", "balance", "date", "statement", "narration",
	"total", "amount", "credit", "debit", "transaction", "withdrawal",
	"deposit", "cheque", "opening", "closing", "transfer", "ifsc",
	"upi", "neft", "page", "period",
}

// isReadableText accepts pages holding more than 50 characters, of which
// over 60% are plain ASCII or common punctuation, and at least one
// statement word.
func isReadableText(pages []string) bool {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	if n <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range statementWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// textQuality returns the share of runes that are ASCII letters, digits,
// whitespace or common statement punctuation. unicode.IsLetter is avoided on
// purpose: identity-encoded fonts decode to accented garbage.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
				unicode.IsSpace(r) || strings.ContainsRune(".,-/:;()'\"₹$%&@#!?+=*", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
