package parser

import (
	"fmt"
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Segment splits raw statement text into candidate transaction entries.
//
// A line starting with a DD/MM/YYYY or DD/MM/YY token opens a new entry; any
// other line is appended to the entry being built, which is how wrapped
// descriptions stay with their transaction. Lines seen before the first
// boundary line end up in the first entry, and text with no boundary line at
// all comes back as a single entry for the strategy to reject.
func Segment(text string) []models.RawEntry {
	var entries []models.RawEntry
	var buffer []string

	flush := func() {
		if len(buffer) > 0 {
			entries = append(entries, models.RawEntry{Text: strings.Join(buffer, " ")})
			buffer = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if startsWithDate(line) {
			flush()
		}
		buffer = append(buffer, line)
	}
	flush()

	return entries
}

// SegmentPages joins per-page text in page order. Pages whose first non-blank
// line is not a boundary line continue the previous page's last entry; each
// such page is reported so a suspected split transaction can be reviewed.
func SegmentPages(pages []string) (string, []models.Warning) {
	var warnings []models.Warning
	for i, page := range pages {
		if i == 0 {
			continue
		}
		first := firstLine(page)
		if first == "" || startsWithDate(first) {
			continue
		}
		if !startsWithDate(lastBoundary(pages[:i])) {
			continue
		}
		warnings = append(warnings, models.Warning{
			Kind:    models.WarningPageBreakSplit,
			Page:    i + 1,
			Message: fmt.Sprintf("page %d starts mid-entry (%q); merged into the previous entry", i+1, truncate(first, 60)),
		})
	}
	return strings.Join(pages, "\n"), warnings
}

func firstLine(page string) string {
	for _, line := range strings.Split(page, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// lastBoundary returns the last boundary line found in pages, or "".
func lastBoundary(pages []string) string {
	for i := len(pages) - 1; i >= 0; i-- {
		lines := strings.Split(pages[i], "\n")
		for j := len(lines) - 1; j >= 0; j-- {
			if line := strings.TrimSpace(lines[j]); startsWithDate(line) {
				return line
			}
		}
	}
	return ""
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
