package extractor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// OCRConfig controls page rasterization and recognition.
type OCRConfig struct {
	Language      string  // tesseract language pack, e.g. "eng"
	MinConfidence float64 // words below this confidence (0-100) are discarded
	DPI           int
	Workers       int // pages recognized concurrently
}

// DefaultOCRConfig returns settings tuned for scanned statements.
func DefaultOCRConfig() OCRConfig {
	return OCRConfig{Language: "eng", MinConfidence: 70, DPI: 300, Workers: 4}
}

// Rasterizer renders every page of a PDF into an image file under dir and
// returns the image paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, path, password, dir string) ([]string, error)
}

// Recognizer returns the text of one page image, one text line per line.
type Recognizer interface {
	Recognize(ctx context.Context, image string) (string, error)
}

// OCR turns a scanned PDF or a statement image into per-page text.
type OCR struct {
	Rasterizer Rasterizer
	Recognizer Recognizer
	Workers    int
}

// NewOCR wires poppler and tesseract with cfg.
func NewOCR(cfg OCRConfig) *OCR {
	return &OCR{
		Rasterizer: &Poppler{DPI: cfg.DPI},
		Recognizer: &Tesseract{Language: cfg.Language, MinConfidence: cfg.MinConfidence},
		Workers:    cfg.Workers,
	}
}

// IsOCRAvailable reports whether pdftoppm and tesseract are both installed.
func IsOCRAvailable() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// IsImage reports whether path names a supported statement image.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// Pages recognizes every page of path. Images are recognized directly; PDFs
// are rasterized first. Pages are recognized concurrently and returned in
// page order; the first failing page aborts the rest.
func (o *OCR) Pages(ctx context.Context, path, password string) ([]string, error) {
	images := []string{path}
	if !IsImage(path) {
		dir, err := os.MkdirTemp("", "statement-ocr-*")
		if err != nil {
			return nil, fmt.Errorf("create temp dir: %w", err)
		}
		defer os.RemoveAll(dir)

		images, err = o.Rasterizer.Rasterize(ctx, path, password, dir)
		if err != nil {
			return nil, err
		}
		if len(images) == 0 {
			return nil, fmt.Errorf("%w: rasterizer produced no page images", ErrNoText)
		}
	}

	pages := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.Workers, 1))
	for i, image := range images {
		g.Go(func() error {
			text, err := o.Recognizer.Recognize(gctx, image)
			if err != nil {
				return fmt.Errorf("recognize page %d: %w", i+1, err)
			}
			pages[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, page := range pages {
		if strings.TrimSpace(page) != "" {
			return pages, nil
		}
	}
	return nil, fmt.Errorf("%w: OCR recognized no text in %d page image(s)", ErrNoText, len(images))
}

// Poppler rasterizes PDFs with pdftoppm.
type Poppler struct {
	DPI int
}

// Rasterize implements Rasterizer.
func (p *Poppler) Rasterize(ctx context.Context, path, password, dir string) ([]string, error) {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return nil, fmt.Errorf("%w: pdftoppm (poppler-utils)", ErrToolMissing)
	}

	dpi := p.DPI
	if dpi <= 0 {
		dpi = 300
	}
	args := popplerArgs(password, "-r", strconv.Itoa(dpi), "-png", path, filepath.Join(dir, "page"))
	if out, err := exec.CommandContext(ctx, "pdftoppm", args...).CombinedOutput(); err != nil {
		if strings.Contains(strings.ToLower(string(out)), "incorrect password") {
			return nil, ErrDecryption
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(string(out)))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read page images: %w", err)
	}
	var images []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			images = append(images, filepath.Join(dir, e.Name()))
		}
	}
	// pdftoppm zero-pads page numbers to a common width.
	sort.Strings(images)
	return images, nil
}

// Tesseract recognizes page images with the tesseract CLI in TSV mode so
// low-confidence words can be filtered out.
type Tesseract struct {
	Language      string
	MinConfidence float64
}

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(ctx context.Context, image string) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("%w: tesseract (tesseract-ocr)", ErrToolMissing)
	}

	lang := t.Language
	if lang == "" {
		lang = "eng"
	}
	// psm 4: a single column of text of variable sizes.
	cmd := exec.CommandContext(ctx, "tesseract", image, "stdout", "-l", lang, "--psm", "4", "tsv")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return linesFromTSV(out, t.MinConfidence), nil
}

type tsvLine struct {
	page, block, par, line int
}

// linesFromTSV rebuilds text lines from tesseract TSV output, keeping only
// word rows at or above minConf. Columns: level page_num block_num par_num
// line_num word_num left top width height conf text.
func linesFromTSV(tsv []byte, minConf float64) string {
	var order []tsvLine
	words := make(map[tsvLine][]string)

	scanner := bufio.NewScanner(bytes.NewReader(tsv))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 12 || fields[0] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(fields[10], 64)
		if err != nil || conf < minConf {
			continue
		}
		text := strings.TrimSpace(fields[11])
		if text == "" {
			continue
		}

		var key tsvLine
		key.page, _ = strconv.Atoi(fields[1])
		key.block, _ = strconv.Atoi(fields[2])
		key.par, _ = strconv.Atoi(fields[3])
		key.line, _ = strconv.Atoi(fields[4])
		if _, seen := words[key]; !seen {
			order = append(order, key)
		}
		words[key] = append(words[key], text)
	}

	lines := make([]string, 0, len(order))
	for _, key := range order {
		lines = append(lines, strings.Join(words[key], " "))
	}
	return strings.Join(lines, "\n")
}
