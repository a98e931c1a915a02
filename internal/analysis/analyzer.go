/*
Package analysis extracts text from an earnings PDF, ranks its most frequent
words and renders them as a bar chart.
*/
package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	DefaultMaxPages = 10
	DefaultTopWords = 12

	chartFileSuffix = "_word_freq.png"
)

type Result struct {
	ChartPath string
	Words     []WordCount
}

type Analyzer struct {
	chartDir string
	maxPages int
	topN     int
	extract  PageExtractor
	logger   *zap.Logger
}

type Option func(*Analyzer)

func WithExtractor(fn PageExtractor) Option {
	return func(a *Analyzer) { a.extract = fn }
}

func NewAnalyzer(chartDir string, logger *zap.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		chartDir: chartDir,
		maxPages: DefaultMaxPages,
		topN:     DefaultTopWords,
		extract:  ExtractPages,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze charts the most frequent words of the PDF's leading pages. ok is
// false when no word survives filtering (e.g. a scanned, image-only PDF);
// no chart is written then.
func (a *Analyzer) Analyze(pdfPath, ticker string) (Result, bool, error) {
	pages, err := a.extract(pdfPath, a.maxPages)
	if err != nil {
		return Result{}, false, fmt.Errorf("failed to extract text from %s: %w", pdfPath, err)
	}

	words := Tokenize(strings.Join(pages, " "))
	if len(words) == 0 {
		a.logger.Info("No analyzable text in PDF", zap.String("path", pdfPath), zap.Int("pages", len(pages)))
		return Result{}, false, nil
	}

	top := TopWords(words, a.topN)
	symbol := strings.ToUpper(ticker)

	if err := os.MkdirAll(a.chartDir, 0o755); err != nil {
		return Result{}, false, fmt.Errorf("failed to create chart directory %s: %w", a.chartDir, err)
	}

	out := filepath.Join(a.chartDir, ChartFileName(symbol))
	title := fmt.Sprintf("%s Earnings PDF Word Frequency", symbol)
	if err := RenderBarChart(out, title, top); err != nil {
		return Result{}, false, err
	}

	a.logger.Info("Rendered word frequency chart",
		zap.String("ticker", symbol),
		zap.String("path", out),
		zap.Int("tokens", len(words)),
		zap.String("top", top[0].Word))

	return Result{ChartPath: out, Words: top}, true, nil
}

func ChartFileName(ticker string) string {
	return strings.ToUpper(ticker) + chartFileSuffix
}
