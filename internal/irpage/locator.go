/*
Package irpage finds and downloads the latest earnings PDF linked from an
issuer's investor-relations page.
*/
package irpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const pdfFileSuffix = "_latest_earnings.pdf"

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

type Config struct {
	PDFDir          string
	UserAgent       string
	FetchTimeout    time.Duration
	DownloadTimeout time.Duration

	// Predicate defaults to KeywordPredicate(DefaultKeywords...).
	Predicate LinkPredicate
	Client    *http.Client
}

type Locator struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

func NewLocator(cfg Config, logger *zap.Logger) *Locator {
	if cfg.Predicate == nil {
		cfg.Predicate = KeywordPredicate(DefaultKeywords...)
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 30 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &Locator{cfg: cfg, client: client, logger: logger}
}

// Locate fetches the IR page and returns the absolute URL of the first
// qualifying PDF link. ok is false when the page has no such link.
func (l *Locator) Locate(ctx context.Context, irURL string) (pdfURL string, ok bool, err error) {
	base, err := url.Parse(strings.TrimSpace(irURL))
	if err != nil {
		return "", false, &RequestError{Kind: ErrFetchFailed, URL: irURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()

	resp, err := l.get(ctx, base.String(), "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return "", false, &RequestError{Kind: ErrFetchFailed, URL: irURL, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			l.logger.Warn("Failed to close response body", zap.String("url", irURL), zap.Error(cerr))
		}
	}()

	if !isSuccess(resp.StatusCode) {
		return "", false, &RequestError{Kind: ErrFetchFailed, URL: irURL, StatusCode: resp.StatusCode}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", false, &RequestError{Kind: ErrFetchFailed, URL: irURL, Err: fmt.Errorf("failed to parse HTML: %w", err)}
	}

	links := CollectLinks(doc)
	link, found := SelectFirst(links, l.cfg.Predicate)
	if !found {
		l.logger.Info("No earnings PDF link found", zap.String("url", irURL), zap.Int("anchors", len(links)))
		return "", false, nil
	}

	ref, err := url.Parse(strings.TrimSpace(link.Href))
	if err != nil {
		return "", false, &RequestError{Kind: ErrFetchFailed, URL: irURL, Err: fmt.Errorf("invalid link %q: %w", link.Href, err)}
	}

	resolved := base.ResolveReference(ref).String()
	l.logger.Debug("Selected earnings PDF link",
		zap.String("url", irURL),
		zap.String("href", link.Href),
		zap.String("resolved", resolved))

	return resolved, true, nil
}

// Download saves the PDF at pdfURL as the ticker's single latest-earnings
// file, replacing any previous download.
func (l *Locator) Download(ctx context.Context, ticker, pdfURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.DownloadTimeout)
	defer cancel()

	resp, err := l.get(ctx, pdfURL, "application/pdf,*/*")
	if err != nil {
		return "", &RequestError{Kind: ErrDownloadFailed, URL: pdfURL, Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return "", &RequestError{Kind: ErrDownloadFailed, URL: pdfURL, StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(l.cfg.PDFDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create PDF directory %s: %w", l.cfg.PDFDir, err)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RequestError{Kind: ErrDownloadFailed, URL: pdfURL, Err: fmt.Errorf("failed to read PDF response body: %w", err)}
	}

	outPath := filepath.Join(l.cfg.PDFDir, PDFFileName(ticker))
	if err := writeAtomic(outPath, content); err != nil {
		return "", err
	}

	l.logger.Info("Downloaded earnings PDF",
		zap.String("ticker", ticker),
		zap.String("path", outPath),
		zap.Int("size", len(content)))

	return outPath, nil
}

// DownloadLatest runs Locate then Download. ok is false when no qualifying
// link exists; nothing is written in that case.
func (l *Locator) DownloadLatest(ctx context.Context, ticker, irURL string) (path string, ok bool, err error) {
	pdfURL, found, err := l.Locate(ctx, irURL)
	if err != nil || !found {
		return "", false, err
	}

	path, err = l.Download(ctx, ticker, pdfURL)
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

// SanitizeTicker upper-cases the ticker and replaces every character outside
// [A-Za-z0-9_-] with an underscore.
func SanitizeTicker(ticker string) string {
	return unsafeFileChars.ReplaceAllString(strings.ToUpper(ticker), "_")
}

func PDFFileName(ticker string) string {
	return SanitizeTicker(ticker) + pdfFileSuffix
}

func (l *Locator) get(ctx context.Context, target, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", l.cfg.UserAgent)
	req.Header.Set("Accept", accept)
	return l.client.Do(req)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// writeAtomic replaces path with data via a temporary file in the same
// directory, so a reader never sees a half-written PDF.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write PDF bytes to %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move PDF into place at %s: %w", path, err)
	}
	return nil
}
