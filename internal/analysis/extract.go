package analysis

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageExtractor returns the text of at most maxPages leading pages.
type PageExtractor func(path string, maxPages int) ([]string, error)

// ExtractPages reads the first maxPages pages of a PDF. A page whose text
// cannot be extracted yields an empty string; only an unreadable file is an
// error.
func ExtractPages(path string, maxPages int) (pages []string, err error) {
	// the pdf package panics on some corrupt streams
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("panic while reading PDF %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	total := r.NumPage()
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, pageText(r, i))
	}
	return pages, nil
}

func pageText(r *pdf.Reader, num int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	page := r.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
