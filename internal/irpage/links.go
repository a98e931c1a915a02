package irpage

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultKeywords mark a PDF link as an earnings document.
var DefaultKeywords = []string{"earnings", "quarter", "results", "presentation"}

type Link struct {
	Href string
	Text string
}

// LinkPredicate decides whether an anchor is an earnings PDF candidate.
type LinkPredicate func(href, text string) bool

// KeywordPredicate accepts links whose href contains ".pdf" and whose text
// followed by href contains at least one keyword, all case-insensitive.
func KeywordPredicate(keywords ...string) LinkPredicate {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lowered = append(lowered, kw)
		}
	}

	return func(href, text string) bool {
		hrefLower := strings.ToLower(href)
		if !strings.Contains(hrefLower, ".pdf") {
			return false
		}
		haystack := strings.ToLower(strings.TrimSpace(text)) + hrefLower
		for _, kw := range lowered {
			if strings.Contains(haystack, kw) {
				return true
			}
		}
		return false
	}
}

// CollectLinks returns every anchor with an href attribute in document order.
func CollectLinks(doc *html.Node) []Link {
	var links []Link
	goquery.NewDocumentFromNode(doc).Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, Link{Href: href, Text: s.Text()})
	})
	return links
}

// SelectFirst returns the first link accepted by the predicate.
func SelectFirst(links []Link, accept LinkPredicate) (Link, bool) {
	for _, l := range links {
		if accept(l.Href, l.Text) {
			return l, true
		}
	}
	return Link{}, false
}
