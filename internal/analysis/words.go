package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minWordLength = 4

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "to": {}, "of": {}, "in": {}, "for": {}, "a": {}, "is": {}, "on": {}, "with": {},
	"our": {}, "we": {}, "that": {}, "as": {}, "this": {}, "be": {}, "by": {}, "at": {}, "are": {}, "from": {},
}

type WordCount struct {
	Word  string
	Count int
}

// Tokenize lower-cases text, splits it on whitespace, strips every non-letter
// from each token and keeps the tokens of at least four letters that are not
// stop words.
func Tokenize(text string) []string {
	var words []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) {
				return r
			}
			return -1
		}, field)

		if utf8.RuneCountInString(clean) < minWordLength {
			continue
		}
		if _, stop := stopWords[clean]; stop {
			continue
		}
		words = append(words, clean)
	}
	return words
}

// TopWords ranks words by frequency; equal counts keep first-seen order.
func TopWords(words []string, n int) []WordCount {
	counts := make(map[string]int, len(words))
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	ranked := make([]WordCount, 0, len(order))
	for _, w := range order {
		ranked = append(ranked, WordCount{Word: w, Count: counts[w]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
