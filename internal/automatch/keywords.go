package automatch

import (
	"regexp"
	"strings"
)

// Words too generic to signal a real merchant/event connection. Includes
// transaction jargon that shows up in most statement lines.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {},
	"been": {}, "be": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "shall": {},
	"can": {}, "need": {},
	"payment": {}, "purchase": {}, "transaction": {}, "debit": {},
	"credit": {}, "card": {}, "pos": {}, "ach": {}, "check": {},
	"deposit": {}, "withdrawal": {}, "transfer": {},
}

var nonLetters = regexp.MustCompile(`[^a-z\s]`)

// extractKeywords tokenizes text into lowercase alphabetic words of at least
// three characters, minus stop words.
func extractKeywords(text string) []string {
	cleaned := nonLetters.ReplaceAllString(strings.ToLower(text), " ")

	var keywords []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) < 3 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		keywords = append(keywords, word)
	}
	return keywords
}

// keywordsOverlap reports whether two keyword sets share a meaningful word:
// either an exact token in common, or one token of four or more characters
// containing the other.
func keywordsOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	bSet := make(map[string]struct{}, len(b))
	for _, word := range b {
		bSet[word] = struct{}{}
	}

	for _, word := range a {
		if _, ok := bSet[word]; ok {
			return true
		}
		if len(word) < 4 {
			continue
		}
		for _, other := range b {
			if len(other) >= 4 && (strings.Contains(word, other) || strings.Contains(other, word)) {
				return true
			}
		}
	}
	return false
}
