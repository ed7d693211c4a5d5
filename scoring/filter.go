package scoring

import (
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/types"
)

type TokenFilter func(doc *types.Document) []string

// NewTokenFilter lower-cases tokens and drops stopwords, punctuation, digits,
// quotes, number-like tokens and whitespace.
func NewTokenFilter(store *lexicon.Store) TokenFilter {
	return func(doc *types.Document) []string {
		out := make([]string, 0, doc.Len())
		for _, token := range doc.Tokens {
			if token.IsPunct || token.IsDigit || token.IsQuote || token.LikeNum || token.IsSpace {
				continue
			}
			if store.IsStopword(token.Lower) {
				continue
			}
			out = append(out, token.Lower)
		}
		return out
	}
}
