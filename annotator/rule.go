package annotator

import (
	"context"
	"emfdscore.com/emfd/types"
	"strings"
	"unicode"
)

var quotes = map[string]bool{
	"\"": true, "'": true, "`": true, "``": true, "''": true,
	"‘": true, "’": true, "“": true, "”": true,
	"«": true, "»": true, "„": true, "‚": true,
}

var numberWords = map[string]bool{
	"zero": true, "one": true, "two": true, "three": true, "four": true, "five": true,
	"six": true, "seven": true, "eight": true, "nine": true, "ten": true,
	"eleven": true, "twelve": true, "thirteen": true, "fourteen": true, "fifteen": true,
	"sixteen": true, "seventeen": true, "eighteen": true, "nineteen": true, "twenty": true,
	"thirty": true, "forty": true, "fifty": true, "sixty": true, "seventy": true,
	"eighty": true, "ninety": true, "hundred": true, "thousand": true, "million": true,
	"billion": true, "trillion": true, "quadrillion": true, "gajillion": true, "bazillion": true,
	"first": true, "second": true, "third": true, "fourth": true, "fifth": true,
	"sixth": true, "seventh": true, "eighth": true, "ninth": true, "tenth": true,
	"hundredth": true, "thousandth": true, "millionth": true, "billionth": true,
}

// Rule is an in-process annotator producing tokens and their lexical flags.
// It does not tag, parse or recognize entities, so its documents serve word
// count scoring only.
type Rule struct{}

func NewRule() *Rule {
	return &Rule{}
}

func (Rule) Annotate(ctx context.Context, text string) (*types.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := &types.Document{}
	for _, piece := range split([]rune(text)) {
		token := types.NewToken(len(doc.Tokens), piece)
		token.Lemma = token.Lower
		token.IsSpace = allRunes(piece, unicode.IsSpace)
		token.IsPunct = allRunes(piece, unicode.IsPunct)
		token.IsDigit = allRunes(piece, unicode.IsDigit)
		token.IsQuote = quotes[piece]
		token.LikeNum = likeNum(piece)
		doc.Tokens = append(doc.Tokens, token)
	}
	return doc, nil
}

// split cuts text into word, number, punctuation and whitespace pieces. Single
// spaces separate tokens, longer whitespace runs become tokens of their own.
// Apostrophes, hyphens, periods and commas stay inside a word when both
// neighbours are letters or digits.
func split(runes []rune) []string {
	var pieces []string
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if !(j-i == 1 && r == ' ') {
				ws := runes[i:j]
				if i > 0 && ws[0] == ' ' {
					ws = ws[1:]
				}
				pieces = append(pieces, string(ws))
			}
			i = j
		case isWordRune(r):
			j := i + 1
			for j < len(runes) {
				if isWordRune(runes[j]) {
					j++
					continue
				}
				if isJoiner(runes[j]) && j+1 < len(runes) && isWordRune(runes[j+1]) {
					j += 2
					continue
				}
				break
			}
			pieces = append(pieces, string(runes[i:j]))
			i = j
		default:
			pieces = append(pieces, string(r))
			i++
		}
	}
	return pieces
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isJoiner(r rune) bool {
	return r == '\'' || r == '’' || r == '-' || r == '.' || r == ','
}

func allRunes(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

func likeNum(text string) bool {
	text = strings.TrimLeft(text, "+-~±")
	text = strings.NewReplacer(",", "", ".", "").Replace(text)
	if allRunes(text, unicode.IsDigit) {
		return true
	}
	if parts := strings.Split(text, "/"); len(parts) == 2 {
		if allRunes(parts[0], unicode.IsDigit) && allRunes(parts[1], unicode.IsDigit) {
			return true
		}
	}
	lower := strings.ToLower(text)
	if numberWords[lower] {
		return true
	}
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		if strings.HasSuffix(lower, suffix) && allRunes(strings.TrimSuffix(lower, suffix), unicode.IsDigit) {
			return true
		}
	}
	return false
}
