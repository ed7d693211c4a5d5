package types

import "strings"

// Dependency labels the extractor reacts to.
const (
	DepSubject     = "nsubj"
	DepRoot        = "ROOT"
	DepObject      = "dobj"
	DepPreposition = "prep"
	DepAttribute   = "attr"
	DepConjunct    = "conj"
)

type Token struct {
	Index   int    `json:"i"`
	Text    string `json:"text"`
	Lower   string `json:"lower"`
	Lemma   string `json:"lemma,omitempty"`
	Tag     string `json:"tag,omitempty"`
	Dep     string `json:"dep,omitempty"`
	Head    int    `json:"head"`
	IsPunct bool   `json:"is_punct"`
	IsDigit bool   `json:"is_digit"`
	IsQuote bool   `json:"is_quote"`
	LikeNum bool   `json:"like_num"`
	IsSpace bool   `json:"is_space"`
}

func NewToken(index int, text string) *Token {
	return &Token{
		Index: index,
		Text:  text,
		Lower: strings.ToLower(text),
		Head:  index,
	}
}

// IsTerminal reports whether the token closes a sentence.
func (token *Token) IsTerminal() bool {
	return token.Text == "." || token.Text == "!" || token.Text == "?"
}
