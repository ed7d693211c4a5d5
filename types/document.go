package types

import (
	"strings"
	"sync"
)

// Entity labels kept as relation extraction candidates.
const (
	EntityPerson = "PERSON"
	EntityNORP   = "NORP"
	EntityGPE    = "GPE"
)

type EntitySpan struct {
	Text  string `json:"text"`
	Label string `json:"label"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Words returns the constituent words of the span the way they are matched
// against token text.
func (span EntitySpan) Words() []string {
	return strings.Split(span.Text, " ")
}

// Document is the annotator output for one text. Child lists are derived from
// head indexes on first use.
type Document struct {
	Tokens   []*Token     `json:"tokens"`
	Entities []EntitySpan `json:"ents"`

	linkOnce sync.Once
	children [][]int
}

func (doc *Document) Len() int {
	return len(doc.Tokens)
}

func (doc *Document) Head(token *Token) *Token {
	if token.Head < 0 || token.Head >= len(doc.Tokens) {
		return token
	}
	return doc.Tokens[token.Head]
}

// Children returns the syntactic dependents of the token at index i in
// document order.
func (doc *Document) Children(i int) []*Token {
	doc.link()
	if i < 0 || i >= len(doc.children) {
		return nil
	}
	out := make([]*Token, len(doc.children[i]))
	for j, c := range doc.children[i] {
		out[j] = doc.Tokens[c]
	}
	return out
}

// RightEdge returns the index of the rightmost token in the subtree rooted at i.
func (doc *Document) RightEdge(i int) int {
	doc.link()
	edge := i
	stack := []int{i}
	// a malformed head chain must not loop forever
	for steps := 0; len(stack) > 0 && steps <= len(doc.Tokens); steps++ {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur > edge {
			edge = cur
		}
		stack = append(stack, doc.children[cur]...)
	}
	return edge
}

func (doc *Document) link() {
	doc.linkOnce.Do(func() {
		doc.children = make([][]int, len(doc.Tokens))
		for i, token := range doc.Tokens {
			if token.Head == i || token.Head < 0 || token.Head >= len(doc.Tokens) {
				continue
			}
			doc.children[token.Head] = append(doc.children[token.Head], i)
		}
	})
}
