// Package pat attributes e-MFD words to named entities by syntactic role:
// entities acting on a moral word are agents, entities it is done to are
// patients and entities it describes carry it as an attribute.
package pat

import (
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/types"
)

const copula = "is"

type Extractor struct {
	store *lexicon.Store
}

func NewExtractor(store *lexicon.Store) *Extractor {
	return &Extractor{store: store}
}

// Extract walks the dependency relations of doc and returns the accumulator of
// every candidate entity in order of first mention, empty ones included.
//
// Tokens whose text is a stopword are skipped, except by the preposition and
// copula rules whose trigger tokens are function words themselves.
func (x *Extractor) Extract(doc *types.Document) []*Accumulator {
	ents := FindEntities(doc)
	if ents.Len() == 0 {
		return nil
	}
	for i, token := range doc.Tokens {
		skip := x.store.IsStopword(token.Text)
		head := doc.Head(token).Lower

		switch token.Dep {
		case types.DepSubject, types.DepRoot:
			if !skip {
				x.attach(ents, token.Text, head, Agent)
			}
		case types.DepObject:
			if !skip {
				x.attach(ents, token.Text, head, Patient)
			}
		case types.DepPreposition:
			for _, child := range doc.Children(i) {
				x.attach(ents, child.Text, head, Patient)
			}
		case types.DepAttribute:
			if !skip {
				for _, child := range doc.Children(i) {
					x.attach(ents, child.Text, head, Attribute)
				}
			}
		case types.DepConjunct:
			if !skip {
				x.attach(ents, conjunctTarget(doc, i).Text, head, Agent)
			}
		}

		if token.Text == copula {
			children := doc.Children(i)
			if len(children) >= 2 {
				x.attach(ents, children[0].Text, children[1].Lower, Attribute)
			}
		}
	}
	return ents.Accumulators()
}

// conjunctTarget is the last token of the conjunct's subtree, or the token
// before it when the subtree ends the sentence.
func conjunctTarget(doc *types.Document, i int) *types.Token {
	edge := doc.RightEdge(i)
	if doc.Tokens[edge].IsTerminal() && edge > 0 {
		edge--
	}
	return doc.Tokens[edge]
}

// attach adds word to the role bucket of the entity named by candidate. Words
// outside the e-MFD and candidates naming no entity are ignored.
func (x *Extractor) attach(ents *Entities, candidate string, word string, role Role) {
	scores, ok := x.store.EMFD(word)
	if !ok {
		return
	}
	name, ok := ents.Resolve(candidate)
	if !ok {
		return
	}
	ents.Accumulator(name).Bucket(role).Add(word, scores)
}
