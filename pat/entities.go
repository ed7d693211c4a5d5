package pat

import "emfdscore.com/emfd/types"

var candidateLabels = map[string]bool{
	types.EntityPerson: true,
	types.EntityNORP:   true,
	types.EntityGPE:    true,
}

// Entities tracks the candidate entities of one document in order of first
// mention.
type Entities struct {
	names []string
	words map[string][]string
	accs  map[string]*Accumulator
}

// FindEntities keeps the PERSON, NORP and GPE spans of doc and opens an empty
// accumulator for each distinct entity text.
func FindEntities(doc *types.Document) *Entities {
	ents := &Entities{
		words: make(map[string][]string),
		accs:  make(map[string]*Accumulator),
	}
	for _, span := range doc.Entities {
		if !candidateLabels[span.Label] {
			continue
		}
		if _, seen := ents.words[span.Text]; seen {
			continue
		}
		ents.names = append(ents.names, span.Text)
		ents.words[span.Text] = span.Words()
		ents.accs[span.Text] = &Accumulator{Entity: span.Text}
	}
	return ents
}

func (ents *Entities) Len() int {
	return len(ents.names)
}

// Resolve returns the first entity, in order of first mention, one of whose
// words equals text. Entities sharing a word always resolve to the earlier one.
func (ents *Entities) Resolve(text string) (string, bool) {
	for _, name := range ents.names {
		for _, w := range ents.words[name] {
			if w == text {
				return name, true
			}
		}
	}
	return "", false
}

func (ents *Entities) Accumulator(name string) *Accumulator {
	return ents.accs[name]
}

// Accumulators returns every accumulator in order of first mention.
func (ents *Entities) Accumulators() []*Accumulator {
	out := make([]*Accumulator, len(ents.names))
	for i, name := range ents.names {
		out[i] = ents.accs[name]
	}
	return out
}
