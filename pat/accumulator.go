package pat

import (
	"emfdscore.com/emfd/lexicon"
	"math"
	"strings"
)

type Role int

const (
	Agent Role = iota
	Patient
	Attribute
)

func (r Role) String() string {
	switch r {
	case Agent:
		return "agent"
	case Patient:
		return "patient"
	case Attribute:
		return "attribute"
	}
	return "unknown"
}

// Bucket keeps the lexicon words attributed to an entity in one role together
// with their records. Words[i] always belongs to Scores[i].
type Bucket struct {
	Words  []string
	Scores []lexicon.EMFDScores
}

func (b *Bucket) Add(word string, scores lexicon.EMFDScores) {
	b.Words = append(b.Words, word)
	b.Scores = append(b.Scores, scores)
}

func (b *Bucket) Len() int {
	return len(b.Words)
}

// Mean is the elementwise mean of the records, all NaN for an empty bucket.
func (b *Bucket) Mean() lexicon.EMFDScores {
	var mean lexicon.EMFDScores
	if len(b.Scores) == 0 {
		for i := range mean {
			mean[i] = math.NaN()
		}
		return mean
	}
	for _, s := range b.Scores {
		mean.Add(s)
	}
	mean.Div(float64(len(b.Scores)))
	return mean
}

func (b *Bucket) Joined() string {
	return strings.Join(b.Words, ",")
}

type Accumulator struct {
	Entity    string
	Agent     Bucket
	Patient   Bucket
	Attribute Bucket
}

func (acc *Accumulator) Bucket(role Role) *Bucket {
	switch role {
	case Patient:
		return &acc.Patient
	case Attribute:
		return &acc.Attribute
	}
	return &acc.Agent
}

func (acc *Accumulator) Empty() bool {
	return acc.Agent.Len()+acc.Patient.Len()+acc.Attribute.Len() == 0
}

// DropEmpty removes the entities that gathered no word in any role.
func DropEmpty(accs []*Accumulator) []*Accumulator {
	out := make([]*Accumulator, 0, len(accs))
	for _, acc := range accs {
		if !acc.Empty() {
			out = append(out, acc)
		}
	}
	return out
}
