package pat

import (
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/types"
	"sort"
)

const (
	EntityColumn         = "NER"
	AgentWordsColumn     = "agent_words"
	PatientWordsColumn   = "patient_words"
	AttributeWordsColumn = "attribute_words"
)

// EntityRow is the averaged PAT record of one entity in one document. A role
// without words has NaN means.
type EntityRow struct {
	Entity         string
	AgentWords     string
	PatientWords   string
	AttributeWords string
	Agent          lexicon.EMFDScores
	Patient        lexicon.EMFDScores
	Attribute      lexicon.EMFDScores
}

// Columns: entity, word lists, then agent, patient and attribute means, each
// with probabilities before sentiments.
func Columns() []string {
	cols := []string{EntityColumn, AgentWordsColumn, PatientWordsColumn, AttributeWordsColumn}
	for _, role := range []Role{Agent, Patient, Attribute} {
		for _, name := range lexicon.EMFDNames {
			cols = append(cols, role.String()+"_"+name)
		}
	}
	return cols
}

// Values returns the numeric columns following the four text columns.
func (row EntityRow) Values() []float64 {
	values := make([]float64, 0, 3*lexicon.EMFDSize)
	values = append(values, row.Agent[:]...)
	values = append(values, row.Patient[:]...)
	return append(values, row.Attribute[:]...)
}

func (row EntityRow) Texts() []string {
	return []string{row.Entity, row.AgentWords, row.PatientWords, row.AttributeWords}
}

func MeanPAT(accs []*Accumulator) []EntityRow {
	rows := make([]EntityRow, 0, len(accs))
	for _, acc := range accs {
		rows = append(rows, EntityRow{
			Entity:         acc.Entity,
			AgentWords:     acc.Agent.Joined(),
			PatientWords:   acc.Patient.Joined(),
			AttributeWords: acc.Attribute.Joined(),
			Agent:          acc.Agent.Mean(),
			Patient:        acc.Patient.Mean(),
			Attribute:      acc.Attribute.Mean(),
		})
	}
	return rows
}

// Process runs extraction, the drop rule and averaging for one document.
func (x *Extractor) Process(doc *types.Document) []EntityRow {
	return MeanPAT(DropEmpty(x.Extract(doc)))
}

// SortRows orders rows by entity, keeping document order between equal
// entities.
func SortRows(rows []EntityRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Entity < rows[j].Entity })
}
