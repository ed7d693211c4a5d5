package pat

import (
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/types"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

type tok struct {
	text string
	dep  string
	head int
}

func buildDoc(toks []tok, ents ...types.EntitySpan) *types.Document {
	doc := &types.Document{Entities: ents}
	for i, t := range toks {
		token := types.NewToken(i, t.text)
		token.Dep = t.dep
		token.Head = t.head
		doc.Tokens = append(doc.Tokens, token)
	}
	return doc
}

func person(text string) types.EntitySpan {
	return types.EntitySpan{Text: text, Label: types.EntityPerson}
}

func testExtractor(t *testing.T) *Extractor {
	t.Helper()
	store, err := lexicon.New(
		map[string]lexicon.EMFDScores{
			"protected": {0.2, 0, 0, 0, 0, 0.4},
			"saved":     {0.4, 0, 0, 0, 0, 0.2},
			"killed":    {0.5, 0, 0, 0, 0, -0.6},
			"hurt":      {0.3, 0, 0, 0, 0, -0.2},
			"fought":    {0, 0.1, 0.2},
			"brave":     {0, 0, 0.4, 0, 0, 0, 0, 0.5},
			"praised":   {0, 0, 0, 0.3},
		},
		nil,
		nil,
		[]string{"the", "is", "for", "us", "and"},
	)
	require.NoError(t, err)
	return NewExtractor(store)
}

func rowFor(t *testing.T, rows []EntityRow, entity string) EntityRow {
	t.Helper()
	for _, row := range rows {
		if row.Entity == entity {
			return row
		}
	}
	t.Fatalf("no row for %q", entity)
	return EntityRow{}
}

func TestSubjectAndObject(t *testing.T) {
	x := testExtractor(t)
	doc := buildDoc([]tok{
		{"Zelda", types.DepSubject, 1},
		{"protected", types.DepRoot, 1},
		{"Amy", types.DepObject, 1},
		{".", "punct", 1},
	}, person("Zelda"), person("Amy"))

	rows := x.Process(doc)
	require.Len(t, rows, 2)

	zelda := rowFor(t, rows, "Zelda")
	require.Equal(t, "protected", zelda.AgentWords)
	require.Equal(t, "", zelda.PatientWords)
	require.InDelta(t, 0.2, zelda.Agent[lexicon.CareP], 1e-12)
	require.True(t, math.IsNaN(zelda.Patient[lexicon.CareP]))
	require.True(t, math.IsNaN(zelda.Attribute[lexicon.SanctitySent]))

	amy := rowFor(t, rows, "Amy")
	require.Equal(t, "protected", amy.PatientWords)
	require.InDelta(t, 0.4, amy.Patient[lexicon.CareSent], 1e-12)
}

func TestDropAndSort(t *testing.T) {
	x := testExtractor(t)
	doc := buildDoc([]tok{
		{"Zelda", types.DepSubject, 1},
		{"saved", types.DepRoot, 1},
		{"Amy", types.DepObject, 1},
		{"near", "prep", 1},
		{"Hyrule", "pobj", 3},
	}, person("Zelda"), person("Amy"), types.EntitySpan{Text: "Link", Label: types.EntityPerson},
		types.EntitySpan{Text: "Hyrule", Label: "LOC"})

	rows := x.Process(doc)
	require.Len(t, rows, 2)
	require.Equal(t, "Zelda", rows[0].Entity)

	SortRows(rows)
	require.Equal(t, "Amy", rows[0].Entity)
	require.Equal(t, "Zelda", rows[1].Entity)
}

func TestNoCandidateEntities(t *testing.T) {
	x := testExtractor(t)
	doc := buildDoc([]tok{
		{"Link", types.DepSubject, 1},
		{"saved", types.DepRoot, 1},
	}, types.EntitySpan{Text: "Hyrule", Label: "LOC"})

	require.Nil(t, x.Extract(doc))
	require.Empty(t, x.Process(doc))
}

func TestMeanOfSeveralWords(t *testing.T) {
	acc := &Accumulator{Entity: "Zelda"}
	acc.Agent.Add("protected", lexicon.EMFDScores{0.2})
	acc.Agent.Add("saved", lexicon.EMFDScores{0.4})

	rows := MeanPAT([]*Accumulator{acc})
	require.Len(t, rows, 1)
	require.InDelta(t, 0.3, rows[0].Agent[lexicon.CareP], 1e-12)
	require.Equal(t, "protected,saved", rows[0].AgentWords)
	require.Len(t, rows[0].Values(), 3*lexicon.EMFDSize)
	require.Len(t, Columns(), len(rows[0].Texts())+len(rows[0].Values()))
}

func TestConjunctSkipsTerminalPunctuation(t *testing.T) {
	x := testExtractor(t)
	// Bob killed Tom and hurt Zelda .
	doc := buildDoc([]tok{
		{"Bob", types.DepSubject, 1},
		{"killed", types.DepRoot, 1},
		{"Tom", types.DepObject, 1},
		{"and", "cc", 1},
		{"hurt", types.DepConjunct, 1},
		{"Zelda", types.DepObject, 4},
		{".", "punct", 4},
	}, person("Bob"), person("Tom"), person("Zelda"))

	rows := x.Process(doc)
	require.Len(t, rows, 3)
	require.Equal(t, "killed", rowFor(t, rows, "Bob").AgentWords)
	require.Equal(t, "killed", rowFor(t, rows, "Tom").PatientWords)

	zelda := rowFor(t, rows, "Zelda")
	require.Equal(t, "killed", zelda.AgentWords)
	require.Equal(t, "hurt", zelda.PatientWords)
}

func TestPrepositionIgnoresStopwordGate(t *testing.T) {
	x := testExtractor(t)
	// Zelda fought for Amy .
	doc := buildDoc([]tok{
		{"Zelda", types.DepSubject, 1},
		{"fought", types.DepRoot, 1},
		{"for", types.DepPreposition, 1},
		{"Amy", "pobj", 2},
		{".", "punct", 1},
	}, person("Zelda"), person("Amy"))

	rows := x.Process(doc)
	amy := rowFor(t, rows, "Amy")
	require.Equal(t, "fought", amy.PatientWords)
	require.InDelta(t, 0.1, amy.Patient[lexicon.FairnessP], 1e-12)
	require.Equal(t, "fought", rowFor(t, rows, "Zelda").AgentWords)
}

func TestAttribute(t *testing.T) {
	x := testExtractor(t)
	doc := buildDoc([]tok{
		{"Zelda", types.DepSubject, 1},
		{"praised", types.DepRoot, 1},
		{"the", "det", 3},
		{"champion", types.DepAttribute, 1},
		{"Amy", "appos", 3},
	}, person("Zelda"), person("Amy"))

	rows := x.Process(doc)
	amy := rowFor(t, rows, "Amy")
	require.Equal(t, "praised", amy.AttributeWords)
	require.InDelta(t, 0.3, amy.Attribute[lexicon.AuthorityP], 1e-12)
}

func TestCopula(t *testing.T) {
	x := testExtractor(t)
	// Princess Zelda is brave .
	doc := buildDoc([]tok{
		{"Princess", "compound", 1},
		{"Zelda", types.DepSubject, 2},
		{"is", types.DepRoot, 2},
		{"brave", "acomp", 2},
		{".", "punct", 2},
	}, person("Princess Zelda"))

	rows := x.Process(doc)
	require.Len(t, rows, 1)
	require.Equal(t, "Princess Zelda", rows[0].Entity)
	require.Equal(t, "brave", rows[0].AttributeWords)
	require.Equal(t, "", rows[0].AgentWords)
	require.InDelta(t, 0.5, rows[0].Attribute[lexicon.LoyaltySent], 1e-12)
}

func TestStopwordGateIsCaseSensitive(t *testing.T) {
	x := testExtractor(t)
	doc := buildDoc([]tok{
		{"US", types.DepSubject, 1},
		{"protected", types.DepRoot, 1},
		{"us", types.DepObject, 1},
	}, types.EntitySpan{Text: "US", Label: types.EntityGPE}, types.EntitySpan{Text: "us", Label: types.EntityNORP})

	rows := x.Process(doc)
	require.Len(t, rows, 1)
	require.Equal(t, "US", rows[0].Entity)
	require.Equal(t, "protected", rows[0].AgentWords)
}

func TestResolveFirstMention(t *testing.T) {
	doc := buildDoc(nil,
		person("Mary Smith"),
		person("John Smith"),
		person("Mary Smith"),
		types.EntitySpan{Text: "Paris", Label: "FAC"},
	)
	ents := FindEntities(doc)
	require.Equal(t, 2, ents.Len())

	name, ok := ents.Resolve("Smith")
	require.True(t, ok)
	require.Equal(t, "Mary Smith", name)

	name, ok = ents.Resolve("John")
	require.True(t, ok)
	require.Equal(t, "John Smith", name)

	_, ok = ents.Resolve("smith")
	require.False(t, ok)
	_, ok = ents.Resolve("Paris")
	require.False(t, ok)
}
