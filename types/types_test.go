package types

import (
	"errors"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

// "John saw Mary ran ." with saw as root.
func sampleDocument() *Document {
	words := []string{"John", "saw", "Mary", "ran", "."}
	heads := []int{1, 1, 3, 1, 1}
	doc := &Document{}
	for i, w := range words {
		tok := NewToken(i, w)
		tok.Head = heads[i]
		doc.Tokens = append(doc.Tokens, tok)
	}
	return doc
}

func TestDocumentChildren(t *testing.T) {
	doc := sampleDocument()

	var got []string
	for _, c := range doc.Children(1) {
		got = append(got, c.Text)
	}
	require.Equal(t, []string{"John", "ran", "."}, got)
	require.Empty(t, doc.Children(0))
	require.Nil(t, doc.Children(42))
	require.Equal(t, "saw", doc.Head(doc.Tokens[1]).Text)
}

func TestDocumentRightEdge(t *testing.T) {
	doc := sampleDocument()

	require.Equal(t, 4, doc.RightEdge(1))
	require.Equal(t, 3, doc.RightEdge(3))
	require.Equal(t, 0, doc.RightEdge(0))
}

func TestRightEdgeSurvivesCycles(t *testing.T) {
	doc := &Document{}
	a, b := NewToken(0, "a"), NewToken(1, "b")
	a.Head, b.Head = 1, 0
	doc.Tokens = []*Token{a, b}

	require.Equal(t, 1, doc.RightEdge(0))
}

func TestEntityWords(t *testing.T) {
	span := EntitySpan{Text: "John Smith", Label: EntityPerson}
	require.Equal(t, []string{"John", "Smith"}, span.Words())
}

func TestParseDictionary(t *testing.T) {
	for _, in := range []string{"emfd", "MFD", " mfd2 "} {
		_, err := ParseDictionary(in)
		require.NoError(t, err, in)
	}
	_, err := ParseDictionary("liwc")
	require.True(t, errors.Is(err, ErrUnknownDictionary))
}

func TestLoadConfigurations(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("emfd_bow.yaml", "dictionary: emfd\nmode: bow\n")
	write("emfd_pat.yaml", "dictionary: emfd\nmode: pat\n")
	write("mfd2.yaml", "dictionary: mfd2\n")
	write("broken.yaml", "dictionary: liwc\n")
	write("mfd_pat.yaml", "dictionary: mfd\nmode: pat\n")
	write("notes.txt", "ignored")

	cfgs, err := LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, cfgs, 3)
	require.Equal(t, "emfd_bow", cfgs[0].Name)
	require.Equal(t, ModePAT, cfgs[1].Mode)
	require.Equal(t, DictionaryMFD2, cfgs[2].Dictionary)
	require.Equal(t, ModeBoW, cfgs[2].Mode)
}

func TestLoadConfigurationsMissingDir(t *testing.T) {
	_, err := LoadConfigurations(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
