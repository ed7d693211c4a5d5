// Package annotator turns raw text into annotated documents: tokens with
// lexical flags, dependency heads and labels, and named-entity spans.
package annotator

import (
	"context"
	"emfdscore.com/emfd/types"
	"strings"
)

// Stages an annotation service can be asked to skip.
const (
	StageTagger = "tagger"
	StageParser = "parser"
	StageNER    = "ner"
)

// BagOfWords lists the stages word-count scoring never looks at.
var BagOfWords = []string{StageNER, StageParser, StageTagger}

type Annotator interface {
	Annotate(ctx context.Context, text string) (*types.Document, error)
}

// normalize fills what a remote annotator may leave out and clamps heads that
// point outside the document to the token itself.
func normalize(doc *types.Document) {
	for i, token := range doc.Tokens {
		token.Index = i
		if token.Lower == "" {
			token.Lower = strings.ToLower(token.Text)
		}
		if token.Head < 0 || token.Head >= len(doc.Tokens) {
			token.Head = i
		}
	}
}
