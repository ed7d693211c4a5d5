package types

import "errors"

var (
	ErrUnknownDictionary = errors.New("dictionary type not recognized, available values are: emfd, mfd, mfd2")
	ErrUnknownMode       = errors.New("scoring mode not recognized, available values are: bow, pat")
	ErrEmptyDocument     = errors.New("document has no tokens left after filtering")
)
