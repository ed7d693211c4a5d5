// Package scoring implements bag-of-words moral foundations scoring for the
// e-MFD, MFD and MFD2 dictionaries.
//
// Every scorer normalizes by the number of filtered tokens of the document, not
// by the number of lexicon hits. A document with no tokens left fails with
// types.ErrEmptyDocument. When every token is a lexicon hit the
// moral_nonmoral_ratio is +Inf.
package scoring

import (
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/types"
	"fmt"
	"math"
)

const (
	MoralRatioColumn = "moral_nonmoral_ratio"
	FVarColumn       = "f_var"
	SentVarColumn    = "sent_var"
)

// Row is the score record of one document in column order.
type Row interface {
	Columns() []string
	Values() []float64
}

type Scorer func(tokens []string) (Row, error)

func NewScorer(store *lexicon.Store, dict types.Dictionary) (Scorer, error) {
	switch dict {
	case types.DictionaryEMFD:
		return func(tokens []string) (Row, error) { return ScoreEMFD(store, tokens) }, nil
	case types.DictionaryMFD:
		return func(tokens []string) (Row, error) { return ScoreMFD(store, tokens) }, nil
	case types.DictionaryMFD2:
		return func(tokens []string) (Row, error) { return ScoreMFD2(store, tokens) }, nil
	}
	return nil, fmt.Errorf("%w: got %q", types.ErrUnknownDictionary, dict)
}

// Columns returns the fixed column set produced for dict.
func Columns(dict types.Dictionary) ([]string, error) {
	switch dict {
	case types.DictionaryEMFD:
		return EMFDRow{}.Columns(), nil
	case types.DictionaryMFD:
		return MFDResult{}.Columns(), nil
	case types.DictionaryMFD2:
		return MFD2Result{}.Columns(), nil
	}
	return nil, fmt.Errorf("%w: got %q", types.ErrUnknownDictionary, dict)
}

type EMFDResult struct {
	Scores     lexicon.EMFDScores
	MoralRatio float64
}

func (r EMFDResult) Columns() []string {
	return append(append([]string{}, lexicon.EMFDNames[:]...), MoralRatioColumn)
}

func (r EMFDResult) Values() []float64 {
	return append(append([]float64{}, r.Scores[:]...), r.MoralRatio)
}

// EMFDRow is an e-MFD result extended with the variance across the foundation
// probabilities and across the foundation sentiments.
type EMFDRow struct {
	EMFDResult
	FVar    float64
	SentVar float64
}

func NewEMFDRow(r EMFDResult) EMFDRow {
	return EMFDRow{
		EMFDResult: r,
		FVar:       Variance(r.Scores.Probabilities()),
		SentVar:    Variance(r.Scores.Sentiments()),
	}
}

func (r EMFDRow) Columns() []string {
	return append(r.EMFDResult.Columns(), FVarColumn, SentVarColumn)
}

func (r EMFDRow) Values() []float64 {
	return append(r.EMFDResult.Values(), r.FVar, r.SentVar)
}

type MFDResult struct {
	Scores     lexicon.MFDScores
	MoralRatio float64
}

func (r MFDResult) Columns() []string {
	return append(append([]string{}, lexicon.MFDNames[:]...), MoralRatioColumn)
}

func (r MFDResult) Values() []float64 {
	return append(append([]float64{}, r.Scores[:]...), r.MoralRatio)
}

type MFD2Result struct {
	Scores     lexicon.MFD2Scores
	MoralRatio float64
}

func (r MFD2Result) Columns() []string {
	return append(append([]string{}, lexicon.MFD2Names[:]...), MoralRatioColumn)
}

func (r MFD2Result) Values() []float64 {
	return append(append([]float64{}, r.Scores[:]...), r.MoralRatio)
}

// ScoreEMFD sums the records of every e-MFD word of the document.
func ScoreEMFD(store *lexicon.Store, tokens []string) (EMFDResult, error) {
	if len(tokens) == 0 {
		return EMFDResult{}, types.ErrEmptyDocument
	}
	var result EMFDResult
	matched := 0
	for _, token := range tokens {
		if scores, ok := store.EMFD(token); ok {
			result.Scores.Add(scores)
			matched++
		}
	}
	result.Scores.Div(float64(len(tokens)))
	result.MoralRatio = moralRatio(matched, len(tokens))
	return result, nil
}

// ScoreMFD counts stem matches. A token increments every foundation of every
// stem it matches.
func ScoreMFD(store *lexicon.Store, tokens []string) (MFDResult, error) {
	if len(tokens) == 0 {
		return MFDResult{}, types.ErrEmptyDocument
	}
	var result MFDResult
	matched := 0
	stems := store.Stems()
	for _, token := range tokens {
		hit := false
		for _, stem := range stems {
			if !stem.Pattern.MatchString(token) {
				continue
			}
			hit = true
			for _, f := range stem.Foundations {
				result.Scores[f]++
			}
		}
		if hit {
			matched++
		}
	}
	for i := range result.Scores {
		result.Scores[i] /= float64(len(tokens))
	}
	result.MoralRatio = moralRatio(matched, len(tokens))
	return result, nil
}

func ScoreMFD2(store *lexicon.Store, tokens []string) (MFD2Result, error) {
	if len(tokens) == 0 {
		return MFD2Result{}, types.ErrEmptyDocument
	}
	var result MFD2Result
	matched := 0
	for _, token := range tokens {
		if f, ok := store.MFD2(token); ok {
			result.Scores[f]++
			matched++
		}
	}
	for i := range result.Scores {
		result.Scores[i] /= float64(len(tokens))
	}
	result.MoralRatio = moralRatio(matched, len(tokens))
	return result, nil
}

func moralRatio(matched int, total int) float64 {
	nonmoral := total - matched
	if nonmoral == 0 {
		return math.Inf(1)
	}
	return float64(matched) / float64(nonmoral)
}

// Variance is the sample variance (n-1 denominator). Fewer than two values
// give NaN.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values)-1)
}

// NaNRow is the column-complete placeholder written for a document that could
// not be scored.
type NaNRow []string

func (r NaNRow) Columns() []string {
	return r
}

func (r NaNRow) Values() []float64 {
	values := make([]float64, len(r))
	for i := range values {
		values[i] = math.NaN()
	}
	return values
}
