package scoring

import (
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/types"
	"errors"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
)

func testStore(t *testing.T) *lexicon.Store {
	t.Helper()
	store, err := lexicon.New(
		map[string]lexicon.EMFDScores{
			"care": {0.2, 0, 0, 0, 0, 0.4},
			"kill": {0.4, 0.1, 0, 0, 0, -0.6},
			"fair": {0, 0.5, 0, 0, 0, 0, 0.3},
		},
		map[string][]int{
			"guard*":    {lexicon.MFDCareVirtue, lexicon.MFDFairnessVirtue},
			"guardian*": {lexicon.MFDLoyaltyVirtue},
			"kill*":     {lexicon.MFDCareVice},
		},
		map[string]int{
			"care":   lexicon.MFD2CareVirtue,
			"betray": lexicon.MFD2LoyaltyVice,
		},
		[]string{"the", "and", "is"},
	)
	require.NoError(t, err)
	return store
}

func tokensOf(n int, words ...string) []string {
	out := append([]string{}, words...)
	for len(out) < n {
		out = append(out, "table")
	}
	return out
}

func TestScoreEMFD(t *testing.T) {
	store := testStore(t)

	t.Run("normalizes by document length", func(t *testing.T) {
		res, err := ScoreEMFD(store, tokensOf(10, "care", "kill", "care"))
		require.NoError(t, err)
		require.InDelta(t, 0.08, res.Scores[lexicon.CareP], 1e-12)
		require.InDelta(t, 0.01, res.Scores[lexicon.FairnessP], 1e-12)
		require.InDelta(t, 0.02, res.Scores[lexicon.CareSent], 1e-12)
		require.InDelta(t, 3.0/7.0, res.MoralRatio, 1e-12)
	})

	t.Run("no hits keeps every key at zero", func(t *testing.T) {
		res, err := ScoreEMFD(store, tokensOf(4))
		require.NoError(t, err)
		require.Equal(t, lexicon.EMFDScores{}, res.Scores)
		require.Equal(t, 0.0, res.MoralRatio)
		require.Len(t, res.Values(), len(res.Columns()))
	})

	t.Run("all hits give infinite ratio", func(t *testing.T) {
		res, err := ScoreEMFD(store, []string{"care", "fair"})
		require.NoError(t, err)
		require.True(t, math.IsInf(res.MoralRatio, 1))
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := ScoreEMFD(store, nil)
		require.True(t, errors.Is(err, types.ErrEmptyDocument))
	})

	t.Run("idempotent", func(t *testing.T) {
		tokens := tokensOf(6, "kill", "fair")
		a, _ := ScoreEMFD(store, tokens)
		b, _ := ScoreEMFD(store, tokens)
		require.Equal(t, a, b)
	})
}

func TestScoreMFD(t *testing.T) {
	store := testStore(t)

	t.Run("one token hits several stems", func(t *testing.T) {
		res, err := ScoreMFD(store, []string{"guardians", "table"})
		require.NoError(t, err)
		require.Equal(t, 0.5, res.Scores[lexicon.MFDCareVirtue])
		require.Equal(t, 0.5, res.Scores[lexicon.MFDFairnessVirtue])
		require.Equal(t, 0.5, res.Scores[lexicon.MFDLoyaltyVirtue])
		require.Equal(t, 0.0, res.Scores[lexicon.MFDCareVice])
		require.Equal(t, 1.0, res.MoralRatio)
	})

	t.Run("prefix anchored at start", func(t *testing.T) {
		res, err := ScoreMFD(store, []string{"skill", "killing"})
		require.NoError(t, err)
		require.Equal(t, 0.5, res.Scores[lexicon.MFDCareVice])
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := ScoreMFD(store, []string{})
		require.True(t, errors.Is(err, types.ErrEmptyDocument))
	})
}

func TestScoreMFD2(t *testing.T) {
	store := testStore(t)

	res, err := ScoreMFD2(store, []string{"care", "betray", "care", "table"})
	require.NoError(t, err)
	require.Equal(t, 0.5, res.Scores[lexicon.MFD2CareVirtue])
	require.Equal(t, 0.25, res.Scores[lexicon.MFD2LoyaltyVice])
	require.Equal(t, 3.0, res.MoralRatio)
	require.Len(t, res.Scores.Map(), lexicon.MFD2Size)

	_, err = ScoreMFD2(store, nil)
	require.True(t, errors.Is(err, types.ErrEmptyDocument))
}

func TestNewScorer(t *testing.T) {
	store := testStore(t)
	for _, dict := range []types.Dictionary{types.DictionaryEMFD, types.DictionaryMFD, types.DictionaryMFD2} {
		scorer, err := NewScorer(store, dict)
		require.NoError(t, err)
		row, err := scorer(tokensOf(3, "care"))
		require.NoError(t, err)
		require.Len(t, row.Values(), len(row.Columns()), dict)
	}

	_, err := NewScorer(store, "liwc")
	require.True(t, errors.Is(err, types.ErrUnknownDictionary))
	_, err = Columns("liwc")
	require.True(t, errors.Is(err, types.ErrUnknownDictionary))
}

func TestEMFDRowVariance(t *testing.T) {
	res := EMFDResult{Scores: lexicon.EMFDScores{1, 2, 3, 4, 5, 0, 0, 0, 0, 1}}
	row := NewEMFDRow(res)
	require.InDelta(t, 2.5, row.FVar, 1e-12)
	require.InDelta(t, 0.2, row.SentVar, 1e-12)

	cols, err := Columns(types.DictionaryEMFD)
	require.NoError(t, err)
	require.Equal(t, cols, row.Columns())
	require.Equal(t, []string{MoralRatioColumn, FVarColumn, SentVarColumn}, cols[10:])
	require.Len(t, row.Values(), 13)
}

func TestVarianceDegenerate(t *testing.T) {
	require.True(t, math.IsNaN(Variance([]float64{1})))
}

func TestNaNRow(t *testing.T) {
	row := NaNRow{"a", "b"}
	for _, v := range row.Values() {
		require.True(t, math.IsNaN(v))
	}
}

func TestTokenFilter(t *testing.T) {
	store := testStore(t)
	filter := NewTokenFilter(store)

	doc := &types.Document{}
	add := func(text string, mark func(*types.Token)) {
		tok := types.NewToken(len(doc.Tokens), text)
		if mark != nil {
			mark(tok)
		}
		doc.Tokens = append(doc.Tokens, tok)
	}
	add("The", nil)
	add("Soldiers", nil)
	add(",", func(tok *types.Token) { tok.IsPunct = true })
	add("42", func(tok *types.Token) { tok.IsDigit = true })
	add("\"", func(tok *types.Token) { tok.IsQuote = true })
	add("ten", func(tok *types.Token) { tok.LikeNum = true })
	add("\n", func(tok *types.Token) { tok.IsSpace = true })
	add("KILL", nil)
	add("and", nil)

	require.Equal(t, []string{"soldiers", "kill"}, filter(doc))
	require.Equal(t, filter(doc), filter(doc))
	require.Empty(t, filter(&types.Document{}))
}
