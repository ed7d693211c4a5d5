package pipeline

import (
	"context"
	"emfdscore.com/emfd/annotator"
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/metrics"
	"emfdscore.com/emfd/scoring"
	"emfdscore.com/emfd/types"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DocumentScorer filters the tokens of an annotated document and scores them
// with one dictionary.
type DocumentScorer func(doc *types.Document) (scoring.Row, error)

// NewScorer composes the token filter with the scorer of dict. e-MFD rows are
// extended with the probability and sentiment variances.
func NewScorer(store *lexicon.Store, dict types.Dictionary) (DocumentScorer, error) {
	score, err := scoring.NewScorer(store, dict)
	if err != nil {
		return nil, err
	}
	filter := scoring.NewTokenFilter(store)
	return func(doc *types.Document) (scoring.Row, error) {
		row, err := score(filter(doc))
		if err != nil {
			return nil, err
		}
		if r, ok := row.(scoring.EMFDResult); ok {
			return scoring.NewEMFDRow(r), nil
		}
		return row, nil
	}, nil
}

func ScoreDocument(ctx context.Context, ann annotator.Annotator, scorer DocumentScorer, text string) (scoring.Row, error) {
	doc, err := ann.Annotate(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	return scorer(doc)
}

type BatchParams struct {
	Store      *lexicon.Store
	Annotator  annotator.Annotator
	Dictionary types.Dictionary
	// Workers bounds the documents in flight, 1 when unset.
	Workers int
	// NumDocs is the expected document count. It sizes progress reporting only.
	NumDocs       int
	ProgressEvery int
}

func (params BatchParams) workers() int {
	if params.Workers < 1 {
		return 1
	}
	return params.Workers
}

// ScoreResult is the row of the document at Index. A document that could not
// be scored keeps its position with NaN values and Err set.
type ScoreResult struct {
	Index int
	Row   scoring.Row
	Err   error
}

// ScoreDocs scores every document with params.Dictionary and returns one
// result per document in input order. Only configuration errors are returned,
// before any document is read.
func ScoreDocs(ctx context.Context, params BatchParams, docs []string) ([]ScoreResult, error) {
	scorer, err := NewScorer(params.Store, params.Dictionary)
	if err != nil {
		return nil, err
	}
	columns, err := scoring.Columns(params.Dictionary)
	if err != nil {
		return nil, err
	}
	batchLogger := logger.NewLogger("Score batch").With().
		Str("dictionary", string(params.Dictionary)).
		Int("num_docs", params.NumDocs).Logger()
	batchLogger.Info().Int("documents", len(docs)).Int("workers", params.workers()).Msg("Started scoring")
	prog := newProgress(batchLogger, params.NumDocs, params.ProgressEvery)

	results := make([]ScoreResult, len(docs))
	forEach(ctx, params.workers(), len(docs), func(i int) {
		started := time.Now()
		row, err := ScoreDocument(ctx, params.Annotator, scorer, docs[i])
		metrics.ScoreDuration.WithLabelValues(string(types.ModeBoW)).Observe(time.Since(started).Seconds())
		if err != nil {
			batchLogger.Warn().Err(err).Int("document", i).Msg("Document not scored")
			metrics.DocumentsFailed.WithLabelValues(failureReason(err)).Inc()
			results[i] = ScoreResult{Index: i, Row: scoring.NaNRow(columns), Err: err}
		} else {
			metrics.DocumentsScored.WithLabelValues(string(params.Dictionary), string(types.ModeBoW)).Inc()
			results[i] = ScoreResult{Index: i, Row: row}
		}
		prog.step()
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	batchLogger.Info().Int("processed", prog.processed()).Msg("Finished scoring")
	return results, nil
}

func failureReason(err error) string {
	if errors.Is(err, types.ErrEmptyDocument) {
		return metrics.ReasonEmpty
	}
	return metrics.ReasonAnnotate
}

// forEach calls fn for every index in [0, n) on at most workers goroutines and
// stops handing out indexes once ctx is done.
func forEach(ctx context.Context, workers int, n int, fn func(i int)) {
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				fn(i)
			}
		}()
	}
	defer wg.Wait()
	defer close(indexes)
	for i := 0; i < n; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			return
		}
	}
}
