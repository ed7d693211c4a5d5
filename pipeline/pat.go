package pipeline

import (
	"context"
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/metrics"
	"emfdscore.com/emfd/pat"
	"emfdscore.com/emfd/types"
	"time"
)

// PatDocs extracts the entity rows of every document, concatenates them in
// document order and sorts the result by entity. Documents the annotator
// rejects contribute no rows.
func PatDocs(ctx context.Context, params BatchParams, docs []string) ([]pat.EntityRow, error) {
	extractor := pat.NewExtractor(params.Store)
	batchLogger := logger.NewLogger("PAT batch").With().Int("num_docs", params.NumDocs).Logger()
	batchLogger.Info().Int("documents", len(docs)).Int("workers", params.workers()).Msg("Started extraction")
	prog := newProgress(batchLogger, params.NumDocs, params.ProgressEvery)

	perDoc := make([][]pat.EntityRow, len(docs))
	forEach(ctx, params.workers(), len(docs), func(i int) {
		defer prog.step()
		started := time.Now()
		doc, err := params.Annotator.Annotate(ctx, docs[i])
		if err != nil {
			batchLogger.Warn().Err(err).Int("document", i).Msg("Document not annotated")
			metrics.DocumentsFailed.WithLabelValues(metrics.ReasonAnnotate).Inc()
			return
		}
		perDoc[i] = extractor.Process(doc)
		metrics.ScoreDuration.WithLabelValues(string(types.ModePAT)).Observe(time.Since(started).Seconds())
		metrics.DocumentsScored.WithLabelValues(string(types.DictionaryEMFD), string(types.ModePAT)).Inc()
		metrics.EntitiesExtracted.Add(float64(len(perDoc[i])))
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []pat.EntityRow
	for _, docRows := range perDoc {
		rows = append(rows, docRows...)
	}
	pat.SortRows(rows)
	batchLogger.Info().Int("processed", prog.processed()).Int("rows", len(rows)).Msg("Finished extraction")
	return rows, nil
}
