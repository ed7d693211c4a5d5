package pipeline

import (
	"context"
	"emfdscore.com/emfd/annotator"
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/metrics"
	"emfdscore.com/emfd/pat"
	"emfdscore.com/emfd/types"
	"emfdscore.com/emfd/utils"
	"encoding/json"
	"fmt"
	"sync"
)

type MoralParams struct {
	Store          *lexicon.Store
	Configurations []types.Configuration
	// BagOfWords annotates for word count configurations, Syntax for role
	// extraction. Syntax may be nil when no configuration extracts roles.
	BagOfWords annotator.Annotator
	Syntax     annotator.Annotator
}

// NewMoralPipeline builds the request pipeline over every configuration. Each
// request text is annotated at most once per annotator and the resulting
// document is shared by the configurations using it.
func NewMoralPipeline(params MoralParams) (Pipeline, error) {
	emfdLogger := logger.NewLogger("Moral pipeline")
	errLogger := emfdLogger.With().Caller().Logger()
	emfdLogger.Info().
		Interface("configurations", params.Configurations).
		Msg("Starting moral pipeline (see configurations in 'configurations' field)")

	scorers := make(map[string]DocumentScorer)
	configs := make([]types.Configuration, 0, len(params.Configurations))
	needSyntax := false
	for _, cfg := range params.Configurations {
		if err := cfg.Validate(); err != nil {
			errLogger.Err(err).Str("config_name", cfg.Name).Msg("Invalid configuration")
			return nil, err
		}
		configs = append(configs, cfg)
		if cfg.Mode == types.ModePAT {
			needSyntax = true
			continue
		}
		scorer, err := NewScorer(params.Store, cfg.Dictionary)
		if err != nil {
			errLogger.Err(err).Str("config_name", cfg.Name).Msg("Failed to create scorer")
			return nil, err
		}
		scorers[cfg.Name] = scorer
	}
	if needSyntax && params.Syntax == nil {
		return nil, fmt.Errorf("role extraction configured without a syntax annotator")
	}
	if len(scorers) > 0 && params.BagOfWords == nil {
		return nil, fmt.Errorf("word count scoring configured without an annotator")
	}
	extractor := pat.NewExtractor(params.Store)

	return func(request Request) <-chan string {
		responseChan := make(chan string, 1)
		pplnLog := emfdLogger.With().Str("tid", request.Tid).Logger()
		pplnLog.Info().Msg("Started moral pipeline")

		go func() {
			defer close(responseChan)
			ctx := context.Background()
			bow := lazyDocument(ctx, params.BagOfWords, request.Text)
			syntax := lazyDocument(ctx, params.Syntax, request.Text)

			resultChannel := make(chan Result, len(configs))
			var wg sync.WaitGroup
			for _, cfg := range configs {
				wg.Add(1)
				go func(cfg types.Configuration) {
					defer wg.Done()
					var data interface{}
					err := func() (err error) {
						defer utils.RecoverWithError(&err)
						if cfg.Mode == types.ModePAT {
							doc, err := syntax()
							if err != nil {
								return err
							}
							rows := extractor.Process(doc)
							pat.SortRows(rows)
							metrics.EntitiesExtracted.Add(float64(len(rows)))
							data = EntityRowMaps(rows)
							return nil
						}
						doc, err := bow()
						if err != nil {
							return err
						}
						row, err := scorers[cfg.Name](doc)
						if err != nil {
							return err
						}
						data = RowMap(row)
						return nil
					}()
					if err != nil {
						pplnLog.Warn().Err(err).Str("config_name", cfg.Name).Msg("Configuration produced no scores")
						metrics.DocumentsFailed.WithLabelValues(failureReason(err)).Inc()
						data = errorData(err)
					} else {
						metrics.DocumentsScored.WithLabelValues(string(cfg.Dictionary), string(cfg.Mode)).Inc()
					}
					resultChannel <- Result{ConfigName: cfg.Name, Data: data}
				}(cfg)
			}
			wg.Wait()
			close(resultChannel)

			response := make(map[string]interface{}, len(configs))
			for res := range resultChannel {
				pplnLog.Info().Str("config_name", res.ConfigName).Msg("Finished pipeline for configuration")
				response[res.ConfigName] = res.Data
			}
			buf, err := json.Marshal(response)
			if err != nil {
				errLogger.Err(err).Str("tid", request.Tid).Msg("Failed to marshal response")
				return
			}
			pplnLog.Info().Msg("Finished moral pipeline")
			responseChan <- string(buf)
		}()

		return responseChan
	}, nil
}

// lazyDocument annotates text on first call and hands the same document to
// every caller.
func lazyDocument(ctx context.Context, ann annotator.Annotator, text string) func() (*types.Document, error) {
	var once sync.Once
	var doc *types.Document
	var err error
	return func() (*types.Document, error) {
		once.Do(func() {
			if ann == nil {
				err = fmt.Errorf("no annotator configured")
				return
			}
			doc, err = ann.Annotate(ctx, text)
		})
		return doc, err
	}
}
