// Package api exposes the scorers and the moral pipeline over HTTP. Every
// endpoint takes the raw document text as the request body.
package api

import (
	"emfdscore.com/emfd/annotator"
	"emfdscore.com/emfd/lexicon"
	"emfdscore.com/emfd/metrics"
	"emfdscore.com/emfd/pat"
	"emfdscore.com/emfd/pipeline"
	"emfdscore.com/emfd/types"
	"encoding/json"
	"errors"
	"github.com/rs/zerolog"
	"io"
	"net/http"
)

const maxBodyBytes = 8 << 20

type Params struct {
	Store      *lexicon.Store
	Pipeline   pipeline.Pipeline
	BagOfWords annotator.Annotator
	// Syntax may be nil, /pat then answers 501.
	Syntax annotator.Annotator
}

type Handler struct {
	pipeline   pipeline.Pipeline
	bagOfWords annotator.Annotator
	syntax     annotator.Annotator
	scorers    map[types.Dictionary]pipeline.DocumentScorer
	extractor  *pat.Extractor
}

func NewHandler(params Params) (*Handler, error) {
	scorers := make(map[types.Dictionary]pipeline.DocumentScorer)
	for _, dict := range []types.Dictionary{types.DictionaryEMFD, types.DictionaryMFD, types.DictionaryMFD2} {
		scorer, err := pipeline.NewScorer(params.Store, dict)
		if err != nil {
			return nil, err
		}
		scorers[dict] = scorer
	}
	return &Handler{
		pipeline:   params.Pipeline,
		bagOfWords: params.BagOfWords,
		syntax:     params.Syntax,
		scorers:    scorers,
		extractor:  pat.NewExtractor(params.Store),
	}, nil
}

// ProcessData runs every loaded configuration on the body.
func (h *Handler) ProcessData(w http.ResponseWriter, r *http.Request) {
	tid := requestID(r)
	log := makeRequestLogger(r, tid)
	if !allowPost(w, r, &log) {
		return
	}
	text, ok := readText(w, r, &log)
	if !ok {
		return
	}
	log.Info().Msg("Starting pipeline for request from API")
	resp, ok := <-h.pipeline(pipeline.Request{Tid: tid, Text: text})
	if !ok {
		writeError(w, &log, http.StatusInternalServerError, errors.New("pipeline returned no response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(RequestIDHeader, tid)
	_, _ = io.WriteString(w, resp)
	log.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

// Score answers the bag-of-words row of the dictionary named by ?dict.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	tid := requestID(r)
	log := makeRequestLogger(r, tid)
	if !allowPost(w, r, &log) {
		return
	}
	dict, err := types.ParseDictionary(r.URL.Query().Get("dict"))
	if err != nil {
		writeError(w, &log, http.StatusBadRequest, err)
		return
	}
	text, ok := readText(w, r, &log)
	if !ok {
		return
	}
	row, err := pipeline.ScoreDocument(r.Context(), h.bagOfWords, h.scorers[dict], text)
	switch {
	case errors.Is(err, types.ErrEmptyDocument):
		metrics.DocumentsFailed.WithLabelValues(metrics.ReasonEmpty).Inc()
		writeError(w, &log, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		metrics.DocumentsFailed.WithLabelValues(metrics.ReasonAnnotate).Inc()
		writeError(w, &log, http.StatusBadGateway, err)
		return
	}
	metrics.DocumentsScored.WithLabelValues(string(dict), string(types.ModeBoW)).Inc()
	writeJSON(w, &log, tid, pipeline.RowMap(row))
}

// Pat answers the entity rows of the body, sorted by entity.
func (h *Handler) Pat(w http.ResponseWriter, r *http.Request) {
	tid := requestID(r)
	log := makeRequestLogger(r, tid)
	if !allowPost(w, r, &log) {
		return
	}
	if h.syntax == nil {
		writeError(w, &log, http.StatusNotImplemented, errors.New("no syntax annotator configured"))
		return
	}
	text, ok := readText(w, r, &log)
	if !ok {
		return
	}
	doc, err := h.syntax.Annotate(r.Context(), text)
	if err != nil {
		metrics.DocumentsFailed.WithLabelValues(metrics.ReasonAnnotate).Inc()
		writeError(w, &log, http.StatusBadGateway, err)
		return
	}
	rows := h.extractor.Process(doc)
	pat.SortRows(rows)
	metrics.DocumentsScored.WithLabelValues(string(types.DictionaryEMFD), string(types.ModePAT)).Inc()
	metrics.EntitiesExtracted.Add(float64(len(rows)))
	writeJSON(w, &log, tid, pipeline.EntityRowMaps(rows))
}

// allowPost answers 405 to anything but POST. Handlers call it before looking
// at the query or the body.
func allowPost(w http.ResponseWriter, r *http.Request, log *zerolog.Logger) bool {
	if r.Method == http.MethodPost {
		return true
	}
	log.Warn().Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
	w.Header().Set("Allow", http.MethodPost)
	http.Error(w, "", http.StatusMethodNotAllowed)
	return false
}

func readText(w http.ResponseWriter, r *http.Request, log *zerolog.Logger) (string, bool) {
	msg, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, log, http.StatusBadRequest, err)
		return "", false
	}
	return string(msg), true
}

func writeJSON(w http.ResponseWriter, log *zerolog.Logger, tid string, data interface{}) {
	buf, err := json.Marshal(data)
	if err != nil {
		writeError(w, log, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(RequestIDHeader, tid)
	_, _ = w.Write(buf)
	log.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

func writeError(w http.ResponseWriter, log *zerolog.Logger, status int, err error) {
	log.Warn().Err(err).Int("status", status).Msg("Request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
