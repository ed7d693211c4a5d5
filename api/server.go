package api

import (
	"context"
	"emfdscore.com/emfd/metrics"
	"errors"
	"github.com/rs/cors"
	"net/http"
	"time"
)

// NewRouter mounts the handler endpoints and the metrics endpoint behind CORS.
func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.ProcessData)
	mux.HandleFunc("/score", h.Score)
	mux.HandleFunc("/pat", h.Pat)
	mux.Handle("/metrics", metrics.Handler())
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(mux)
}

// Serve listens on addr until ctx is done, then drains open requests.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errChan := make(chan error, 1)
	go func() {
		defaultLogger.Info().Str("addr", addr).Msg("REST API listening")
		errChan <- server.ListenAndServe()
	}()
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
