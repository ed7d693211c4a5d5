package annotator

import (
	"bytes"
	"context"
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/types"
	"encoding/json"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"io"
	"net/http"
	"time"
)

type ServiceConfig struct {
	URL            string `envconfig:"EMFD_ANNOTATOR_URL" required:"true"`
	TimeoutSeconds int    `envconfig:"EMFD_ANNOTATOR_TIMEOUT" default:"60"`
}

type serviceRequest struct {
	Text    string   `json:"text"`
	Disable []string `json:"disable,omitempty"`
}

// Service calls an external annotation model over HTTP. The model receives
// {"text", "disable"} and answers with a serialized types.Document.
type Service struct {
	url     string
	disable []string
	client  *http.Client
	log     zerolog.Logger
}

// NewService reads ServiceConfig from the environment.
func NewService(disable ...string) (*Service, error) {
	var cfg ServiceConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return NewServiceWithConfig(cfg, disable...), nil
}

func NewServiceWithConfig(cfg ServiceConfig, disable ...string) *Service {
	return &Service{
		url:     cfg.URL,
		disable: disable,
		client:  &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:     logger.NewLogger("Annotation service").With().Str("url", cfg.URL).Logger(),
	}
}

// Disabled returns the stages the service is asked to skip.
func (s *Service) Disabled() []string {
	return s.disable
}

func (s *Service) Annotate(ctx context.Context, text string) (*types.Document, error) {
	errLogger := s.log.With().Caller().Logger()
	body, err := json.Marshal(serviceRequest{Text: text, Disable: s.disable})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		errLogger.Err(err).Msg("Annotation request failed")
		return nil, fmt.Errorf("annotate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		errLogger.Error().Int("status", resp.StatusCode).Str("body", string(msg)).Msg("Annotation service returned error")
		return nil, fmt.Errorf("annotate: service returned %d", resp.StatusCode)
	}

	var doc types.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		errLogger.Err(err).Msg("Failed to decode annotated document")
		return nil, fmt.Errorf("annotate: decode response: %w", err)
	}
	normalize(&doc)
	s.log.Debug().Int("tokens", doc.Len()).Int("entities", len(doc.Entities)).Msg("Annotated text")
	return &doc, nil
}
