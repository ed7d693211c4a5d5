package pipeline

import (
	"github.com/rs/zerolog"
	"sync"
)

const defaultProgressEvery = 100

// progress logs how many documents a batch has finished. It never touches
// results.
type progress struct {
	mu       sync.Mutex
	log      zerolog.Logger
	expected int
	every    int
	done     int
}

func newProgress(log zerolog.Logger, expected int, every int) *progress {
	if every <= 0 {
		every = defaultProgressEvery
	}
	return &progress{log: log, expected: expected, every: every}
}

func (p *progress) step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.done%p.every != 0 && p.done != p.expected {
		return
	}
	event := p.log.Info().Int("processed", p.done)
	if p.expected > 0 {
		event = event.Int("expected", p.expected).
			Float64("percent", 100*float64(p.done)/float64(p.expected))
	}
	event.Msg("Batch progress")
}

func (p *progress) processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
