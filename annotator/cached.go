package annotator

import (
	"context"
	"emfdscore.com/emfd/logger"
	"emfdscore.com/emfd/types"
	"emfdscore.com/emfd/utils"
	"encoding/json"
	"fmt"
	"github.com/rs/zerolog"
	"time"
)

// Cache is the key-value store behind Cached. redis.Client implements it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cached stores annotated documents keyed by the text and the stages the
// wrapped annotator skips. Cache errors fall through to the wrapped annotator.
type Cached struct {
	next    Annotator
	cache   Cache
	ttl     time.Duration
	disable []string
	log     zerolog.Logger
}

func NewCached(next Annotator, cache Cache, ttl time.Duration, disable ...string) *Cached {
	return &Cached{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		disable: disable,
		log:     logger.NewLogger("Annotation cache"),
	}
}

func (c *Cached) key(text string) string {
	return fmt.Sprintf("annotation:%016x", utils.HashStrings(append([]string{text}, c.disable...)...))
}

func (c *Cached) Annotate(ctx context.Context, text string) (*types.Document, error) {
	key := c.key(text)
	if raw, err := c.cache.Get(ctx, key); err == nil {
		var doc types.Document
		if err := json.Unmarshal(raw, &doc); err == nil {
			c.log.Debug().Str("key", key).Msg("Cache hit")
			return &doc, nil
		}
		c.log.Warn().Str("key", key).Msg("Dropping undecodable cache entry")
	}

	doc, err := c.next.Annotate(ctx, text)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return doc, nil
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("Failed to store annotation")
	}
	return doc, nil
}
