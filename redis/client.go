// Package redis stores JSON documents shared with other services. Updates
// touch only the fields a Go type knows about: the rest of the stored document
// is carried over by a JSON merge patch.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/bsm/redislock"
	jsonpatch "github.com/evanphx/json-patch"
	"github.com/go-redis/redis/v8"
	"github.com/kelseyhightower/envconfig"
	"time"
)

type DB int
type ReleaseLock func() error

// ErrNotFound is returned for keys that hold no document.
var ErrNotFound = errors.New("redis: key not found")

type Client struct {
	client         redis.UniversalClient
	lockExpiration time.Duration
}

type Config struct {
	LockExpirationSeconds   int     `envconfig:"MDL_COMN_REDIS_LOCK_EXPIRATION" default:"3"`
	Host                    string  `envconfig:"MDL_COMN_REDIS_HOST" required:"true"`
	Port                    string  `envconfig:"MDL_COMN_REDIS_PORT" required:"true"`
	HASentinelPort          string  `envconfig:"MDL_COMN_REDIS_HA_SENTINEL_PORT" default:"26379"`
	HASentinelMasterName    string  `envconfig:"MDL_COMN_REDIS_HA_MASTER_NAME" default:"mymaster"`
	Password                string  `envconfig:"MDL_COMN_REDIS_AUTH_PASSWORD" default:"0"`
	AuthRequired            bool    `envconfig:"MDL_COMN_REDIS_AUTH_REQUIRED" default:"false"`
	HAMode                  bool    `envconfig:"MDL_COMN_REDIS_HA_MODE" default:"false"`
	HASentinelSocketTimeout float32 `envconfig:"MDL_COMN_REDIS_SOCKET_TIMEOUT" default:"0.5"`
}

func NewClient(db DB) (*Client, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return NewClientWithConfig(cfg, db), nil
}

func NewClientWithConfig(cfg Config, db DB) *Client {
	var client redis.UniversalClient
	if cfg.HAMode {
		client = newFailoverClient(cfg, db)
	} else {
		client = newClient(cfg, db)
	}
	return &Client{
		client:         client,
		lockExpiration: time.Duration(cfg.LockExpirationSeconds) * time.Second,
	}
}

func newFailoverClient(cfg Config, db DB) *redis.ClusterClient {
	timeout := time.Duration(float64(cfg.HASentinelSocketTimeout) * float64(time.Second))
	options := redis.FailoverOptions{
		SentinelAddrs: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.HASentinelPort)},
		MasterName:    cfg.HASentinelMasterName,
		ReadTimeout:   timeout,
		WriteTimeout:  timeout,
		MaxRetries:    6,
		DB:            int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewFailoverClusterClient(&options)
}

func newClient(cfg Config, db DB) *redis.Client {
	options := redis.Options{
		Addr:       fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		MaxRetries: 6,
		DB:         int(db),
	}
	if cfg.AuthRequired {
		options.Password = cfg.Password
	}
	return redis.NewClient(&options)
}

// Get returns the raw value of key, ErrNotFound when it is missing.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// GetDocument decodes the JSON document stored at key into doc.
func (c *Client) GetDocument(ctx context.Context, key string, doc interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, doc); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// UpdateDocument locks key and applies update to the document stored there.
func (c *Client) UpdateDocument(ctx context.Context, key string, doc interface{}, update func() error) (err error) {
	release, err := c.Lock(ctx, key)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := release(); err == nil {
			err = releaseErr
		}
	}()
	return c.ModifyDocument(ctx, key, doc, update)
}

// ModifyDocument is UpdateDocument for callers already holding the lock.
func (c *Client) ModifyDocument(ctx context.Context, key string, doc interface{}, update func() error) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	merged, err := MergeUpdate(raw, doc, update)
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	return c.Set(ctx, key, merged, 0)
}

// MergeUpdate decodes raw into doc, runs update and returns raw with the
// changes update made to doc merged in. Fields doc does not declare are kept.
func MergeUpdate(raw []byte, doc interface{}, update func() error) ([]byte, error) {
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, err
	}
	before, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := update(); err != nil {
		return nil, err
	}
	after, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return nil, err
	}
	return jsonpatch.MergePatch(raw, patch)
}

func (c *Client) Lock(ctx context.Context, key string) (ReleaseLock, error) {
	locker := redislock.New(c.client)
	retry := redislock.LimitRetry(redislock.LinearBackoff(time.Second), 20)
	lock, err := locker.Obtain(ctx, "lock:"+key, c.lockExpiration, &redislock.Options{RetryStrategy: retry})
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	return func() error {
		return lock.Release(ctx)
	}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
