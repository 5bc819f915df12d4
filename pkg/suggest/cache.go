package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-formwidgets/pkg/choice"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

// CachedSource serves repeated queries from redis. Cache failures are logged
// and the wrapped source answers instead.
type CachedSource struct {
	source choice.Fetcher
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	fold   bool
	logger *slog.Logger
}

var _ choice.Fetcher = (*CachedSource)(nil)

// CacheOption configures a CachedSource.
type CacheOption func(*CachedSource)

// WithTTL sets the expiry of cached entries. Defaults to five minutes.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedSource) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces the redis keys.
func WithKeyPrefix(prefix string) CacheOption {
	return func(c *CachedSource) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			c.prefix = prefix
		}
	}
}

// WithCaseInsensitiveKeys folds case and surrounding space out of cache keys,
// so "Os" and " os " share an entry. Only use it in front of sources that
// ignore case themselves.
func WithCaseInsensitiveKeys() CacheOption {
	return func(c *CachedSource) {
		c.fold = true
	}
}

// WithCacheLogger injects a structured logger.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedSource) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCachedSource wraps source with a redis cache.
func NewCachedSource(source choice.Fetcher, client redis.UniversalClient, opts ...CacheOption) (*CachedSource, error) {
	if source == nil {
		return nil, errors.New("suggest: cached source requires a source")
	}
	if client == nil {
		return nil, errors.New("suggest: cached source requires a redis client")
	}
	c := &CachedSource{
		source: source,
		client: client,
		ttl:    5 * time.Minute,
		prefix: "formwidgets:suggest",
		logger: discardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Key returns the redis key used for kind and query. The query is kept
// verbatim unless WithCaseInsensitiveKeys is set.
func (c *CachedSource) Key(kind, query string) string {
	if c.fold {
		query = strings.ToLower(strings.TrimSpace(query))
	}
	return c.prefix + ":" + kind + ":" + query
}

// Fetch implements choice.Fetcher.
func (c *CachedSource) Fetch(ctx context.Context, kind, query string) ([]option.Option, error) {
	key := c.Key(kind, query)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []option.Option
		decodeErr := json.Unmarshal(raw, &cached)
		if decodeErr == nil {
			c.logger.Debug("suggest: cache hit", "kind", kind, "key", key)
			return cached, nil
		}
		c.logger.Warn("suggest: discard corrupt cache entry", "key", key, "error", decodeErr)
	case errors.Is(err, redis.Nil):
	default:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("suggest: cache read failed", "key", key, "error", err)
	}

	options, err := c.source.Fetch(ctx, kind, query)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(options)
	if err != nil {
		c.logger.Warn("suggest: encode cache entry", "key", key, "error", err)
		return options, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("suggest: cache write failed", "key", key, "error", err)
	}
	return options, nil
}
