// Package rediscache caches book-statistics read-model rows in Redis.
//
// The cache is an optimization, never authoritative: every miss and every
// Redis failure falls through to Postgres, and the projector invalidates
// touched keys after each committed batch.
package rediscache

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/projection"
	"github.com/bookwyrm/lending-core-go/shell/observability"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const keyPrefix = "bookstats:"

// cacheEntry is the serialized form of one statistics row.
type cacheEntry struct {
	ISBN            string `json:"isbn"`
	PublicationDate string `json:"publication_date"`
	Title           string `json:"title"`
	Authors         string `json:"authors"`
	AvailableCount  int    `json:"available_count"`
	BorrowedCount   int    `json:"borrowed_count"`
}

// StatisticsCache is a read-through TTL cache for BookStatistics rows.
type StatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger observability.ContextualLogger
}

// Option configures a StatisticsCache.
type Option func(*StatisticsCache)

// WithLogger sets the logger for degraded-mode warnings.
func WithLogger(logger observability.ContextualLogger) Option {
	return func(c *StatisticsCache) {
		c.logger = logger
	}
}

// New creates a statistics cache over the given Redis client.
func New(client *redis.Client, ttl time.Duration, opts ...Option) *StatisticsCache {
	cache := &StatisticsCache{client: client, ttl: ttl}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get returns the cached row for the key, reporting ok == false on a miss or
// any Redis failure.
func (c *StatisticsCache) Get(ctx context.Context, key projection.Key) (projection.BookStatistics, bool) {
	raw, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.warn(ctx, "statistics cache read failed", err)
		}
		return projection.BookStatistics{}, false
	}

	var entry cacheEntry
	if err = json.Unmarshal(raw, &entry); err != nil {
		c.warn(ctx, "statistics cache entry corrupt", err)
		return projection.BookStatistics{}, false
	}

	date, err := time.Parse("2006-01-02", entry.PublicationDate)
	if err != nil {
		c.warn(ctx, "statistics cache entry corrupt", err)
		return projection.BookStatistics{}, false
	}

	return projection.BookStatistics{
		ISBN:            entry.ISBN,
		PublicationDate: core.PublicationDateOf(date),
		Title:           entry.Title,
		Authors:         entry.Authors,
		AvailableCount:  entry.AvailableCount,
		BorrowedCount:   entry.BorrowedCount,
	}, true
}

// Set stores a row with the configured TTL. Failures only degrade the cache.
func (c *StatisticsCache) Set(ctx context.Context, stats projection.BookStatistics) {
	encoded, err := json.Marshal(cacheEntry{
		ISBN:            stats.ISBN,
		PublicationDate: stats.PublicationDate.String(),
		Title:           stats.Title,
		Authors:         stats.Authors,
		AvailableCount:  stats.AvailableCount,
		BorrowedCount:   stats.BorrowedCount,
	})
	if err != nil {
		c.warn(ctx, "statistics cache encode failed", err)
		return
	}

	if err = c.client.Set(ctx, cacheKey(stats.StatisticsKey()), encoded, c.ttl).Err(); err != nil {
		c.warn(ctx, "statistics cache write failed", err)
	}
}

// Invalidate drops the cached rows for the given keys. The projector calls it
// after every committed batch.
func (c *StatisticsCache) Invalidate(ctx context.Context, keys ...projection.Key) {
	if len(keys) == 0 {
		return
	}

	cacheKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		cacheKeys = append(cacheKeys, cacheKey(key))
	}

	if err := c.client.Del(ctx, cacheKeys...).Err(); err != nil {
		c.warn(ctx, "statistics cache invalidation failed", err)
	}
}

func (c *StatisticsCache) warn(ctx context.Context, msg string, err error) {
	if c.logger != nil {
		c.logger.WarnContext(ctx, msg, "error", err.Error())
	}
}

func cacheKey(key projection.Key) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, key.ISBN, key.PublicationDate)
}

// Ensure StatisticsCache satisfies the projector's invalidation contract.
var _ projection.CacheInvalidator = (*StatisticsCache)(nil)
