package bookstatistics

import (
	"context"

	"github.com/bookwyrm/lending-core-go/projection"
)

// StatisticsReader defines the interface needed by the QueryHandler to read
// the materialized statistics rows.
type StatisticsReader interface {
	GetStatistics(ctx context.Context, key projection.Key) (projection.BookStatistics, bool, error)
	ListStatistics(ctx context.Context) ([]projection.BookStatistics, error)
}

// StatisticsCache is an optional read-through cache in front of the reader.
// Implementations must treat every failure as a miss.
type StatisticsCache interface {
	Get(ctx context.Context, key projection.Key) (projection.BookStatistics, bool)
	Set(ctx context.Context, stats projection.BookStatistics)
}

// QueryHandler serves the book statistics read model.
// External wrappers handle all observability concerns.
type QueryHandler struct {
	reader StatisticsReader
	cache  StatisticsCache
}

// Option configures a QueryHandler.
type Option func(*QueryHandler)

// WithCache enables read-through caching of single-title lookups.
func WithCache(cache StatisticsCache) Option {
	return func(h *QueryHandler) {
		h.cache = cache
	}
}

// NewQueryHandler creates a new QueryHandler with optional configuration.
func NewQueryHandler(reader StatisticsReader, opts ...Option) QueryHandler {
	handler := QueryHandler{
		reader: reader,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle returns the statistics for one title. The read model is eventually
// consistent; a missing row is reported through Result.Found, not an error.
func (h QueryHandler) Handle(ctx context.Context, query Query) (Result, error) {
	key := query.Key()

	if h.cache != nil {
		if stats, ok := h.cache.Get(ctx, key); ok {
			return Result{Statistics: stats, Found: true}, nil
		}
	}

	stats, found, err := h.reader.GetStatistics(ctx, key)
	if err != nil {
		return Result{}, err
	}

	if found && h.cache != nil {
		h.cache.Set(ctx, stats)
	}

	return Result{Statistics: stats, Found: found}, nil
}

// HandleList returns the statistics of all known titles. List reads bypass
// the cache, they are served straight from the read model.
func (h QueryHandler) HandleList(ctx context.Context) (ListResult, error) {
	all, err := h.reader.ListStatistics(ctx)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{Statistics: all, Count: len(all)}, nil
}
