package projection

import (
	"context"
	"errors"
	"time"

	"github.com/bookwyrm/lending-core-go/shell/observability"
	"github.com/bookwyrm/lending-core-go/shell/retry"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 5 * time.Second

	// BatchDurationMetric tracks projector batch execution duration.
	BatchDurationMetric = "projector_batch_duration_seconds"

	// BatchesMetric tracks total projector batch runs by status.
	BatchesMetric = "projector_batches_total"

	// DeltasProcessedMetric tracks how many deltas each batch folded in.
	DeltasProcessedMetric = "projector_deltas_processed_total"

	logMsgBatchApplied = "statistics batch applied"
	logMsgBatchFailed  = "statistics batch failed"
	logMsgStopped      = "statistics projector stopped"

	labelStatus = "status"
)

// ErrNilStore is returned when the projector is constructed without a store.
var ErrNilStore = errors.New("statistics store must not be nil")

// StatisticsStore is the durable side of the projector: fetching queued
// deltas and applying the aggregated result.
//
// ApplyAndMarkProcessed must perform the read-model upserts and the marking
// of the consumed deltas inside one transaction. That single commit point is
// what makes at-least-once redelivery idempotent at the level of final
// counter values.
type StatisticsStore interface {
	FetchUnprocessedDeltas(ctx context.Context, limit int) ([]QueuedDelta, error)
	ApplyAndMarkProcessed(ctx context.Context, deltaIDs []int64, updates []AggregatedDelta) error
}

// CacheInvalidator drops cached read-model entries after a batch commit.
// A nil invalidator disables invalidation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...Key)
}

// Projector is the asynchronous consumer of the statistics delta queue.
// It folds accumulated deltas into the read model in batches, decoupled in
// time from the write path, and is the read model's only writer.
type Projector struct {
	store            StatisticsStore
	cache            CacheInvalidator
	batchSize        int
	interval         time.Duration
	retryOptions     []retry.Option
	contextualLogger observability.ContextualLogger
	metricsCollector observability.MetricsCollector
}

// ProjectorOption configures a Projector.
type ProjectorOption func(*Projector)

// WithBatchSize sets how many queued deltas one batch run consumes at most.
func WithBatchSize(n int) ProjectorOption {
	return func(p *Projector) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithInterval sets the polling interval of the Run loop.
func WithInterval(d time.Duration) ProjectorOption {
	return func(p *Projector) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithRetryOptions sets a custom retry configuration for batch persistence.
func WithRetryOptions(opts ...retry.Option) ProjectorOption {
	return func(p *Projector) {
		p.retryOptions = opts
	}
}

// WithCacheInvalidator sets the read-model cache to invalidate after commits.
func WithCacheInvalidator(cache CacheInvalidator) ProjectorOption {
	return func(p *Projector) {
		p.cache = cache
	}
}

// WithContextualLogger sets the logger for batch outcomes.
func WithContextualLogger(logger observability.ContextualLogger) ProjectorOption {
	return func(p *Projector) {
		p.contextualLogger = logger
	}
}

// WithMetrics sets the metrics collector for batch instrumentation.
func WithMetrics(collector observability.MetricsCollector) ProjectorOption {
	return func(p *Projector) {
		p.metricsCollector = collector
	}
}

// NewProjector creates a statistics projector over the given store.
func NewProjector(store StatisticsStore, opts ...ProjectorOption) (*Projector, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	projector := &Projector{
		store:     store,
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
	}

	for _, opt := range opts {
		opt(projector)
	}

	return projector, nil
}

// RunBatch consumes one batch of queued deltas: fetch, aggregate, apply,
// mark processed. It returns the number of deltas consumed.
//
// The batch is all-or-nothing: when ApplyAndMarkProcessed fails, no delta is
// marked processed and the whole batch is retried on the next run. The
// aggregation is commutative and associative, so re-applying the same batch
// after a retry converges to the same counters.
func (p *Projector) RunBatch(ctx context.Context) (int, error) {
	started := time.Now()

	queued, err := p.store.FetchUnprocessedDeltas(ctx, p.batchSize)
	if err != nil {
		p.recordBatch(ctx, "fetch_error", started, 0)
		return 0, err
	}

	if len(queued) == 0 {
		return 0, nil
	}

	deltaIDs := make([]int64, 0, len(queued))
	deltas := make([]Delta, 0, len(queued))

	for _, q := range queued {
		deltaIDs = append(deltaIDs, q.ID)
		deltas = append(deltas, q.Delta)
	}

	aggregated := AggregateBatch(deltas)

	// Persistence failures are retryable; the abandon point is before the
	// transactional commit inside ApplyAndMarkProcessed.
	_, err = retry.WithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return p.store.ApplyAndMarkProcessed(retryCtx, deltaIDs, aggregated)
	}, p.effectiveRetryOptions()...)

	if err != nil {
		p.logBatchFailed(ctx, err, len(queued))
		p.recordBatch(ctx, "apply_error", started, 0)
		return 0, err
	}

	if p.cache != nil {
		keys := make([]Key, 0, len(aggregated))
		for _, agg := range aggregated {
			keys = append(keys, agg.Key)
		}
		p.cache.Invalidate(ctx, keys...)
	}

	p.logBatchApplied(ctx, len(queued), len(aggregated))
	p.recordBatch(ctx, "success", started, len(queued))

	return len(queued), nil
}

// Run polls the delta queue until the context is canceled.
// A failed batch is logged and retried on the next tick; the loop never stops
// on batch errors.
func (p *Projector) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if p.contextualLogger != nil {
				p.contextualLogger.InfoContext(ctx, logMsgStopped)
			}
			return ctx.Err()

		case <-ticker.C:
			// Drain until the queue is empty so bursts do not lag behind the tick.
			for {
				processed, err := p.RunBatch(ctx)
				if err != nil || processed == 0 {
					break
				}
			}
		}
	}
}

// effectiveRetryOptions returns the configured retry options, defaulting to
// retrying every persistence error.
func (p *Projector) effectiveRetryOptions() []retry.Option {
	if p.retryOptions != nil {
		return p.retryOptions
	}

	return []retry.Option{
		retry.WithRetryOn(func(error) bool { return true }),
	}
}

func (p *Projector) logBatchApplied(ctx context.Context, deltaCount int, rowCount int) {
	if p.contextualLogger != nil {
		p.contextualLogger.InfoContext(ctx, logMsgBatchApplied,
			"delta_count", deltaCount,
			"row_count", rowCount,
		)
	}
}

func (p *Projector) logBatchFailed(ctx context.Context, err error, deltaCount int) {
	if p.contextualLogger != nil {
		p.contextualLogger.ErrorContext(ctx, logMsgBatchFailed,
			"error", err.Error(),
			"delta_count", deltaCount,
		)
	}
}

func (p *Projector) recordBatch(ctx context.Context, status string, started time.Time, deltaCount int) {
	if p.metricsCollector == nil {
		return
	}

	labels := map[string]string{labelStatus: status}

	if contextual, ok := p.metricsCollector.(observability.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, BatchDurationMetric, time.Since(started), labels)
		contextual.IncrementCounterContext(ctx, BatchesMetric, labels)
		if deltaCount > 0 {
			contextual.RecordValueContext(ctx, DeltasProcessedMetric, float64(deltaCount), labels)
		}
		return
	}

	p.metricsCollector.RecordDuration(BatchDurationMetric, time.Since(started), labels)
	p.metricsCollector.IncrementCounter(BatchesMetric, labels)
	if deltaCount > 0 {
		p.metricsCollector.RecordValue(DeltasProcessedMetric, float64(deltaCount), labels)
	}
}
