// Package projection maintains the denormalized book-statistics read model.
//
// Write-side transactions enqueue statistics deltas; the Projector consumes
// them asynchronously in batches (at-least-once) and folds the per-key sums
// into the read model. AggregateBatch and ApplyAggregated are pure so the
// batch math can be tested without a database.
package projection
