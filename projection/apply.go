package projection

// AggregatedDelta is the per-key sum of a batch of deltas.
// Title and Authors carry the denormalized seed values for rows that do not
// exist yet, taken from the first delta of the group that supplies them.
type AggregatedDelta struct {
	Key            Key
	Title          string
	Authors        string
	AvailableDelta int
	BorrowedDelta  int
}

// AggregateBatch groups a delta batch by (isbn, publication date) and sums the
// available and borrowed deltas within each group. Output order follows the
// first occurrence of each key in the batch.
//
// Summation is commutative and associative, so applying a batch in any
// grouping or order yields the same final counters, which is what makes
// at-least-once redelivery safe when the persist step is transactional.
func AggregateBatch(deltas []Delta) []AggregatedDelta {
	if len(deltas) == 0 {
		return nil
	}

	aggregated := make([]AggregatedDelta, 0, len(deltas))
	at := make(map[Key]int)

	for _, delta := range deltas {
		key := Key{ISBN: delta.ISBN, PublicationDate: delta.PublicationDate}

		idx, seen := at[key]
		if !seen {
			at[key] = len(aggregated)
			aggregated = append(aggregated, AggregatedDelta{Key: key})
			idx = at[key]
		}

		entry := &aggregated[idx]
		entry.AvailableDelta += delta.AvailableDelta
		entry.BorrowedDelta += delta.BorrowedDelta

		if entry.Title == "" {
			entry.Title = delta.Title
		}
		if entry.Authors == "" {
			entry.Authors = delta.Authors
		}
	}

	return aggregated
}

// ApplyAggregated folds an aggregated delta into an existing statistics row.
// When no row exists yet, pass the zero value: the result is a new row seeded
// with the aggregated deltas and the carried denormalized title and authors.
func ApplyAggregated(current BookStatistics, agg AggregatedDelta) BookStatistics {
	updated := current
	updated.ISBN = agg.Key.ISBN
	updated.PublicationDate = agg.Key.PublicationDate
	updated.AvailableCount += agg.AvailableDelta
	updated.BorrowedCount += agg.BorrowedDelta

	if updated.Title == "" {
		updated.Title = agg.Title
	}
	if updated.Authors == "" {
		updated.Authors = agg.Authors
	}

	return updated
}
