package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/projection"
	"github.com/bookwyrm/lending-core-go/shell"
)

// DeltaQueue is the durable, batch-consumed statistics delta queue.
// Deltas are enqueued within the write-side transaction and consumed later by
// the projector; rows are never updated after enqueue, only marked processed.
type DeltaQueue struct {
	db DBAdapter
}

// Enqueue appends deltas to the queue within the current transaction.
func (q *DeltaQueue) Enqueue(ctx context.Context, deltas ...projection.Delta) error {
	if len(deltas) == 0 {
		return nil
	}

	records := make([]any, 0, len(deltas))
	for _, delta := range deltas {
		records = append(records, goqu.Record{
			"isbn":             delta.ISBN,
			"publication_date": delta.PublicationDate.String(),
			"title":            delta.Title,
			"authors":          delta.Authors,
			"available_delta":  delta.AvailableDelta,
			"borrowed_delta":   delta.BorrowedDelta,
			"processed":        false,
			"enqueued_at":      time.Now().UTC(),
		})
	}

	query, _, err := goqu.Dialect(dialectPostgres).
		Insert(deltasTable).
		Rows(records...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build enqueue query: %w", err)
	}

	if _, err = q.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("enqueue deltas: %w", err)
	}

	return nil
}

// FetchUnprocessedDeltas returns up to limit queued deltas in enqueue order.
func (q *DeltaQueue) FetchUnprocessedDeltas(ctx context.Context, limit int) ([]projection.QueuedDelta, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(deltasTable).
		Select("id", "isbn", "publication_date", "title", "authors", "available_delta", "borrowed_delta").
		Where(goqu.C("processed").IsFalse()).
		Order(goqu.C("id").Asc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build fetch query: %w", err)
	}

	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch unprocessed deltas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var queued []projection.QueuedDelta

	for rows.Next() {
		var (
			id              int64
			isbn            string
			publicationDate time.Time
			title           string
			authors         string
			availableDelta  int
			borrowedDelta   int
		)

		if err = rows.Scan(&id, &isbn, &publicationDate, &title, &authors, &availableDelta, &borrowedDelta); err != nil {
			return nil, fmt.Errorf("scan delta row: %w", err)
		}

		queued = append(queued, projection.QueuedDelta{
			ID: id,
			Delta: projection.Delta{
				ISBN:            isbn,
				PublicationDate: core.PublicationDateOf(publicationDate),
				Title:           title,
				Authors:         authors,
				AvailableDelta:  availableDelta,
				BorrowedDelta:   borrowedDelta,
			},
		})
	}

	return queued, nil
}

// Ensure DeltaQueue implements shell.DeltaQueue.
var _ shell.DeltaQueue = (*DeltaQueue)(nil)
