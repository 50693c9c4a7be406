package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/projection"
)

// StatisticsStore implements the projector's durable side and the read access
// used by the statistics query handler.
//
// ApplyAndMarkProcessed runs the read-model upserts and the delta marking in
// one transaction; that single commit point keeps at-least-once redelivery
// idempotent.
type StatisticsStore struct {
	db TxAdapter
}

// NewStatisticsStore creates a statistics store over a transactional adapter.
func NewStatisticsStore(db TxAdapter) *StatisticsStore {
	return &StatisticsStore{db: db}
}

// FetchUnprocessedDeltas returns up to limit queued deltas in enqueue order.
func (s *StatisticsStore) FetchUnprocessedDeltas(ctx context.Context, limit int) ([]projection.QueuedDelta, error) {
	queue := DeltaQueue{db: s.db}

	return queue.FetchUnprocessedDeltas(ctx, limit)
}

// ApplyAndMarkProcessed upserts the aggregated per-key sums into the read
// model and marks the consumed deltas processed, all inside one transaction.
func (s *StatisticsStore) ApplyAndMarkProcessed(ctx context.Context, deltaIDs []int64, updates []projection.AggregatedDelta) error {
	if len(deltaIDs) == 0 {
		return nil
	}

	return s.db.WithinTx(ctx, func(txCtx context.Context, tx DBAdapter) error {
		for _, update := range updates {
			if err := upsertStatisticsRow(txCtx, tx, update); err != nil {
				return err
			}
		}

		return markDeltasProcessed(txCtx, tx, deltaIDs)
	})
}

func upsertStatisticsRow(ctx context.Context, tx DBAdapter, update projection.AggregatedDelta) error {
	query, _, err := goqu.Dialect(dialectPostgres).
		Insert(statisticsTable).
		Rows(goqu.Record{
			"isbn":             update.Key.ISBN,
			"publication_date": update.Key.PublicationDate.String(),
			"title":            update.Title,
			"authors":          update.Authors,
			"available_count":  update.AvailableDelta,
			"borrowed_count":   update.BorrowedDelta,
		}).
		OnConflict(goqu.DoUpdate(
			"isbn, publication_date",
			goqu.Record{
				"available_count": goqu.L("book_statistics.available_count + EXCLUDED.available_count"),
				"borrowed_count":  goqu.L("book_statistics.borrowed_count + EXCLUDED.borrowed_count"),
				// Denormalized title/authors stick once set; later deltas carry empty strings.
				"title":   goqu.L("COALESCE(NULLIF(book_statistics.title, ''), EXCLUDED.title)"),
				"authors": goqu.L("COALESCE(NULLIF(book_statistics.authors, ''), EXCLUDED.authors)"),
			},
		)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert query: %w", err)
	}

	if _, err = tx.Exec(ctx, query); err != nil {
		return fmt.Errorf("upsert statistics row: %w", err)
	}

	return nil
}

func markDeltasProcessed(ctx context.Context, tx DBAdapter, deltaIDs []int64) error {
	query, _, err := goqu.Dialect(dialectPostgres).
		Update(deltasTable).
		Set(goqu.Record{
			"processed":    true,
			"processed_at": time.Now().UTC(),
		}).
		Where(goqu.C("id").In(deltaIDs)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark query: %w", err)
	}

	if _, err = tx.Exec(ctx, query); err != nil {
		return fmt.Errorf("mark deltas processed: %w", err)
	}

	return nil
}

// GetStatistics loads one read-model row, reporting ok == false when the key
// has no row yet.
func (s *StatisticsStore) GetStatistics(ctx context.Context, key projection.Key) (projection.BookStatistics, bool, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(statisticsTable).
		Select("isbn", "publication_date", "title", "authors", "available_count", "borrowed_count").
		Where(goqu.Ex{
			"isbn":             key.ISBN,
			"publication_date": key.PublicationDate.String(),
		}).
		ToSQL()
	if err != nil {
		return projection.BookStatistics{}, false, fmt.Errorf("build select query: %w", err)
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return projection.BookStatistics{}, false, fmt.Errorf("get statistics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return projection.BookStatistics{}, false, nil
	}

	stats, err := scanStatistics(rows)
	if err != nil {
		return projection.BookStatistics{}, false, err
	}

	return stats, true, nil
}

// ListStatistics returns every read-model row ordered by title.
func (s *StatisticsStore) ListStatistics(ctx context.Context) ([]projection.BookStatistics, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(statisticsTable).
		Select("isbn", "publication_date", "title", "authors", "available_count", "borrowed_count").
		Order(goqu.C("title").Asc(), goqu.C("isbn").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list statistics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var all []projection.BookStatistics

	for rows.Next() {
		stats, scanErr := scanStatistics(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		all = append(all, stats)
	}

	return all, nil
}

func scanStatistics(rows DBRows) (projection.BookStatistics, error) {
	var (
		isbn            string
		publicationDate time.Time
		title           string
		authors         string
		availableCount  int
		borrowedCount   int
	)

	if err := rows.Scan(&isbn, &publicationDate, &title, &authors, &availableCount, &borrowedCount); err != nil {
		return projection.BookStatistics{}, fmt.Errorf("scan statistics row: %w", err)
	}

	return projection.BookStatistics{
		ISBN:            isbn,
		PublicationDate: core.PublicationDateOf(publicationDate),
		Title:           title,
		Authors:         authors,
		AvailableCount:  availableCount,
		BorrowedCount:   borrowedCount,
	}, nil
}

// Ensure StatisticsStore implements the projector's store contract.
var _ projection.StatisticsStore = (*StatisticsStore)(nil)
