// Package memstore provides an in-memory implementation of the persistence
// interfaces for feature and projection tests. It mirrors the transactional
// behavior of the Postgres store: WithinTx rolls back on error, SaveBook does
// an optimistic version check, and delta application is all-or-nothing.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/projection"
	"github.com/bookwyrm/lending-core-go/shell"
)

type queuedRow struct {
	id        int64
	delta     projection.Delta
	processed bool
}

// Store holds all state behind one mutex. It implements shell.UnitOfWork,
// projection.StatisticsStore and the statistics reader used by the query
// handler. The zero value is not usable; call NewStore.
type Store struct {
	mu          sync.Mutex
	books       map[uuid.UUID]*core.Book
	abonents    map[uuid.UUID]*core.Abonent
	deltaRows   []queuedRow
	nextDeltaID int64
	stats       map[projection.Key]projection.BookStatistics

	failSaves   int
	failApplies int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		books:       make(map[uuid.UUID]*core.Book),
		abonents:    make(map[uuid.UUID]*core.Abonent),
		nextDeltaID: 1,
		stats:       make(map[projection.Key]projection.BookStatistics),
	}
}

// FailNextSaves makes the next n SaveBook calls fail with a concurrency
// conflict, for exercising retry behavior.
func (s *Store) FailNextSaves(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = n
}

// FailNextApplies makes the next n ApplyAndMarkProcessed calls fail, for
// exercising the projector's retry and at-least-once behavior.
func (s *Store) FailNextApplies(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failApplies = n
}

// WithinTx runs fn against the live state and restores a snapshot when fn
// returns an error, so a failed unit of work leaves no partial writes.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx shell.TxRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshotLocked()

	if err := fn(ctx, &txRepositories{store: s}); err != nil {
		s.restoreLocked(snapshot)

		return err
	}

	return nil
}

type stateSnapshot struct {
	books       map[uuid.UUID]*core.Book
	abonents    map[uuid.UUID]*core.Abonent
	deltaRows   []queuedRow
	nextDeltaID int64
}

func (s *Store) snapshotLocked() stateSnapshot {
	books := make(map[uuid.UUID]*core.Book, len(s.books))
	for id, b := range s.books {
		books[id] = copyBook(b)
	}

	abonents := make(map[uuid.UUID]*core.Abonent, len(s.abonents))
	for id, a := range s.abonents {
		clone := *a
		abonents[id] = &clone
	}

	deltaRows := make([]queuedRow, len(s.deltaRows))
	copy(deltaRows, s.deltaRows)

	return stateSnapshot{
		books:       books,
		abonents:    abonents,
		deltaRows:   deltaRows,
		nextDeltaID: s.nextDeltaID,
	}
}

func (s *Store) restoreLocked(snapshot stateSnapshot) {
	s.books = snapshot.books
	s.abonents = snapshot.abonents
	s.deltaRows = snapshot.deltaRows
	s.nextDeltaID = snapshot.nextDeltaID
}

type txRepositories struct {
	store *Store
}

func (t *txRepositories) Books() shell.BookRepository       { return (*bookRepository)(t) }
func (t *txRepositories) Abonents() shell.AbonentRepository { return (*abonentRepository)(t) }
func (t *txRepositories) Deltas() shell.DeltaQueue          { return (*deltaQueue)(t) }

type bookRepository txRepositories

func (r *bookRepository) LoadBookByID(_ context.Context, id uuid.UUID) (*core.Book, error) {
	book, ok := r.store.books[id]
	if !ok {
		return nil, fmt.Errorf("load book %s: %w", id, core.ErrBookNotFound)
	}

	return copyBook(book), nil
}

func (r *bookRepository) SaveBook(_ context.Context, book *core.Book) error {
	if r.store.failSaves > 0 {
		r.store.failSaves--

		return shell.ErrConcurrencyConflict
	}

	stored, exists := r.store.books[book.ID]

	if book.Version == 0 {
		if exists {
			return fmt.Errorf("insert book %s: already exists", book.ID)
		}

		book.Version = 1
		r.store.books[book.ID] = copyBook(book)

		return nil
	}

	if !exists || stored.Version != book.Version {
		return shell.ErrConcurrencyConflict
	}

	book.Version++
	r.store.books[book.ID] = copyBook(book)

	return nil
}

func (r *bookRepository) CountActiveLoans(_ context.Context, borrowerID uuid.UUID) (int, error) {
	count := 0
	for _, b := range r.store.books {
		if b.Loan != nil && b.Loan.BorrowerID == borrowerID {
			count++
		}
	}

	return count, nil
}

type abonentRepository txRepositories

func (r *abonentRepository) LoadAbonentByID(_ context.Context, id uuid.UUID) (*core.Abonent, error) {
	abonent, ok := r.store.abonents[id]
	if !ok {
		return nil, fmt.Errorf("load abonent %s: %w", id, core.ErrAbonentNotFound)
	}

	clone := *abonent

	return &clone, nil
}

func (r *abonentRepository) SaveAbonent(_ context.Context, abonent *core.Abonent) error {
	clone := *abonent
	r.store.abonents[abonent.ID] = &clone

	return nil
}

type deltaQueue txRepositories

func (q *deltaQueue) Enqueue(_ context.Context, deltas ...projection.Delta) error {
	for _, d := range deltas {
		q.store.deltaRows = append(q.store.deltaRows, queuedRow{id: q.store.nextDeltaID, delta: d})
		q.store.nextDeltaID++
	}

	return nil
}

// FetchUnprocessedDeltas returns up to limit unprocessed deltas in enqueue order.
func (s *Store) FetchUnprocessedDeltas(_ context.Context, limit int) ([]projection.QueuedDelta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fetched := make([]projection.QueuedDelta, 0, limit)
	for _, row := range s.deltaRows {
		if row.processed {
			continue
		}

		fetched = append(fetched, projection.QueuedDelta{ID: row.id, Delta: row.delta})
		if len(fetched) == limit {
			break
		}
	}

	return fetched, nil
}

// ApplyAndMarkProcessed applies the aggregated updates to the statistics rows
// and marks the source deltas processed, atomically.
func (s *Store) ApplyAndMarkProcessed(_ context.Context, deltaIDs []int64, updates []projection.AggregatedDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failApplies > 0 {
		s.failApplies--

		return shell.ErrConcurrencyConflict
	}

	for _, update := range updates {
		s.stats[update.Key] = projection.ApplyAggregated(s.stats[update.Key], update)
	}

	processed := make(map[int64]bool, len(deltaIDs))
	for _, id := range deltaIDs {
		processed[id] = true
	}

	for i := range s.deltaRows {
		if processed[s.deltaRows[i].id] {
			s.deltaRows[i].processed = true
		}
	}

	return nil
}

// GetStatistics returns the statistics row for one title key.
func (s *Store) GetStatistics(_ context.Context, key projection.Key) (projection.BookStatistics, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, ok := s.stats[key]

	return stats, ok, nil
}

// ListStatistics returns all statistics rows in unspecified order.
func (s *Store) ListStatistics(_ context.Context) ([]projection.BookStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]projection.BookStatistics, 0, len(s.stats))
	for _, stats := range s.stats {
		all = append(all, stats)
	}

	return all, nil
}

// UnprocessedDeltaCount reports how many queued deltas are still unprocessed.
func (s *Store) UnprocessedDeltaCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, row := range s.deltaRows {
		if !row.processed {
			count++
		}
	}

	return count
}

func copyBook(book *core.Book) *core.Book {
	clone := *book

	clone.Authors = make([]core.Author, len(book.Authors))
	copy(clone.Authors, book.Authors)

	if book.Loan != nil {
		loan := *book.Loan
		clone.Loan = &loan
	}

	return &clone
}

var (
	_ shell.UnitOfWork           = (*Store)(nil)
	_ projection.StatisticsStore = (*Store)(nil)
)
