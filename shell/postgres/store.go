package postgres

import (
	"context"

	jsoniter "github.com/json-iterator/go"

	"github.com/bookwyrm/lending-core-go/shell"
)

// json is the codec for the jsonb columns (authors, loan records).
var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	booksTable      = "books"
	abonentsTable   = "abonents"
	deltasTable     = "statistics_deltas"
	statisticsTable = "book_statistics"

	dialectPostgres = "postgres"
)

// Store is the Postgres-backed unit of work. One Store serves the whole
// service; every use case runs inside Store.WithinTx and sees repositories
// bound to that transaction.
type Store struct {
	db TxAdapter
}

// NewStore creates a store over a pgx or sqlx adapter.
func NewStore(db TxAdapter) *Store {
	return &Store{db: db}
}

// WithinTx implements shell.UnitOfWork. The callback's repositories all join
// the same database transaction; an error rolls the whole unit of work back.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx shell.TxRepositories) error) error {
	return s.db.WithinTx(ctx, func(txCtx context.Context, tx DBAdapter) error {
		return fn(txCtx, &txRepositories{db: tx})
	})
}

// txRepositories hands out repositories bound to one open transaction.
type txRepositories struct {
	db DBAdapter
}

func (r *txRepositories) Books() shell.BookRepository {
	return &BookRepository{db: r.db}
}

func (r *txRepositories) Abonents() shell.AbonentRepository {
	return &AbonentRepository{db: r.db}
}

func (r *txRepositories) Deltas() shell.DeltaQueue {
	return &DeltaQueue{db: r.db}
}

// Ensure Store implements shell.UnitOfWork.
var _ shell.UnitOfWork = (*Store)(nil)
