package postgres

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// DBAdapter defines the interface for database operations needed by the
// repositories. Queries arrive as fully built SQL strings (goqu interpolates
// values), which keeps the adapter surface minimal across drivers.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
}

// TxAdapter extends DBAdapter with transaction support. The callback receives
// a DBAdapter bound to the open transaction; returning an error rolls back,
// returning nil commits.
type TxAdapter interface {
	DBAdapter
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBAdapter) error) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}

// PGXAdapter implements TxAdapter for pgxpool.Pool.
type PGXAdapter struct {
	pool *pgxpool.Pool
}

// NewPGXAdapter creates a new PGX adapter over the given pool.
func NewPGXAdapter(pool *pgxpool.Pool) *PGXAdapter {
	return &PGXAdapter{pool: pool}
}

// Query executes a query on the pool and returns wrapped rows.
func (p *PGXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

// Exec executes a statement on the pool and returns the wrapped result.
func (p *PGXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	tag, err := p.pool.Exec(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// WithinTx runs fn inside one pgx transaction.
func (p *PGXAdapter) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBAdapter) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err = fn(ctx, &pgxTxAdapter{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// pgxTxAdapter binds the DBAdapter interface to an open pgx transaction.
type pgxTxAdapter struct {
	tx pgx.Tx
}

func (a *pgxTxAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := a.tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxRows{rows: rows}, nil
}

func (a *pgxTxAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	tag, err := a.tx.Exec(ctx, query)
	if err != nil {
		return nil, err
	}

	return &pgxResult{tag: tag}, nil
}

// pgxRows wraps pgx.Rows to implement the DBRows interface.
type pgxRows struct {
	rows pgx.Rows
}

// Next advances to the next row.
func (p *pgxRows) Next() bool {
	return p.rows.Next()
}

// Scan copies row values into provided destinations.
func (p *pgxRows) Scan(dest ...any) error {
	return p.rows.Scan(dest...)
}

// Close closes the rows iterator.
func (p *pgxRows) Close() error {
	p.rows.Close()
	return nil
}

// pgxResult wraps pgconn.CommandTag to implement the DBResult interface.
type pgxResult struct {
	tag pgconn.CommandTag
}

// RowsAffected returns the number of rows affected by the command.
func (p *pgxResult) RowsAffected() (int64, error) {
	return p.tag.RowsAffected(), nil
}

// SQLXAdapter implements TxAdapter for sqlx.DB.
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a new SQLX adapter.
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query executes a query using the sqlx.DB and returns wrapped rows.
func (s *SQLXAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a statement using the sqlx.DB and returns the wrapped result.
func (s *SQLXAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// WithinTx runs fn inside one database/sql transaction.
func (s *SQLXAdapter) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBAdapter) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err = fn(ctx, &sqlxTxAdapter{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// sqlxTxAdapter binds the DBAdapter interface to an open sqlx transaction.
type sqlxTxAdapter struct {
	tx *sqlx.Tx
}

func (a *sqlxTxAdapter) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := a.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

func (a *sqlxTxAdapter) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := a.tx.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// stdRows wraps standard library sql.Rows to implement the DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Scan copies row values into provided destinations.
func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

// Close closes the rows iterator.
func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement the DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}
