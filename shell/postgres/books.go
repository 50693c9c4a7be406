package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/shell"
)

// BookRepository stores Book aggregates in the books table.
// The loan record lives in a jsonb column owned exclusively by its book row;
// the version column implements optimistic concurrency.
type BookRepository struct {
	db DBAdapter
}

// dbLoan is the jsonb shape of an active loan.
type dbLoan struct {
	BorrowerID string    `json:"borrower_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
	ReturnDue  time.Time `json:"return_due"`
}

// dbAuthor is the jsonb shape of one author.
type dbAuthor struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Patronymic string `json:"patronymic,omitempty"`
}

// LoadBookByID loads a book aggregate, returning core.ErrBookNotFound for an
// unknown id.
func (r *BookRepository) LoadBookByID(ctx context.Context, id uuid.UUID) (*core.Book, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(booksTable).
		Select("id", "title", "isbn", "publication_date", "authors", "copies", "loan", "version").
		Where(goqu.C("id").Eq(id.String())).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load book: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, fmt.Errorf("load book %s: %w", id, core.ErrBookNotFound)
	}

	return scanBook(rows)
}

// SaveBook inserts a new aggregate or updates an existing one with an
// optimistic version check. A failed check returns ErrConcurrencyConflict and
// leaves the aggregate's version untouched so the caller can reload and retry.
func (r *BookRepository) SaveBook(ctx context.Context, book *core.Book) error {
	authorsJSON, err := marshalAuthors(book.Authors)
	if err != nil {
		return err
	}

	loanJSON, err := marshalLoan(book.Loan)
	if err != nil {
		return err
	}

	if book.Version == 0 {
		return r.insertBook(ctx, book, authorsJSON, loanJSON)
	}

	return r.updateBook(ctx, book, authorsJSON, loanJSON)
}

func (r *BookRepository) insertBook(ctx context.Context, book *core.Book, authorsJSON string, loanJSON any) error {
	query, _, err := goqu.Dialect(dialectPostgres).
		Insert(booksTable).
		Rows(goqu.Record{
			"id":               book.ID.String(),
			"title":            book.Title,
			"isbn":             book.ISBN,
			"publication_date": book.PublicationDate.String(),
			"authors":          authorsJSON,
			"copies":           int64(book.Copies),
			"loan":             loanJSON,
			"version":          1,
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	book.Version = 1

	return nil
}

func (r *BookRepository) updateBook(ctx context.Context, book *core.Book, authorsJSON string, loanJSON any) error {
	query, _, err := goqu.Dialect(dialectPostgres).
		Update(booksTable).
		Set(goqu.Record{
			"title":            book.Title,
			"isbn":             book.ISBN,
			"publication_date": book.PublicationDate.String(),
			"authors":          authorsJSON,
			"copies":           int64(book.Copies),
			"loan":             loanJSON,
			"version":          int64(book.Version + 1),
		}).
		Where(goqu.Ex{
			"id":      book.ID.String(),
			"version": int64(book.Version),
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	result, err := r.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return shell.ErrConcurrencyConflict
	}

	book.Version++

	return nil
}

// CountActiveLoans returns how many books are currently on loan to the
// borrower. The count is read live per borrow attempt.
func (r *BookRepository) CountActiveLoans(ctx context.Context, borrowerID uuid.UUID) (int, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(booksTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.L("loan ->> 'borrower_id'").Eq(borrowerID.String())).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count active loans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var count int
	if rows.Next() {
		if err = rows.Scan(&count); err != nil {
			return 0, fmt.Errorf("scan loan count: %w", err)
		}
	}

	return count, nil
}

// scanBook maps one result row to a Book aggregate.
func scanBook(rows DBRows) (*core.Book, error) {
	var (
		idRaw           string
		title           string
		isbn            string
		publicationDate time.Time
		authorsJSON     []byte
		copies          int64
		loanJSON        []byte
		version         int64
	)

	if err := rows.Scan(&idRaw, &title, &isbn, &publicationDate, &authorsJSON, &copies, &loanJSON, &version); err != nil {
		return nil, fmt.Errorf("scan book row: %w", err)
	}

	id, err := uuid.Parse(idRaw)
	if err != nil {
		return nil, fmt.Errorf("parse book id: %w", err)
	}

	var dbAuthors []dbAuthor
	if err = json.Unmarshal(authorsJSON, &dbAuthors); err != nil {
		return nil, fmt.Errorf("unmarshal authors: %w", err)
	}

	authors := make([]core.Author, 0, len(dbAuthors))
	for _, a := range dbAuthors {
		authors = append(authors, core.Author{Name: a.Name, Surname: a.Surname, Patronymic: a.Patronymic})
	}

	book := &core.Book{
		ID:              id,
		Title:           title,
		ISBN:            isbn,
		PublicationDate: core.PublicationDateOf(publicationDate),
		Authors:         authors,
		Copies:          uint(copies),
		Version:         uint64(version),
	}

	if len(loanJSON) > 0 {
		var loan dbLoan
		if err = json.Unmarshal(loanJSON, &loan); err != nil {
			return nil, fmt.Errorf("unmarshal loan: %w", err)
		}

		borrowerID, parseErr := uuid.Parse(loan.BorrowerID)
		if parseErr != nil {
			return nil, fmt.Errorf("parse borrower id: %w", parseErr)
		}

		book.Loan = &core.Loan{
			BorrowerID: borrowerID,
			BorrowedAt: loan.BorrowedAt,
			ReturnDue:  loan.ReturnDue,
		}
	}

	return book, nil
}

func marshalAuthors(authors []core.Author) (string, error) {
	dbAuthors := make([]dbAuthor, 0, len(authors))
	for _, a := range authors {
		dbAuthors = append(dbAuthors, dbAuthor{Name: a.Name, Surname: a.Surname, Patronymic: a.Patronymic})
	}

	encoded, err := json.Marshal(dbAuthors)
	if err != nil {
		return "", fmt.Errorf("marshal authors: %w", err)
	}

	return string(encoded), nil
}

// marshalLoan returns nil (SQL NULL) for an available book.
func marshalLoan(loan *core.Loan) (any, error) {
	if loan == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(dbLoan{
		BorrowerID: loan.BorrowerID.String(),
		BorrowedAt: loan.BorrowedAt,
		ReturnDue:  loan.ReturnDue,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal loan: %w", err)
	}

	return string(encoded), nil
}

// Ensure BookRepository implements shell.BookRepository.
var _ shell.BookRepository = (*BookRepository)(nil)
