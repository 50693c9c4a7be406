package postgres

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/shell"
)

// AbonentRepository stores Abonent aggregates in the abonents table.
// Abonents are immutable once registered, so there is no version column.
type AbonentRepository struct {
	db DBAdapter
}

// LoadAbonentByID loads an abonent, returning core.ErrAbonentNotFound for an
// unknown id.
func (r *AbonentRepository) LoadAbonentByID(ctx context.Context, id uuid.UUID) (*core.Abonent, error) {
	query, _, err := goqu.Dialect(dialectPostgres).
		From(abonentsTable).
		Select("id", "name", "email").
		Where(goqu.C("id").Eq(id.String())).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load abonent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, fmt.Errorf("load abonent %s: %w", id, core.ErrAbonentNotFound)
	}

	var (
		idRaw string
		name  string
		email string
	)

	if err = rows.Scan(&idRaw, &name, &email); err != nil {
		return nil, fmt.Errorf("scan abonent row: %w", err)
	}

	parsedID, err := uuid.Parse(idRaw)
	if err != nil {
		return nil, fmt.Errorf("parse abonent id: %w", err)
	}

	return &core.Abonent{ID: parsedID, Name: name, Email: email}, nil
}

// SaveAbonent inserts a newly registered abonent.
func (r *AbonentRepository) SaveAbonent(ctx context.Context, abonent *core.Abonent) error {
	query, _, err := goqu.Dialect(dialectPostgres).
		Insert(abonentsTable).
		Rows(goqu.Record{
			"id":    abonent.ID.String(),
			"name":  abonent.Name,
			"email": abonent.Email,
		}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("insert abonent: %w", err)
	}

	return nil
}

// Ensure AbonentRepository implements shell.AbonentRepository.
var _ shell.AbonentRepository = (*AbonentRepository)(nil)
