package postgres

// Schema is the DDL for the four tables the service uses. It is applied by
// deployment tooling outside this module; the constant doubles as the single
// place documenting the physical model.
const Schema = `
CREATE TABLE IF NOT EXISTS books (
    id               UUID PRIMARY KEY,
    title            TEXT NOT NULL,
    isbn             TEXT NOT NULL,
    publication_date DATE NOT NULL,
    authors          JSONB NOT NULL,
    copies           INTEGER NOT NULL DEFAULT 1,
    loan             JSONB,
    version          BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_books_loan_borrower
    ON books ((loan ->> 'borrower_id'))
    WHERE loan IS NOT NULL;

CREATE TABLE IF NOT EXISTS abonents (
    id    UUID PRIMARY KEY,
    name  TEXT NOT NULL,
    email TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS statistics_deltas (
    id               BIGSERIAL PRIMARY KEY,
    isbn             TEXT NOT NULL,
    publication_date DATE NOT NULL,
    title            TEXT NOT NULL DEFAULT '',
    authors          TEXT NOT NULL DEFAULT '',
    available_delta  INTEGER NOT NULL,
    borrowed_delta   INTEGER NOT NULL,
    processed        BOOLEAN NOT NULL DEFAULT FALSE,
    enqueued_at      TIMESTAMPTZ NOT NULL,
    processed_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_statistics_deltas_unprocessed
    ON statistics_deltas (id)
    WHERE NOT processed;

CREATE TABLE IF NOT EXISTS book_statistics (
    isbn             TEXT NOT NULL,
    publication_date DATE NOT NULL,
    title            TEXT NOT NULL DEFAULT '',
    authors          TEXT NOT NULL DEFAULT '',
    available_count  INTEGER NOT NULL DEFAULT 0,
    borrowed_count   INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (isbn, publication_date)
);
`
