// The demo command runs one lending walkthrough against a live database:
// it registers an abonent, adds a book, borrows and returns it, then waits
// for the projector to fold the deltas and prints the resulting statistics.
//
// A statistics-projector instance must be running against the same database
// for the final read to show non-zero counters.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/features/command/addbook"
	"github.com/bookwyrm/lending-core-go/features/command/borrowbook"
	"github.com/bookwyrm/lending-core-go/features/command/registerabonent"
	"github.com/bookwyrm/lending-core-go/features/command/returnbook"
	"github.com/bookwyrm/lending-core-go/features/query/bookstatistics"
	"github.com/bookwyrm/lending-core-go/shell"
	"github.com/bookwyrm/lending-core-go/shell/config"
	"github.com/bookwyrm/lending-core-go/shell/observability"
	"github.com/bookwyrm/lending-core-go/shell/observable"
	"github.com/bookwyrm/lending-core-go/shell/oteladapters"
	"github.com/bookwyrm/lending-core-go/shell/postgres"
)

const instrumentationName = "lending-demo"

func main() {
	observabilityEnabled := flag.Bool("observability-enabled", false, "Enable OpenTelemetry logging, metrics and tracing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	poolConfig, err := cfg.Postgres.PGXPoolConfig()
	if err != nil {
		log.Fatalf("Failed to build pgx pool config: %v", err)
	}

	pgxPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pgxPool.Close()

	if err = pgxPool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	adapter := postgres.NewPGXAdapter(pgxPool)
	store := postgres.NewStore(adapter)

	dispatcher, err := shell.NewDefaultDispatcher()
	if err != nil {
		log.Fatalf("Failed to create dispatcher: %v", err)
	}

	var (
		metricsCollector observability.MetricsCollector
		tracingCollector observability.TracingCollector
		contextualLogger observability.ContextualLogger
	)

	if *observabilityEnabled {
		contextualLogger = oteladapters.NewSlogBridgeLogger(instrumentationName)
		metricsCollector = oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
		tracingCollector = oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))
	}

	registerHandler := observable.NewCommandWrapper(
		registerabonent.NewCommandHandler(store, dispatcher),
		observable.WithCommandMetrics[registerabonent.Command](metricsCollector),
		observable.WithCommandTracing[registerabonent.Command](tracingCollector),
		observable.WithCommandLogging[registerabonent.Command](contextualLogger),
	)
	addHandler := observable.NewCommandWrapper(
		addbook.NewCommandHandler(store, dispatcher),
		observable.WithCommandMetrics[addbook.Command](metricsCollector),
		observable.WithCommandTracing[addbook.Command](tracingCollector),
		observable.WithCommandLogging[addbook.Command](contextualLogger),
	)
	borrowHandler := observable.NewCommandWrapper(
		borrowbook.NewCommandHandler(store, dispatcher),
		observable.WithCommandMetrics[borrowbook.Command](metricsCollector),
		observable.WithCommandTracing[borrowbook.Command](tracingCollector),
		observable.WithCommandLogging[borrowbook.Command](contextualLogger),
	)
	returnHandler := observable.NewCommandWrapper(
		returnbook.NewCommandHandler(store, dispatcher),
		observable.WithCommandMetrics[returnbook.Command](metricsCollector),
		observable.WithCommandTracing[returnbook.Command](tracingCollector),
		observable.WithCommandLogging[returnbook.Command](contextualLogger),
	)

	abonentID := uuid.New()
	bookID := uuid.New()
	publicationDate := core.PublicationDate{Year: 1949, Month: time.June, Day: 8}

	if _, err = registerHandler.Handle(ctx, registerabonent.BuildCommand(
		abonentID, "Ada Lovelace", "ada@example.org", time.Now(),
	)); err != nil {
		log.Fatalf("RegisterAbonent failed: %v", err)
	}

	if _, err = addHandler.Handle(ctx, addbook.BuildCommand(
		bookID,
		"Nineteen Eighty-Four",
		"978-0-452-28423-4",
		publicationDate,
		[]core.Author{{Name: "George", Surname: "Orwell"}},
		3,
		time.Now(),
	)); err != nil {
		log.Fatalf("AddBook failed: %v", err)
	}

	if _, err = borrowHandler.Handle(ctx, borrowbook.BuildCommand(
		bookID, abonentID, nil, time.Now(),
	)); err != nil {
		log.Fatalf("BorrowBook failed: %v", err)
	}

	if _, err = returnHandler.Handle(ctx, returnbook.BuildCommand(
		bookID, time.Now(),
	)); err != nil {
		log.Fatalf("ReturnBook failed: %v", err)
	}

	log.Printf("Walkthrough committed, waiting for the projector...")
	time.Sleep(2 * cfg.Projector.Interval)

	isbn, err := core.BuildISBN("978-0-452-28423-4")
	if err != nil {
		log.Fatalf("Invalid ISBN: %v", err)
	}

	queryHandler := bookstatistics.NewQueryHandler(postgres.NewStatisticsStore(adapter))

	result, err := queryHandler.Handle(ctx, bookstatistics.BuildQuery(isbn, publicationDate))
	if err != nil {
		log.Fatalf("BookStatistics query failed: %v", err)
	}

	if !result.Found {
		log.Printf("Statistics row not projected yet, is the statistics-projector running?")
		return
	}

	log.Printf("Statistics for %q: available=%d borrowed=%d",
		result.Statistics.Title, result.Statistics.AvailableCount, result.Statistics.BorrowedCount)
}
