// The statistics-projector daemon consumes the statistics delta queue and
// folds the accumulated deltas into the book_statistics read model. It is
// the only writer of that table and is safe to run as a single replica.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/bookwyrm/lending-core-go/projection"
	"github.com/bookwyrm/lending-core-go/shell/config"
	"github.com/bookwyrm/lending-core-go/shell/oteladapters"
	"github.com/bookwyrm/lending-core-go/shell/postgres"
	"github.com/bookwyrm/lending-core-go/shell/rediscache"
)

const instrumentationName = "statistics-projector"

func main() {
	observabilityEnabled := flag.Bool("observability-enabled", false, "Enable OpenTelemetry logging and metrics")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

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

	statisticsStore := postgres.NewStatisticsStore(postgres.NewPGXAdapter(pgxPool))

	options := []projection.ProjectorOption{
		projection.WithBatchSize(cfg.Projector.BatchSize),
		projection.WithInterval(cfg.Projector.Interval),
	}

	if *observabilityEnabled {
		options = append(options,
			projection.WithContextualLogger(oteladapters.NewSlogBridgeLogger(instrumentationName)),
			projection.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))),
		)
	}

	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()

		cache := rediscache.New(redisClient, cfg.Redis.TTL)
		options = append(options, projection.WithCacheInvalidator(cache))

		log.Printf("Read-model cache invalidation enabled (redis %s)", cfg.Redis.Addr)
	}

	projector, err := projection.NewProjector(statisticsStore, options...)
	if err != nil {
		log.Fatalf("Failed to create projector: %v", err)
	}

	log.Printf("Statistics projector started (interval=%s, batch_size=%d)",
		cfg.Projector.Interval, cfg.Projector.BatchSize)

	if err = projector.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Projector failed: %v", err)
	}

	log.Printf("Statistics projector stopped")
}
