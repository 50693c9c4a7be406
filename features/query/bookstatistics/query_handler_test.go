package bookstatistics_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/features/command/addbook"
	"github.com/bookwyrm/lending-core-go/features/command/borrowbook"
	"github.com/bookwyrm/lending-core-go/features/command/registerabonent"
	"github.com/bookwyrm/lending-core-go/features/command/returnbook"
	"github.com/bookwyrm/lending-core-go/features/query/bookstatistics"
	"github.com/bookwyrm/lending-core-go/projection"
	"github.com/bookwyrm/lending-core-go/shell"
	"github.com/bookwyrm/lending-core-go/testutil/memstore"
)

type fakeCache struct {
	entries map[projection.Key]projection.BookStatistics
	hits    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[projection.Key]projection.BookStatistics)}
}

func (c *fakeCache) Get(_ context.Context, key projection.Key) (projection.BookStatistics, bool) {
	stats, ok := c.entries[key]
	if ok {
		c.hits++
	}

	return stats, ok
}

func (c *fakeCache) Set(_ context.Context, stats projection.BookStatistics) {
	c.entries[stats.StatisticsKey()] = stats
	c.sets++
}

func Test_QueryHandler_Handle_TracksStatisticsThroughFullLendingLifecycle(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memstore.NewStore()
	dispatcher, err := shell.NewDefaultDispatcher()
	assert.NoError(t, err, "Should create default dispatcher")

	projector, err := projection.NewProjector(store)
	assert.NoError(t, err, "Should create projector")

	queryHandler := bookstatistics.NewQueryHandler(store)
	date := core.PublicationDate{Year: 2017, Month: time.September, Day: 10}
	query := bookstatistics.BuildQuery("9780134494166", date)

	abonentID := uuid.New()
	bookID := uuid.New()
	fakeClock := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	_, err = registerabonent.NewCommandHandler(store, dispatcher).
		Handle(ctx, registerabonent.BuildCommand(abonentID, "Test Abonent", "abonent@example.org", fakeClock))
	assert.NoError(t, err, "Should register abonent")

	addCommand := addbook.BuildCommand(
		bookID,
		"Clean Architecture",
		"9780134494166",
		date,
		[]core.Author{{Name: "Robert", Surname: "Martin"}},
		1,
		fakeClock,
	)
	_, err = addbook.NewCommandHandler(store, dispatcher).Handle(ctx, addCommand)
	assert.NoError(t, err, "Should add book")

	// act + assert: after add
	_, err = projector.RunBatch(ctx)
	assert.NoError(t, err, "Projection should succeed after add")

	result, err := queryHandler.Handle(ctx, query)
	assert.NoError(t, err, "Query should succeed")
	assert.True(t, result.Found, "Row should exist after add")
	assert.Equal(t, 1, result.Statistics.AvailableCount, "One copy should be available")
	assert.Equal(t, 0, result.Statistics.BorrowedCount, "Nothing is borrowed yet")

	// act + assert: after borrow
	_, err = borrowbook.NewCommandHandler(store, dispatcher).
		Handle(ctx, borrowbook.BuildCommand(bookID, abonentID, nil, fakeClock.Add(time.Hour)))
	assert.NoError(t, err, "Should borrow book")

	_, err = projector.RunBatch(ctx)
	assert.NoError(t, err, "Projection should succeed after borrow")

	result, err = queryHandler.Handle(ctx, query)
	assert.NoError(t, err, "Query should succeed")
	assert.Equal(t, 0, result.Statistics.AvailableCount, "The only copy is on loan")
	assert.Equal(t, 1, result.Statistics.BorrowedCount, "One loan should be counted")

	// act + assert: after return
	_, err = returnbook.NewCommandHandler(store, dispatcher).
		Handle(ctx, returnbook.BuildCommand(bookID, fakeClock.AddDate(0, 0, 7)))
	assert.NoError(t, err, "Should return book")

	_, err = projector.RunBatch(ctx)
	assert.NoError(t, err, "Projection should succeed after return")

	result, err = queryHandler.Handle(ctx, query)
	assert.NoError(t, err, "Query should succeed")
	assert.Equal(t, 1, result.Statistics.AvailableCount, "Copy should be back on the shelf")
	assert.Equal(t, 0, result.Statistics.BorrowedCount, "No loan should remain")
	assert.Equal(t, "Clean Architecture", result.Statistics.Title, "Denormalized title should survive the lifecycle")
}

func Test_QueryHandler_Handle_ReportsNotFound_ForUnknownTitle(t *testing.T) {
	// arrange
	handler := bookstatistics.NewQueryHandler(memstore.NewStore())
	query := bookstatistics.BuildQuery("9780134494166", core.PublicationDate{Year: 2017, Month: time.September, Day: 10})

	// act
	result, err := handler.Handle(context.Background(), query)

	// assert
	assert.NoError(t, err, "A missing row is not an error")
	assert.False(t, result.Found, "Row should be reported as missing")
}

func Test_QueryHandler_Handle_ServesSecondLookupFromCache(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memstore.NewStore()
	date := core.PublicationDate{Year: 2017, Month: time.September, Day: 10}
	key := projection.Key{ISBN: "9780134494166", PublicationDate: date}

	err := store.ApplyAndMarkProcessed(ctx, nil, []projection.AggregatedDelta{
		{Key: key, Title: "Clean Architecture", Authors: "Martin Robert", AvailableDelta: 2},
	})
	assert.NoError(t, err, "Should seed the read model")

	cache := newFakeCache()
	handler := bookstatistics.NewQueryHandler(store, bookstatistics.WithCache(cache))
	query := bookstatistics.BuildQuery(key.ISBN, date)

	// act
	first, err := handler.Handle(ctx, query)
	assert.NoError(t, err, "First lookup should succeed")
	second, err := handler.Handle(ctx, query)
	assert.NoError(t, err, "Second lookup should succeed")

	// assert
	assert.Equal(t, first, second, "Cached result should match the read model")
	assert.Equal(t, 1, cache.sets, "First lookup should populate the cache")
	assert.Equal(t, 1, cache.hits, "Second lookup should hit the cache")
}

func Test_QueryHandler_Handle_DoesNotCacheMisses(t *testing.T) {
	// arrange
	cache := newFakeCache()
	handler := bookstatistics.NewQueryHandler(memstore.NewStore(), bookstatistics.WithCache(cache))
	query := bookstatistics.BuildQuery("9780134494166", core.PublicationDate{Year: 2017, Month: time.September, Day: 10})

	// act
	result, err := handler.Handle(context.Background(), query)

	// assert
	assert.NoError(t, err, "Lookup should succeed")
	assert.False(t, result.Found, "Row should be missing")
	assert.Equal(t, 0, cache.sets, "A missing row must not be cached")
}

func Test_QueryHandler_HandleList_ReturnsAllTitles(t *testing.T) {
	// arrange
	ctx := context.Background()
	store := memstore.NewStore()
	date := core.PublicationDate{Year: 2017, Month: time.September, Day: 10}

	err := store.ApplyAndMarkProcessed(ctx, nil, []projection.AggregatedDelta{
		{Key: projection.Key{ISBN: "9780134494166", PublicationDate: date}, Title: "Clean Architecture", AvailableDelta: 1},
		{Key: projection.Key{ISBN: "9780132350884", PublicationDate: date}, Title: "Clean Code", AvailableDelta: 2},
	})
	assert.NoError(t, err, "Should seed the read model")

	handler := bookstatistics.NewQueryHandler(store)

	// act
	result, err := handler.HandleList(ctx)

	// assert
	assert.NoError(t, err, "List should succeed")
	assert.Equal(t, 2, result.Count, "Both titles should be listed")
	assert.Len(t, result.Statistics, 2, "Statistics slice should match the count")
}
