// internal/infrastructure/db/badger_price_repository_test.go
package db

import (
	"context"
	"testing"
	"time"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(name, symbol, price string, date time.Time) *entity.PriceRecord {
	return &entity.PriceRecord{
		Name:   name,
		Symbol: symbol,
		Price:  decimal.RequireFromString(price),
		Date:   date,
	}
}

func newTestRepository(t *testing.T) *BadgerPriceRepository {
	t.Helper()

	badgerDB, err := OpenInMemory()
	require.NoError(t, err)

	repo, err := NewBadgerPriceRepository(badgerDB)
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		badgerDB.Close()
	})

	return repo
}

func TestBadgerPriceRepositoryEmpty(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	found, err := repo.Any(ctx)
	assert.NoError(t, err)
	assert.False(t, found)

	count, err := repo.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	symbols, err := repo.Symbols(ctx)
	assert.NoError(t, err)
	assert.Empty(t, symbols)

	_, err = repo.FindLatest(ctx, "BTC")
	assert.ErrorIs(t, err, repository.ErrPriceNotFound)

	_, err = repo.FindByDate(ctx, "BTC", day(2024, 1, 1))
	assert.ErrorIs(t, err, repository.ErrPriceNotFound)

	_, err = repo.OldestDate(ctx)
	assert.ErrorIs(t, err, repository.ErrPriceNotFound)

	records, err := repo.FindRange(ctx, []string{"BTC"}, day(2024, 1, 1), day(2024, 12, 31))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestBadgerPriceRepositoryQueries(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	err := repo.InsertBatch(ctx, []*entity.PriceRecord{
		record("Bitcoin", "BTC", "110", day(2024, 1, 2)),
		record("Bitcoin", "BTC", "100", day(2024, 1, 1)),
		record("Ethereum", "ETH", "50", day(2023, 12, 30)),
		record("Ether", "ETH", "55", day(2024, 1, 1)),
		record("Bitcoin", "BTCX", "7", day(2024, 2, 1)),
	})
	require.NoError(t, err)

	t.Run("Any and Count", func(t *testing.T) {
		found, err := repo.Any(ctx)
		assert.NoError(t, err)
		assert.True(t, found)

		count, err := repo.Count(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 5, count)
	})

	t.Run("Symbols keeps the first name", func(t *testing.T) {
		symbols, err := repo.Symbols(ctx)
		assert.NoError(t, err)
		assert.Equal(t, map[string]string{
			"BTC":  "Bitcoin",
			"BTCX": "Bitcoin",
			"ETH":  "Ethereum",
		}, symbols)
	})

	t.Run("FindLatest orders by date", func(t *testing.T) {
		rec, err := repo.FindLatest(ctx, "BTC")
		require.NoError(t, err)
		assert.True(t, rec.Price.Equal(decimal.NewFromInt(110)))
		assert.Equal(t, day(2024, 1, 2), rec.Date)
		assert.NotZero(t, rec.ID)
	})

	t.Run("FindByDate ignores time of day", func(t *testing.T) {
		rec, err := repo.FindByDate(ctx, "BTC", time.Date(2024, 1, 1, 18, 45, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.True(t, rec.Price.Equal(decimal.NewFromInt(100)))
	})

	t.Run("FindRange is inclusive and symbol scoped", func(t *testing.T) {
		records, err := repo.FindRange(ctx, []string{"BTC"}, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, day(2024, 1, 1), records[0].Date)
		assert.Equal(t, day(2024, 1, 2), records[1].Date)
		for _, rec := range records {
			assert.Equal(t, "BTC", rec.Symbol)
		}
	})

	t.Run("FindRange with several symbols", func(t *testing.T) {
		records, err := repo.FindRange(ctx, []string{"ETH", "BTC", "ETH"}, day(2023, 12, 1), day(2024, 1, 1))
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "BTC", records[0].Symbol)
		assert.Equal(t, "ETH", records[1].Symbol)
		assert.Equal(t, "ETH", records[2].Symbol)
	})

	t.Run("FindRange with inverted bounds", func(t *testing.T) {
		records, err := repo.FindRange(ctx, []string{"BTC"}, day(2024, 1, 2), day(2024, 1, 1))
		assert.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("OldestDate spans all symbols", func(t *testing.T) {
		oldest, err := repo.OldestDate(ctx)
		assert.NoError(t, err)
		assert.Equal(t, day(2023, 12, 30), oldest)
	})
}

func TestBadgerPriceRepositoryDuplicates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertBatch(ctx, []*entity.PriceRecord{
		record("Bitcoin", "BTC", "100", day(2024, 1, 1)),
	}))
	require.NoError(t, repo.InsertBatch(ctx, []*entity.PriceRecord{
		record("Bitcoin", "BTC", "101", day(2024, 1, 1)),
	}))

	first, err := repo.FindByDate(ctx, "BTC", day(2024, 1, 1))
	require.NoError(t, err)
	assert.True(t, first.Price.Equal(decimal.NewFromInt(100)))

	latest, err := repo.FindLatest(ctx, "BTC")
	require.NoError(t, err)
	assert.True(t, latest.Price.Equal(decimal.NewFromInt(101)))

	records, err := repo.FindRange(ctx, []string{"BTC"}, day(2024, 1, 1), day(2024, 1, 1))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Less(t, records[0].ID, records[1].ID)
}

func TestBadgerPriceRepositoryInsertValidation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	cet := time.FixedZone("CET", 1*60*60)
	valid := record("Bitcoin", "BTC", "100", time.Date(2024, 1, 1, 12, 0, 0, 0, cet))
	err := repo.InsertBatch(ctx, []*entity.PriceRecord{
		valid,
		record("Bitcoin", "BTC", "-1", day(2024, 1, 2)),
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "price must not be negative")

	// Nothing from a rejected batch is stored
	count, err := repo.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	// and the caller's records are left as they were
	assert.Zero(t, valid.ID)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, cet), valid.Date)
}

func TestBadgerPriceRepositoryAssignsIDsOnCommit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	records := []*entity.PriceRecord{
		record("Bitcoin", "BTC", "100", time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)),
		record("Ethereum", "ETH", "10", day(2024, 1, 1)),
	}
	require.NoError(t, repo.InsertBatch(ctx, records))

	assert.NotZero(t, records[0].ID)
	assert.Less(t, records[0].ID, records[1].ID)
	assert.Equal(t, day(2024, 1, 1), records[0].Date)

	stored, err := repo.FindLatest(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, records[0].ID, stored.ID)
}

func TestBadgerPriceRepositoryNormalizesDates(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	cet := time.FixedZone("CET", 1*60*60)
	require.NoError(t, repo.InsertBatch(ctx, []*entity.PriceRecord{
		record("Bitcoin", "BTC", "100", time.Date(2024, 3, 5, 23, 59, 0, 0, cet)),
	}))

	rec, err := repo.FindLatest(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, day(2024, 3, 5), rec.Date)
}
