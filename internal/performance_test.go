package internal

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/dca-calculator/internal/application/service"
	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/db"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/dca-calculator/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPerformance(t *testing.T) {
	// Skip in short mode or CI
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	badgerDB, err := db.Open(t.TempDir())
	require.NoError(t, err)
	defer badgerDB.Close()

	repo, err := db.NewBadgerPriceRepository(badgerDB)
	require.NoError(t, err)
	defer repo.Close()

	log := logger.NewJSONLogger(nil, logger.ErrorLevel)

	// One year of seeded history for every default asset
	today := time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)
	seeder := service.NewSeedService(repo, log).
		WithClock(func() time.Time { return today }).
		WithRand(rand.New(rand.NewSource(42)))

	startTime := time.Now()
	require.NoError(t, seeder.Initialize(context.Background()))
	t.Logf("Seeding: completed in %v", time.Since(startTime))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 367*len(service.DefaultSeedAssets), count)

	rates := new(mocks.MockRateProvider)
	rates.On("GetLatestEURConversionRate", mock.Anything).Return(decimal.RequireFromString("0.92"), nil)

	prices := service.NewPriceService(repo, log)
	dca := service.NewDCAService(prices, rates, log)

	symbols := []string{"BTC", "ETH", "XRP"}
	numRequests := 300
	concurrency := 10

	run := func(t *testing.T, name string, call func(ctx context.Context, workerID, j int) error) {
		startTime := time.Now()

		var failures int64
		wg := sync.WaitGroup{}
		wg.Add(concurrency)

		perWorker := numRequests / concurrency

		for i := 0; i < concurrency; i++ {
			go func(workerID int) {
				defer wg.Done()

				ctx := context.Background()
				for j := 0; j < perWorker; j++ {
					if err := call(ctx, workerID, j); err != nil {
						atomic.AddInt64(&failures, 1)
					}
				}
			}(i)
		}

		wg.Wait()
		duration := time.Since(startTime)

		// Calculate throughput
		throughput := float64(numRequests) / duration.Seconds()
		t.Logf("%s: %d requests in %v (%.2f req/sec)", name, numRequests, duration, throughput)

		assert.Zero(t, atomic.LoadInt64(&failures))
	}

	t.Run("Latest Prices", func(t *testing.T) {
		run(t, "Latest prices", func(ctx context.Context, workerID, j int) error {
			latest, err := prices.GetLatestPrices(ctx, symbols)
			if err == nil && len(latest) != len(symbols) {
				t.Errorf("expected %d prices, got %d", len(symbols), len(latest))
			}
			return err
		})
	})

	t.Run("Historical Ranges", func(t *testing.T) {
		run(t, "Historical ranges", func(ctx context.Context, workerID, j int) error {
			start := today.AddDate(0, 0, -((workerID*31 + j) % 300))
			_, err := prices.GetMultipleHistoricalPrices(ctx, symbols, start.AddDate(0, 0, -30), start)
			return err
		})
	})

	t.Run("DCA Simulation", func(t *testing.T) {
		run(t, "DCA simulation", func(ctx context.Context, workerID, j int) error {
			_, err := dca.Simulate(ctx, service.DCARequest{
				Symbol:   symbols[j%len(symbols)],
				Amount:   decimal.NewFromInt(100),
				Start:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
				End:      today,
				Interval: entity.IntervalWeekly,
			})
			return err
		})
	})
}
