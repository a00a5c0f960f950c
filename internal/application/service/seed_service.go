package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/domain/repository"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
)

// SeedAsset describes a cryptocurrency and the half-open range [Min, Max) its synthetic prices fall in
type SeedAsset struct {
	Name   string
	Symbol string
	Min    decimal.Decimal
	Max    decimal.Decimal
}

// SeedStartDate is the first day of generated history
var SeedStartDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultSeedAssets are the cryptocurrencies generated on first boot
var DefaultSeedAssets = []SeedAsset{
	{Name: "Bitcoin", Symbol: "BTC", Min: decimal.NewFromInt(20000), Max: decimal.NewFromInt(40000)},
	{Name: "Ethereum", Symbol: "ETH", Min: decimal.NewFromInt(1000), Max: decimal.NewFromInt(2000)},
	{Name: "Ripple", Symbol: "XRP", Min: decimal.RequireFromString("0.1"), Max: decimal.RequireFromString("1.0")},
}

// SeedService fills an empty store with daily synthetic prices
type SeedService struct {
	repo   repository.PriceRepository
	logger logger.Logger
	assets []SeedAsset
	now    func() time.Time
	rand   *rand.Rand
}

// NewSeedService creates a seed service with a freshly seeded random source
func NewSeedService(repo repository.PriceRepository, log logger.Logger) *SeedService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &SeedService{
		repo:   repo,
		logger: log,
		assets: DefaultSeedAssets,
		now:    time.Now,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock replaces the clock that decides the last generated day
func (s *SeedService) WithClock(now func() time.Time) *SeedService {
	s.now = now
	return s
}

// WithRand replaces the random source used for prices
func (s *SeedService) WithRand(r *rand.Rand) *SeedService {
	s.rand = r
	return s
}

// Initialize generates one record per day per asset from SeedStartDate through today,
// unless the store already holds any record. All records are written in one batch.
func (s *SeedService) Initialize(ctx context.Context) error {
	exists, err := s.repo.Any(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing prices: %w", err)
	}

	if exists {
		s.logger.Info("Price store already populated, skipping seed", nil)
		return nil
	}

	records := s.generate(SeedStartDate, entity.Day(s.now()))

	s.logger.Info("Seeding price store", map[string]interface{}{
		"records": len(records),
		"start":   SeedStartDate.Format(entity.DateLayout),
		"assets":  len(s.assets),
	})

	if err := s.repo.InsertBatch(ctx, records); err != nil {
		s.logger.Error("Failed to seed price store", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("failed to seed prices: %w", err)
	}

	s.logger.Info("Price store seeded", map[string]interface{}{
		"records": len(records),
	})

	return nil
}

func (s *SeedService) generate(start, end time.Time) []*entity.PriceRecord {
	if end.Before(start) {
		return nil
	}

	days := int(end.Sub(start).Hours()/24) + 1
	records := make([]*entity.PriceRecord, 0, days*len(s.assets))

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		for _, asset := range s.assets {
			records = append(records, &entity.PriceRecord{
				Name:   asset.Name,
				Symbol: asset.Symbol,
				Price:  s.randomPrice(asset),
				Date:   date,
			})
		}
	}

	return records
}

// randomPrice draws uniformly from [Min, Max) and truncates to cents, which keeps the result below Max
func (s *SeedService) randomPrice(asset SeedAsset) decimal.Decimal {
	spread := asset.Max.Sub(asset.Min)
	offset := spread.Mul(decimal.NewFromFloat(s.rand.Float64()))
	return asset.Min.Add(offset).Truncate(2)
}
