// Package service internal/application/service/price_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/domain/repository"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/middleware"
	"github.com/shopspring/decimal"
)

// PriceService answers read-only questions about stored prices.
// Lookups that find nothing return decimal.Zero (or the zero time) rather than an error;
// the Lookup* variants report presence explicitly.
type PriceService struct {
	repo   repository.PriceRepository
	logger logger.Logger
}

// NewPriceService creates a new price query service
func NewPriceService(repo repository.PriceRepository, log logger.Logger) *PriceService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &PriceService{
		repo:   repo,
		logger: log,
	}
}

// ListCryptocurrencies maps each distinct symbol to its display name
func (s *PriceService) ListCryptocurrencies(ctx context.Context) (map[string]string, error) {
	symbols, err := s.repo.Symbols(ctx)
	if err != nil {
		s.logger.Error("Failed to list cryptocurrencies", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("failed to list cryptocurrencies: %w", err)
	}

	return symbols, nil
}

// GetLatestPrice returns the most recent price for a symbol, or zero if none is stored
func (s *PriceService) GetLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	price, _, err := s.LookupLatestPrice(ctx, symbol)
	return price, err
}

// LookupLatestPrice returns the most recent price for a symbol and whether one exists
func (s *PriceService) LookupLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, bool, error) {
	rec, err := s.repo.FindLatest(ctx, symbol)
	if errors.Is(err, repository.ErrPriceNotFound) {
		s.logger.Debug("No price stored for symbol", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"symbol":     symbol,
		})
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get latest price: %w", err)
	}

	return rec.Price, true, nil
}

// GetLatestPrices returns the latest price for every requested symbol; missing symbols map to zero
func (s *PriceService) GetLatestPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal, len(symbols))

	for _, symbol := range symbols {
		if _, done := prices[symbol]; done {
			continue
		}

		price, err := s.GetLatestPrice(ctx, symbol)
		if err != nil {
			return nil, err
		}
		prices[symbol] = price
	}

	return prices, nil
}

// GetHistoricalPrice returns the price recorded on date's calendar day, or zero if none is stored
func (s *PriceService) GetHistoricalPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error) {
	price, _, err := s.LookupHistoricalPrice(ctx, symbol, date)
	return price, err
}

// LookupHistoricalPrice returns the price recorded on date's calendar day and whether one exists
func (s *PriceService) LookupHistoricalPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, bool, error) {
	rec, err := s.repo.FindByDate(ctx, symbol, date)
	if errors.Is(err, repository.ErrPriceNotFound) {
		s.logger.Debug("No historical price stored", map[string]interface{}{
			"request_id": middleware.GetRequestID(ctx),
			"symbol":     symbol,
			"date":       date.Format(entity.DateLayout),
		})
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to get historical price: %w", err)
	}

	return rec.Price, true, nil
}

// GetHistoricalPrices returns the prices of a symbol for every stored day within [start, end]
func (s *PriceService) GetHistoricalPrices(ctx context.Context, symbol string, start, end time.Time) (map[time.Time]decimal.Decimal, error) {
	records, err := s.repo.FindRange(ctx, []string{symbol}, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}

	prices := make(map[time.Time]decimal.Decimal, len(records))
	for _, rec := range records {
		prices[entity.Day(rec.Date)] = rec.Price
	}

	s.logger.Debug("Historical prices retrieved", map[string]interface{}{
		"request_id": middleware.GetRequestID(ctx),
		"symbol":     symbol,
		"start":      start.Format(entity.DateLayout),
		"end":        end.Format(entity.DateLayout),
		"count":      len(prices),
	})

	return prices, nil
}

// GetMultipleHistoricalPrices groups the prices of several symbols by symbol and day.
// When a (symbol, day) pair has more than one record the last one read wins.
func (s *PriceService) GetMultipleHistoricalPrices(ctx context.Context, symbols []string, start, end time.Time) (map[string]map[time.Time]decimal.Decimal, error) {
	records, err := s.repo.FindRange(ctx, symbols, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}

	grouped := make(map[string]map[time.Time]decimal.Decimal)
	for _, rec := range records {
		bucket, ok := grouped[rec.Symbol]
		if !ok {
			bucket = make(map[time.Time]decimal.Decimal)
			grouped[rec.Symbol] = bucket
		}
		bucket[entity.Day(rec.Date)] = rec.Price
	}

	return grouped, nil
}

// GetOldestDate returns the earliest recorded date, or the zero time when nothing is stored
func (s *PriceService) GetOldestDate(ctx context.Context) (time.Time, error) {
	oldest, err := s.repo.OldestDate(ctx)
	if errors.Is(err, repository.ErrPriceNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get oldest date: %w", err)
	}

	return oldest, nil
}
