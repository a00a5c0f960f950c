package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	domainservice "github.com/damon-houk/dca-calculator/internal/domain/service"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/middleware"
	"github.com/shopspring/decimal"
)

// ErrInvalidSimulation is wrapped by every rejected DCA request
var ErrInvalidSimulation = errors.New("invalid simulation request")

// maxSimulationDays bounds the chart size
const maxSimulationDays = 20 * 366

// DCARequest describes a dollar-cost-averaging plan: Amount EUR spent on Symbol every Interval
type DCARequest struct {
	Symbol   string
	Amount   decimal.Decimal
	Start    time.Time
	End      time.Time
	Interval entity.Interval
}

// DCAService simulates DCA plans against stored prices and the current EUR rate
type DCAService struct {
	prices *PriceService
	rates  domainservice.RateProvider
	logger logger.Logger
}

// NewDCAService creates a new DCA simulation service
func NewDCAService(prices *PriceService, rates domainservice.RateProvider, log logger.Logger) *DCAService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &DCAService{
		prices: prices,
		rates:  rates,
		logger: log,
	}
}

func (r *DCARequest) normalize() error {
	r.Symbol = strings.ToUpper(strings.TrimSpace(r.Symbol))
	if err := entity.ValidateSymbol(r.Symbol); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSimulation, err)
	}

	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be a positive value", ErrInvalidSimulation)
	}

	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidSimulation)
	}

	r.Start = entity.Day(r.Start)
	r.End = entity.Day(r.End)
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end date must not be before start date", ErrInvalidSimulation)
	}

	if r.End.Sub(r.Start) > maxSimulationDays*24*time.Hour {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidSimulation, maxSimulationDays)
	}

	if r.Interval == "" {
		r.Interval = entity.IntervalWeekly
	}
	if _, err := entity.ParseInterval(string(r.Interval)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSimulation, err)
	}

	return nil
}

// purchaseDate returns the n-th scheduled purchase day, counted from start.
// Monthly plans keep start's day of month, clamped to the last day of shorter months.
func purchaseDate(start time.Time, interval entity.Interval, n int) time.Time {
	switch interval {
	case entity.IntervalDaily:
		return start.AddDate(0, 0, n)
	case entity.IntervalMonthly:
		first := time.Date(start.Year(), start.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
		lastDay := first.AddDate(0, 1, -1).Day()
		return first.AddDate(0, 0, min(start.Day(), lastDay)-1)
	default:
		return start.AddDate(0, 0, 7*n)
	}
}

// Simulate buys Amount EUR of Symbol on every scheduled day that has a price and
// values the holdings in EUR on every day of the range. Scheduled days without a
// price are skipped; days without a price are valued at the last known price.
func (s *DCAService) Simulate(ctx context.Context, req DCARequest) (*entity.DCASimulation, error) {
	requestID := middleware.GetRequestID(ctx)

	if err := req.normalize(); err != nil {
		s.logger.Warn("Rejected DCA request", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Simulating DCA plan", map[string]interface{}{
		"request_id": requestID,
		"symbol":     req.Symbol,
		"amount":     req.Amount.String(),
		"start":      req.Start.Format(entity.DateLayout),
		"end":        req.End.Format(entity.DateLayout),
		"interval":   string(req.Interval),
	})

	rate, err := s.rates.GetLatestEURConversionRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversion rate: %w", err)
	}

	history, err := s.prices.GetHistoricalPrices(ctx, req.Symbol, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	result := &entity.DCASimulation{
		Symbol:        req.Symbol,
		Interval:      req.Interval,
		Amount:        req.Amount,
		Rate:          rate,
		TotalInvested: decimal.Zero,
		Units:         decimal.Zero,
		FinalValue:    decimal.Zero,
		Chart: entity.ChartData{
			Labels: make([]string, 0),
			Values: make([]decimal.Decimal, 0),
		},
	}

	units := decimal.Zero
	lastPrice := decimal.Zero
	scheduled := 0
	next := purchaseDate(req.Start, req.Interval, scheduled)

	for day := req.Start; !day.After(req.End); day = day.AddDate(0, 0, 1) {
		price, havePrice := history[day]
		if havePrice && price.IsPositive() {
			lastPrice = price.Mul(rate)
		} else {
			havePrice = false
		}

		if !day.Before(next) {
			if havePrice {
				units = units.Add(req.Amount.Div(lastPrice))
				result.TotalInvested = result.TotalInvested.Add(req.Amount)
				result.Purchases++
			}
			scheduled++
			next = purchaseDate(req.Start, req.Interval, scheduled)
		}

		result.Chart.Labels = append(result.Chart.Labels, day.Format(entity.DateLayout))
		result.Chart.Values = append(result.Chart.Values, units.Mul(lastPrice).Round(2))
	}

	result.Units = units.Round(8)
	if n := len(result.Chart.Values); n > 0 {
		result.FinalValue = result.Chart.Values[n-1]
	}

	s.logger.Info("DCA simulation completed", map[string]interface{}{
		"request_id":     requestID,
		"symbol":         req.Symbol,
		"purchases":      result.Purchases,
		"total_invested": result.TotalInvested.String(),
		"final_value":    result.FinalValue.String(),
	})

	return result, nil
}
