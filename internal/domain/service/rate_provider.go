package service

import (
	"context"
	"errors"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ErrRateUnavailable is wrapped by every failure to obtain a conversion rate
var ErrRateUnavailable = errors.New("conversion rate unavailable")

// RateProvider defines the interface for fetching USD-based conversion rates
type RateProvider interface {
	// GetLatestRates retrieves the current rate table
	GetLatestRates(ctx context.Context) (*entity.ConversionRate, error)

	// GetLatestEURConversionRate retrieves the current USD to EUR rate.
	// A returned rate is always positive; anything else is ErrRateUnavailable.
	GetLatestEURConversionRate(ctx context.Context) (decimal.Decimal, error)
}
