package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/domain/service"
	"github.com/damon-houk/dca-calculator/internal/infrastructure/logger"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const (
	baseCurrency = "USD"
	euroCurrency = "EUR"
)

// RateAPIClient fetches USD-based conversion rates from a JSON rate feed.
// Every call is a fresh round trip: no retries, no caching.
type RateAPIClient struct {
	url    string
	client *resty.Client
	logger logger.Logger
}

// NewRateAPIClient creates a new rate feed client for the given endpoint
func NewRateAPIClient(url string, log logger.Logger) *RateAPIClient {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	client := resty.New()
	client.SetHeader("Accept", "application/json")

	return &RateAPIClient{
		url:    url,
		client: client,
		logger: log,
	}
}

// RatesResponse represents the part of the rate feed document we read.
// encoding/json matches the "rates" field case-insensitively.
type RatesResponse struct {
	Base  string                     `json:"base_code"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// GetLatestRates retrieves the current USD-based rate table
func (c *RateAPIClient) GetLatestRates(ctx context.Context) (*entity.ConversionRate, error) {
	c.logger.Debug("Fetching conversion rates", map[string]interface{}{
		"url": c.url,
	})

	resp, err := c.client.R().SetContext(ctx).Get(c.url)
	if err != nil {
		c.logger.Error("Rate feed request failed", map[string]interface{}{
			"url":   c.url,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: failed to execute request: %v", service.ErrRateUnavailable, err)
	}

	if resp.IsError() {
		c.logger.Error("Rate feed returned error status", map[string]interface{}{
			"url":    c.url,
			"status": resp.StatusCode(),
		})
		return nil, fmt.Errorf("%w: API returned error status: %d", service.ErrRateUnavailable, resp.StatusCode())
	}

	var ratesResp RatesResponse
	if err := json.Unmarshal(resp.Body(), &ratesResp); err != nil {
		c.logger.Error("Failed to decode rate feed", map[string]interface{}{
			"url":   c.url,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: failed to decode response: %v", service.ErrRateUnavailable, err)
	}

	if ratesResp.Rates == nil {
		return nil, fmt.Errorf("%w: response has no rates", service.ErrRateUnavailable)
	}

	base := ratesResp.Base
	if base == "" {
		base = baseCurrency
	}

	return &entity.ConversionRate{
		Base:  base,
		Rates: ratesResp.Rates,
	}, nil
}

// GetLatestEURConversionRate retrieves the current USD to EUR rate
func (c *RateAPIClient) GetLatestEURConversionRate(ctx context.Context) (decimal.Decimal, error) {
	rates, err := c.GetLatestRates(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	rate, ok := rates.Rate(euroCurrency)
	if !ok {
		c.logger.Warn("EUR missing from rate feed", map[string]interface{}{
			"url":        c.url,
			"currencies": len(rates.Rates),
		})
		return decimal.Zero, fmt.Errorf("%w: no %s rate in response", service.ErrRateUnavailable, euroCurrency)
	}

	if !rate.IsPositive() {
		c.logger.Warn("Unusable EUR rate in feed", map[string]interface{}{
			"url":  c.url,
			"rate": rate.String(),
		})
		return decimal.Zero, fmt.Errorf("%w: non-positive %s rate %s", service.ErrRateUnavailable, euroCurrency, rate)
	}

	c.logger.Info("EUR conversion rate fetched", map[string]interface{}{
		"rate": rate.String(),
	})

	return rate, nil
}

var _ service.RateProvider = (*RateAPIClient)(nil)
