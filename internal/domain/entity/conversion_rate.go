package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ConversionRate is a currency rate table relative to a base currency.
// It is never persisted.
type ConversionRate struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Rate returns the rate for a currency code, matching the code case-insensitively
func (c *ConversionRate) Rate(currency string) (decimal.Decimal, bool) {
	if rate, ok := c.Rates[currency]; ok {
		return rate, true
	}

	for code, rate := range c.Rates {
		if strings.EqualFold(code, currency) {
			return rate, true
		}
	}

	return decimal.Zero, false
}
