package handler

import (
	"github.com/shopspring/decimal"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// CryptocurrenciesResponse maps every known symbol to its display name
type CryptocurrenciesResponse struct {
	Cryptocurrencies map[string]string `json:"cryptocurrencies"`
}

// PriceResponse represents a single price lookup. Price is zero when Found is false.
type PriceResponse struct {
	Symbol string          `json:"symbol"`
	Date   string          `json:"date,omitempty"`
	Price  decimal.Decimal `json:"price"`
	Found  bool            `json:"found"`
}

// LatestPricesResponse maps each requested symbol to its latest price
type LatestPricesResponse struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}

// HistoryResponse maps calendar days (YYYY-MM-DD) to prices for one symbol
type HistoryResponse struct {
	Symbol string                     `json:"symbol"`
	Start  string                     `json:"start"`
	End    string                     `json:"end"`
	Prices map[string]decimal.Decimal `json:"prices"`
}

// MultiHistoryResponse maps symbols to their day to price mappings
type MultiHistoryResponse struct {
	Start  string                                `json:"start"`
	End    string                                `json:"end"`
	Prices map[string]map[string]decimal.Decimal `json:"prices"`
}

// OldestDateResponse carries the earliest recorded day, empty when nothing is stored
type OldestDateResponse struct {
	OldestDate string `json:"oldest_date"`
}

// RateResponse represents a conversion rate from Base to Currency
type RateResponse struct {
	Base     string          `json:"base"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
}
