package entity

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-day format used for keys, labels and query parameters
const DateLayout = "2006-01-02"

const (
	maxNameLength   = 100
	maxSymbolLength = 10
)

// PriceRecord represents the price of a cryptocurrency on a single calendar day
type PriceRecord struct {
	ID     uint64          `json:"id"`
	Name   string          `json:"name"`
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Date   time.Time       `json:"date"`
}

// Validate ensures the record meets all storage requirements
func (p *PriceRecord) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}

	if utf8.RuneCountInString(p.Name) > maxNameLength {
		return errors.New("name must not exceed 100 characters")
	}

	if err := ValidateSymbol(p.Symbol); err != nil {
		return err
	}

	if p.Price.IsNegative() {
		return errors.New("price must not be negative")
	}

	if p.Date.IsZero() {
		return errors.New("date is required")
	}

	return nil
}

// ValidateSymbol checks that a ticker symbol can be stored and queried
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return errors.New("symbol is required")
	}

	if utf8.RuneCountInString(symbol) > maxSymbolLength {
		return errors.New("symbol must not exceed 10 characters")
	}

	if strings.Contains(symbol, ":") {
		return errors.New("symbol must not contain ':'")
	}

	return nil
}

// Day truncates t to midnight UTC of its own calendar day.
// The wall-clock date in t's location is kept, so 2024-01-01T23:30+02:00 stays 2024-01-01.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
