// Package repository internal/domain/repository/price_repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
)

// ErrPriceNotFound is returned when no record matches a single-record lookup
var ErrPriceNotFound = errors.New("price not found")

// PriceRepository defines the interface for price record storage.
// Returned records are ordered by symbol, then date, then ID.
type PriceRepository interface {
	// InsertBatch stores all records or none of them, assigning their IDs
	InsertBatch(ctx context.Context, records []*entity.PriceRecord) error

	// Any reports whether at least one record exists
	Any(ctx context.Context) (bool, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int, error)

	// Symbols maps every distinct symbol to the name on its first record
	Symbols(ctx context.Context) (map[string]string, error)

	// FindLatest returns the record with the most recent date for a symbol
	FindLatest(ctx context.Context, symbol string) (*entity.PriceRecord, error)

	// FindByDate returns the first record for a symbol on the given calendar day
	FindByDate(ctx context.Context, symbol string, date time.Time) (*entity.PriceRecord, error)

	// FindRange returns the records for the symbols whose calendar day is within [start, end]
	FindRange(ctx context.Context, symbols []string, start, end time.Time) ([]*entity.PriceRecord, error)

	// OldestDate returns the earliest recorded date; ErrPriceNotFound when the store is empty
	OldestDate(ctx context.Context) (time.Time, error)
}
