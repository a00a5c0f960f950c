package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/damon-houk/dca-calculator/internal/domain/entity"
	"github.com/damon-houk/dca-calculator/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

// Keys are laid out as price:<SYMBOL>:<YYYY-MM-DD>:<20-digit id>, so key order
// is symbol, then calendar day, then insertion ID.
const (
	pricePrefix    = "price:"
	sequenceKey    = "seq:price"
	sequenceLeases = 1000
)

// BadgerPriceRepository implements the price repository interface using BadgerDB
type BadgerPriceRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerPriceRepository creates a new BadgerDB price repository
func NewBadgerPriceRepository(db *badger.DB) (*BadgerPriceRepository, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), sequenceLeases)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire id sequence: %w", err)
	}

	return &BadgerPriceRepository{db: db, seq: seq}, nil
}

// Close returns unused leased IDs to the database
func (r *BadgerPriceRepository) Close() error {
	return r.seq.Release()
}

func symbolPrefix(symbol string) []byte {
	return []byte(pricePrefix + symbol + ":")
}

func dayPrefix(symbol string, date time.Time) []byte {
	return []byte(pricePrefix + symbol + ":" + date.Format(entity.DateLayout) + ":")
}

func recordKey(rec *entity.PriceRecord) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%020d", pricePrefix, rec.Symbol, rec.Date.Format(entity.DateLayout), rec.ID))
}

// skipSymbol returns the first key sorting after every key of symbol
func skipSymbol(symbol string) []byte {
	return []byte(pricePrefix + symbol + ";")
}

// parseKey splits a record key into its symbol and calendar-day parts
func parseKey(key []byte) (symbol, day string, err error) {
	parts := strings.Split(strings.TrimPrefix(string(key), pricePrefix), ":")
	if len(parts) != 3 {
		return "", "", fmt.Errorf("malformed price key: %q", key)
	}
	return parts[0], parts[1], nil
}

func decodeRecord(item *badger.Item) (*entity.PriceRecord, error) {
	var rec entity.PriceRecord
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode price record %q: %w", item.Key(), err)
	}
	return &rec, nil
}

// InsertBatch stores all records in a single transaction. The caller's records
// receive their IDs and normalized dates only once the batch is committed.
func (r *BadgerPriceRepository) InsertBatch(ctx context.Context, records []*entity.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("invalid price record for %s: %w", rec.Symbol, err)
		}
	}

	stored := make([]entity.PriceRecord, len(records))
	keys := make([][]byte, len(records))
	values := make([][]byte, len(records))

	for i, rec := range records {
		id, err := r.seq.Next()
		if err != nil {
			return fmt.Errorf("failed to allocate record id: %w", err)
		}

		stored[i] = *rec
		stored[i].ID = id + 1
		stored[i].Date = entity.Day(rec.Date)

		data, err := json.Marshal(&stored[i])
		if err != nil {
			return fmt.Errorf("failed to marshal price record: %w", err)
		}

		keys[i] = recordKey(&stored[i])
		values[i] = data
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		for i := range keys {
			if err := txn.Set(keys[i], values[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store price records: %w", err)
	}

	for i, rec := range records {
		rec.ID = stored[i].ID
		rec.Date = stored[i].Date
	}

	return nil
}

// Any reports whether at least one record exists
func (r *BadgerPriceRepository) Any(ctx context.Context) (bool, error) {
	found := false

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(pricePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		found = it.ValidForPrefix(opts.Prefix)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to check price records: %w", err)
	}

	return found, nil
}

// Count returns the number of stored records
func (r *BadgerPriceRepository) Count(ctx context.Context) (int, error) {
	count := 0

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(pricePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count price records: %w", err)
	}

	return count, nil
}

// Symbols maps every distinct symbol to the name on its first record
func (r *BadgerPriceRepository) Symbols(ctx context.Context) (map[string]string, error) {
	symbols := make(map[string]string)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(pricePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Rewind()
		for it.ValidForPrefix(opts.Prefix) {
			rec, err := decodeRecord(it.Item())
			if err != nil {
				return err
			}
			symbols[rec.Symbol] = rec.Name

			it.Seek(skipSymbol(rec.Symbol))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}

	return symbols, nil
}

// FindLatest returns the record with the most recent date for a symbol
func (r *BadgerPriceRepository) FindLatest(ctx context.Context, symbol string) (*entity.PriceRecord, error) {
	var rec *entity.PriceRecord

	err := r.db.View(func(txn *badger.Txn) error {
		prefix := symbolPrefix(symbol)

		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(append([]byte{}, prefix...), 0xFF))
		if !it.ValidForPrefix(prefix) {
			return repository.ErrPriceNotFound
		}

		var err error
		rec, err = decodeRecord(it.Item())
		return err
	})
	if errors.Is(err, repository.ErrPriceNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve latest price for %s: %w", symbol, err)
	}

	return rec, nil
}

// FindByDate returns the first record for a symbol on the given calendar day
func (r *BadgerPriceRepository) FindByDate(ctx context.Context, symbol string, date time.Time) (*entity.PriceRecord, error) {
	var rec *entity.PriceRecord

	err := r.db.View(func(txn *badger.Txn) error {
		prefix := dayPrefix(symbol, date)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(prefix)
		if !it.ValidForPrefix(prefix) {
			return repository.ErrPriceNotFound
		}

		var err error
		rec, err = decodeRecord(it.Item())
		return err
	})
	if errors.Is(err, repository.ErrPriceNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve price for %s on %s: %w", symbol, date.Format(entity.DateLayout), err)
	}

	return rec, nil
}

// FindRange returns the records for the symbols whose calendar day is within [start, end]
func (r *BadgerPriceRepository) FindRange(ctx context.Context, symbols []string, start, end time.Time) ([]*entity.PriceRecord, error) {
	first := start.Format(entity.DateLayout)
	last := end.Format(entity.DateLayout)

	records := make([]*entity.PriceRecord, 0)
	if first > last {
		return records, nil
	}

	ordered := uniqueSorted(symbols)

	err := r.db.View(func(txn *badger.Txn) error {
		for _, symbol := range ordered {
			prefix := symbolPrefix(symbol)

			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix

			it := txn.NewIterator(opts)
			for it.Seek(append(append([]byte{}, prefix...), first...)); it.ValidForPrefix(prefix); it.Next() {
				if err := ctx.Err(); err != nil {
					it.Close()
					return err
				}

				_, day, err := parseKey(it.Item().Key())
				if err != nil {
					it.Close()
					return err
				}
				if day > last {
					break
				}

				rec, err := decodeRecord(it.Item())
				if err != nil {
					it.Close()
					return err
				}
				records = append(records, rec)
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve prices between %s and %s: %w", first, last, err)
	}

	return records, nil
}

// OldestDate returns the earliest recorded date across all symbols
func (r *BadgerPriceRepository) OldestDate(ctx context.Context) (time.Time, error) {
	oldest := ""

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(pricePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// The first key of each symbol carries that symbol's oldest day
		it.Rewind()
		for it.ValidForPrefix(opts.Prefix) {
			key := it.Item().Key()
			symbol, day, err := parseKey(key)
			if err != nil {
				return err
			}
			if oldest == "" || day < oldest {
				oldest = day
			}

			it.Seek(skipSymbol(symbol))
		}
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to find oldest date: %w", err)
	}

	if oldest == "" {
		return time.Time{}, repository.ErrPriceNotFound
	}

	date, err := time.Parse(entity.DateLayout, oldest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse oldest date %q: %w", oldest, err)
	}

	return date, nil
}

func uniqueSorted(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

var _ repository.PriceRepository = (*BadgerPriceRepository)(nil)
