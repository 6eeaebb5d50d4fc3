package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/dgraph-io/badger/v3"
)

// BadgerRateRepository implements the rate repository interface using BadgerDB.
// Records live under the key "<table>:<currency>".
type BadgerRateRepository struct {
	db     *badger.DB
	prefix []byte
}

// NewBadgerRateRepository creates a new BadgerDB rate repository for the given table
func NewBadgerRateRepository(db *badger.DB, table string) *BadgerRateRepository {
	return &BadgerRateRepository{
		db:     db,
		prefix: []byte(table + ":"),
	}
}

func (r *BadgerRateRepository) key(currency string) []byte {
	key := make([]byte, 0, len(r.prefix)+len(currency))
	key = append(key, r.prefix...)
	return append(key, currency...)
}

// GetPreviousRate returns the stored rate for a currency, or nil if no record exists
func (r *BadgerRateRepository) GetPreviousRate(ctx context.Context, currency string) (*float64, error) {
	var record entity.RateRecord

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(r.key(currency))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, &apperrors.StoreError{Op: apperrors.OpGet, Currency: currency, Err: err}
	}

	rate := record.Rate
	return &rate, nil
}

// PutRecord overwrites the record for a currency
func (r *BadgerRateRepository) PutRecord(ctx context.Context, currency string, rate float64, date string, previousRate *float64) error {
	record := entity.RateRecord{
		Currency:     currency,
		Rate:         rate,
		Date:         date,
		PreviousRate: previousRate,
	}

	// Serialize record to JSON
	data, err := json.Marshal(record)
	if err != nil {
		return &apperrors.StoreError{Op: apperrors.OpPut, Currency: currency, Err: fmt.Errorf("failed to marshal record: %w", err)}
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.key(currency), data)
	})

	if err != nil {
		return &apperrors.StoreError{Op: apperrors.OpPut, Currency: currency, Err: err}
	}

	return nil
}

// ScanAll returns every record stored under the table prefix
func (r *BadgerRateRepository) ScanAll(ctx context.Context) ([]entity.RateRecord, error) {
	records := make([]entity.RateRecord, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = r.prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			var record entity.RateRecord
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("failed to decode record %s: %w", item.Key(), err)
			}

			records = append(records, record)
		}

		return nil
	})

	if err != nil {
		return nil, &apperrors.StoreError{Op: apperrors.OpScan, Err: err}
	}

	return records, nil
}
