package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/redis/go-redis/v9"
)

// scanBatchSize is the COUNT hint passed to SCAN
const scanBatchSize = 100

// RedisRateRepository stores one JSON value per currency under "<table>:<currency>"
type RedisRateRepository struct {
	client *redis.Client
	table  string
}

// NewRedisRateRepository creates a new Redis rate repository for the given table
func NewRedisRateRepository(client *redis.Client, table string) *RedisRateRepository {
	return &RedisRateRepository{
		client: client,
		table:  table,
	}
}

func (r *RedisRateRepository) key(currency string) string {
	return r.table + ":" + currency
}

// globEscaper quotes the characters SCAN MATCH treats as pattern syntax
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// scanPattern matches every key of the table, whatever characters the table name holds
func scanPattern(table string) string {
	return globEscaper.Replace(table) + ":*"
}

// unseenKeys filters batch down to keys not yet in seen and records them
func unseenKeys(seen map[string]struct{}, batch []string) []string {
	keys := make([]string, 0, len(batch))
	for _, key := range batch {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// GetPreviousRate returns the stored rate for a currency, or nil if no record exists
func (r *RedisRateRepository) GetPreviousRate(ctx context.Context, currency string) (*float64, error) {
	val, err := r.client.Get(ctx, r.key(currency)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperrors.StoreError{Op: apperrors.OpGet, Currency: currency, Err: err}
	}

	var record entity.RateRecord
	if err := json.Unmarshal(val, &record); err != nil {
		return nil, &apperrors.StoreError{Op: apperrors.OpGet, Currency: currency, Err: fmt.Errorf("failed to decode record: %w", err)}
	}

	rate := record.Rate
	return &rate, nil
}

// PutRecord overwrites the record for a currency
func (r *RedisRateRepository) PutRecord(ctx context.Context, currency string, rate float64, date string, previousRate *float64) error {
	data, err := json.Marshal(entity.RateRecord{
		Currency:     currency,
		Rate:         rate,
		Date:         date,
		PreviousRate: previousRate,
	})
	if err != nil {
		return &apperrors.StoreError{Op: apperrors.OpPut, Currency: currency, Err: fmt.Errorf("failed to marshal record: %w", err)}
	}

	if err := r.client.Set(ctx, r.key(currency), data, 0).Err(); err != nil {
		return &apperrors.StoreError{Op: apperrors.OpPut, Currency: currency, Err: err}
	}

	return nil
}

// ScanAll walks the table's key space with SCAN and loads each batch with MGET.
// Keys removed between the two calls are skipped. SCAN may return a key more than once,
// so keys already loaded are dropped.
func (r *RedisRateRepository) ScanAll(ctx context.Context) ([]entity.RateRecord, error) {
	records := make([]entity.RateRecord, 0)
	seen := make(map[string]struct{})
	pattern := scanPattern(r.table)
	var cursor uint64

	for {
		batch, next, err := r.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, &apperrors.StoreError{Op: apperrors.OpScan, Err: err}
		}

		keys := unseenKeys(seen, batch)

		if len(keys) > 0 {
			values, err := r.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, &apperrors.StoreError{Op: apperrors.OpScan, Err: err}
			}

			for i, value := range values {
				raw, ok := value.(string)
				if !ok {
					continue
				}

				var record entity.RateRecord
				if err := json.Unmarshal([]byte(raw), &record); err != nil {
					return nil, &apperrors.StoreError{Op: apperrors.OpScan, Err: fmt.Errorf("failed to decode record %s: %w", keys[i], err)}
				}

				records = append(records, record)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return records, nil
}
