// internal/infrastructure/db/badger_rate_repository_test.go
package db

import (
	"context"
	"errors"
	"testing"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBadger(t *testing.T) *badger.DB {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	badgerDB, err := badger.Open(opts)
	require.NoError(t, err)

	t.Cleanup(func() {
		badgerDB.Close()
	})

	return badgerDB
}

func float(v float64) *float64 {
	return &v
}

func TestBadgerRateRepository(t *testing.T) {
	repo := NewBadgerRateRepository(openTestBadger(t), "ExchangeRates")
	ctx := context.Background()

	t.Run("Previous rate of unknown currency is nil", func(t *testing.T) {
		rate, err := repo.GetPreviousRate(ctx, "EUR")
		assert.NoError(t, err)
		assert.Nil(t, rate)
	})

	t.Run("Put then get", func(t *testing.T) {
		require.NoError(t, repo.PutRecord(ctx, "USD", 1.2, "2023-10-13", float(1.1)))

		rate, err := repo.GetPreviousRate(ctx, "USD")
		require.NoError(t, err)
		require.NotNil(t, rate)
		assert.Equal(t, 1.2, *rate)
	})

	t.Run("Put overwrites", func(t *testing.T) {
		require.NoError(t, repo.PutRecord(ctx, "USD", 1.3, "2023-10-14", float(1.2)))

		records, err := repo.ScanAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, entity.RateRecord{Currency: "USD", Rate: 1.3, Date: "2023-10-14", PreviousRate: float(1.2)}, records[0])
	})

	t.Run("Scan returns every record", func(t *testing.T) {
		require.NoError(t, repo.PutRecord(ctx, "JPY", 150.0, "2023-10-14", nil))

		records, err := repo.ScanAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []entity.RateRecord{
			{Currency: "USD", Rate: 1.3, Date: "2023-10-14", PreviousRate: float(1.2)},
			{Currency: "JPY", Rate: 150.0, Date: "2023-10-14"},
		}, records)
	})
}

func TestBadgerRateRepositoryTablesAreIsolated(t *testing.T) {
	badgerDB := openTestBadger(t)
	ctx := context.Background()

	rates := NewBadgerRateRepository(badgerDB, "ExchangeRates")
	other := NewBadgerRateRepository(badgerDB, "ExchangeRatesStaging")

	require.NoError(t, rates.PutRecord(ctx, "USD", 1.1, "2023-10-13", nil))

	records, err := other.ScanAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	rate, err := other.GetPreviousRate(ctx, "USD")
	require.NoError(t, err)
	assert.Nil(t, rate)
}

func TestBadgerRateRepositoryStoredShape(t *testing.T) {
	badgerDB := openTestBadger(t)
	repo := NewBadgerRateRepository(badgerDB, "ExchangeRates")
	ctx := context.Background()

	require.NoError(t, repo.PutRecord(ctx, "EUR", 0.9, "2023-10-13", nil))

	var raw string
	err := badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("ExchangeRates:EUR"))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		raw = string(val)
		return err
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Currency":"EUR","Rate":0.9,"Date":"2023-10-13"}`, raw)
}

func TestBadgerRateRepositoryScanReturnsStoredContent(t *testing.T) {
	badgerDB := openTestBadger(t)
	repo := NewBadgerRateRepository(badgerDB, "ExchangeRates")
	ctx := context.Background()

	// Content checks belong to the reader, the scan hands back what is stored
	require.NoError(t, repo.PutRecord(ctx, "XAU", 0, "2023-10-12", nil))
	require.NoError(t, repo.PutRecord(ctx, "USD", 1.1, "2023-10-13", float(1.0)))

	records, err := repo.ScanAll(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []entity.RateRecord{
		{Currency: "XAU", Rate: 0, Date: "2023-10-12"},
		{Currency: "USD", Rate: 1.1, Date: "2023-10-13", PreviousRate: float(1.0)},
	}, records)
}

func TestBadgerRateRepositoryScanRejectsUndecodableValue(t *testing.T) {
	badgerDB := openTestBadger(t)
	repo := NewBadgerRateRepository(badgerDB, "ExchangeRates")

	err := badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("ExchangeRates:XXX"), []byte(`{"Currency":"XXX","Rate":"high"}`))
	})
	require.NoError(t, err)

	records, err := repo.ScanAll(context.Background())
	assert.Nil(t, records)

	var storeErr *apperrors.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, apperrors.OpScan, storeErr.Op)
	assert.Contains(t, err.Error(), "error fetching rates from store")
}

func TestBadgerRateRepositoryClosedDB(t *testing.T) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	badgerDB, err := badger.Open(opts)
	require.NoError(t, err)
	require.NoError(t, badgerDB.Close())

	repo := NewBadgerRateRepository(badgerDB, "ExchangeRates")
	ctx := context.Background()

	err = repo.PutRecord(ctx, "EUR", 0.9, "2023-10-13", nil)
	var storeErr *apperrors.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, apperrors.OpPut, storeErr.Op)
	assert.Equal(t, "EUR", storeErr.Currency)
	assert.Contains(t, err.Error(), "error updating rate for EUR")
}
