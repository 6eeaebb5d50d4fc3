package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestIngestThenReport(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rates": {"USD": 1.1, "JPY": 150.0}, "base": "EUR"}`))
	}))
	defer source.Close()

	t.Setenv("STORE_BACKEND", "badger")
	t.Setenv("BADGER_PATH", filepath.Join(t.TempDir(), "data"))
	t.Setenv("RATES_SOURCE_URL", source.URL)
	t.Setenv("LOG_LEVEL", "error")

	out, err := runCommand(t, "ingest")
	require.NoError(t, err)
	assert.Contains(t, out, "Rates fetched and updated successfully!")

	out, err = runCommand(t, "report")
	require.NoError(t, err)

	var report entity.RateReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, entity.RateChange{Current: 1.1}, report.Rates["USD"])
	assert.Equal(t, entity.RateChange{Current: 150.0}, report.Rates["JPY"])
}

func TestIngestFetchFailure(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer source.Close()

	t.Setenv("STORE_BACKEND", "badger")
	t.Setenv("BADGER_PATH", filepath.Join(t.TempDir(), "data"))
	t.Setenv("RATES_SOURCE_URL", source.URL)
	t.Setenv("LOG_LEVEL", "error")

	out, err := runCommand(t, "ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch exchange rates")
	assert.Contains(t, out, "Failed to fetch exchange rates")
}

func TestInvalidConfiguration(t *testing.T) {
	t.Setenv("STORE_BACKEND", "dynamodb")

	_, err := runCommand(t, "report")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestDebugFlagOverridesLogLevel(t *testing.T) {
	t.Setenv("STORE_BACKEND", "badger")
	t.Setenv("BADGER_PATH", filepath.Join(t.TempDir(), "data"))
	t.Setenv("LOG_LEVEL", "error")

	a, err := newApp(context.Background(), &rootOptions{})
	require.NoError(t, err)
	assert.Equal(t, logger.ErrorLevel, a.logger.Level())
	a.Close()

	a, err = newApp(context.Background(), &rootOptions{debug: true})
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, logger.DebugLevel, a.logger.Level())
}
