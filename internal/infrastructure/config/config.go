// Package config internal/infrastructure/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSourceURL is the rate source queried when RATES_SOURCE_URL is not set
const DefaultSourceURL = "https://exchangerates.api.eurocentralbank.org/latest"

// Store backends
const (
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config holds application configuration.
type Config struct {
	Port string `validate:"required,numeric"`

	// TableName identifies the key space holding the rate records
	TableName    string `validate:"required"`
	StoreBackend string `validate:"required,oneof=badger redis mongo"`
	BadgerPath   string `validate:"required_if=StoreBackend badger"`

	RedisAddr     string `validate:"required_if=StoreBackend redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	MongoURI      string `validate:"required_if=StoreBackend mongo"`
	MongoDatabase string `validate:"required_if=StoreBackend mongo"`

	SourceURL     string        `validate:"required,url"`
	SourceTimeout time.Duration `validate:"gt=0"`

	LogLevel logger.Level
}

// Load reads configuration from the environment, a .env file if present, and
// configFile when it is not empty. Environment variables win over the file.
func Load(configFile string) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("TABLE_NAME", "ExchangeRates")
	v.SetDefault("STORE_BACKEND", BackendBadger)
	v.SetDefault("BADGER_PATH", "./data")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "exchange_rates")
	v.SetDefault("RATES_SOURCE_URL", DefaultSourceURL)
	v.SetDefault("RATES_SOURCE_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", string(logger.InfoLevel))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	v.AutomaticEnv()

	level, err := logger.ParseLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Port:          v.GetString("PORT"),
		TableName:     v.GetString("TABLE_NAME"),
		StoreBackend:  v.GetString("STORE_BACKEND"),
		BadgerPath:    v.GetString("BADGER_PATH"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		MongoURI:      v.GetString("MONGO_URI"),
		MongoDatabase: v.GetString("MONGO_DATABASE"),
		SourceURL:     v.GetString("RATES_SOURCE_URL"),
		SourceTimeout: v.GetDuration("RATES_SOURCE_TIMEOUT"),
		LogLevel:      level,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
