package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/repository"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/config"
	"github.com/damon-houk/exchange-rate-tracker/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrUnknownBackend is returned for a STORE_BACKEND value with no implementation
var ErrUnknownBackend = errors.New("unknown store backend")

const connectTimeout = 5 * time.Second

// Open connects the configured backend and returns its repository and a function releasing it
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.RateRepository, func() error, error) {
	log = log.WithFields(map[string]interface{}{
		"backend": cfg.StoreBackend,
		"table":   cfg.TableName,
	})

	switch cfg.StoreBackend {
	case config.BackendBadger:
		return openBadger(cfg, log)
	case config.BackendRedis:
		return openRedis(ctx, cfg, log)
	case config.BackendMongo:
		return openMongo(ctx, cfg, log)
	}

	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.StoreBackend)
}

func openBadger(cfg *config.Config, log logger.Logger) (repository.RateRepository, func() error, error) {
	if err := os.MkdirAll(cfg.BadgerPath, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	badgerOpts := badger.DefaultOptions(cfg.BadgerPath)
	badgerOpts.Logger = nil // Disable Badger's default logger

	badgerDB, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	log.Info("Rate store opened", map[string]interface{}{"path": cfg.BadgerPath})

	return NewBadgerRateRepository(badgerDB, cfg.TableName), badgerDB.Close, nil
}

func openRedis(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.RateRepository, func() error, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("Rate store opened", map[string]interface{}{"addr": cfg.RedisAddr})

	return NewRedisRateRepository(client, cfg.TableName), client.Close, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.RateRepository, func() error, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	disconnect := func() error {
		return client.Disconnect(context.Background())
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	repo := NewMongoRateRepository(client.Database(cfg.MongoDatabase).Collection(cfg.TableName))
	if err := repo.EnsureIndexes(connectCtx); err != nil {
		disconnect()
		return nil, nil, err
	}

	log.Info("Rate store opened", map[string]interface{}{"database": cfg.MongoDatabase})

	return repo, disconnect, nil
}
