package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/damon-houk/exchange-rate-tracker/internal/domain/apperrors"
	"github.com/damon-houk/exchange-rate-tracker/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRateRepository keeps one document per currency in a collection named after the table
type MongoRateRepository struct {
	collection *mongo.Collection
}

// NewMongoRateRepository creates a new MongoDB rate repository
func NewMongoRateRepository(collection *mongo.Collection) *MongoRateRepository {
	return &MongoRateRepository{collection: collection}
}

// EnsureIndexes creates the unique Currency index backing the one-record-per-currency rule
func (r *MongoRateRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Currency", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create Currency index: %w", err)
	}
	return nil
}

// GetPreviousRate returns the stored rate for a currency, or nil if no record exists
func (r *MongoRateRepository) GetPreviousRate(ctx context.Context, currency string) (*float64, error) {
	var record entity.RateRecord

	err := r.collection.FindOne(ctx, bson.M{"Currency": currency}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperrors.StoreError{Op: apperrors.OpGet, Currency: currency, Err: err}
	}

	rate := record.Rate
	return &rate, nil
}

// PutRecord replaces the document for a currency, inserting it when missing
func (r *MongoRateRepository) PutRecord(ctx context.Context, currency string, rate float64, date string, previousRate *float64) error {
	record := entity.RateRecord{
		Currency:     currency,
		Rate:         rate,
		Date:         date,
		PreviousRate: previousRate,
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"Currency": currency}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return &apperrors.StoreError{Op: apperrors.OpPut, Currency: currency, Err: err}
	}

	return nil
}

// ScanAll returns every document in the collection
func (r *MongoRateRepository) ScanAll(ctx context.Context) ([]entity.RateRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, &apperrors.StoreError{Op: apperrors.OpScan, Err: err}
	}
	defer cursor.Close(ctx)

	records := make([]entity.RateRecord, 0)
	for cursor.Next(ctx) {
		var record entity.RateRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, &apperrors.StoreError{Op: apperrors.OpScan, Err: fmt.Errorf("failed to decode record: %w", err)}
		}
		records = append(records, record)
	}

	if err := cursor.Err(); err != nil {
		return nil, &apperrors.StoreError{Op: apperrors.OpScan, Err: err}
	}

	return records, nil
}
