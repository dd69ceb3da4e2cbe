package models

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateKey marks unique-index violations so callers can branch on
// them without importing the driver.
var ErrDuplicateKey = errors.New("duplicate key")

var ErrRecordNotFound = errors.New("record not found")

const (
	usersCollection          = "users"
	vouchersCollection       = "vouchers"
	voucherDetailsCollection = "voucher_details"
	customersCollection      = "customers"
	trucksCollection         = "trucks"
)

// Store is the application's handle on the document store. All reads and
// writes go through it; an explicit handle (instead of a package global)
// keeps the data layer swappable in tests.
type Store struct {
	db *mongo.Database
}

func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the unique indexes the application relies on:
// one login code per user, one row per customer/truck name. Safe to call
// on every startup; existing indexes are a no-op.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	uniqueSpecs := []struct {
		collection string
		field      string
	}{
		{usersCollection, "login_code"},
		{customersCollection, "name"},
		{trucksCollection, "name"},
	}
	for _, spec := range uniqueSpecs {
		_, err := s.db.Collection(spec.collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: spec.field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("index %s.%s: %w", spec.collection, spec.field, err)
		}
	}

	// Details are always fetched by parent voucher.
	_, err := s.db.Collection(voucherDetailsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "voucher_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("index %s.voucher_id: %w", voucherDetailsCollection, err)
	}
	return nil
}

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}
