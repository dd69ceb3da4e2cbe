package models

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Customer and Truck are name-only reference entities. Rows are created
// lazily the first time a voucher mentions the name and reused forever
// after; nothing in the application deletes them.

type Customer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type Truck struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

var ErrEmptyReferenceName = errors.New("reference name is required")

// FindOrCreateCustomer resolves a customer name to its row id, creating
// the row on first use. Both the migration pipeline and the normal
// invoice-creation path go through here.
func (s *Store) FindOrCreateCustomer(ctx context.Context, name string) (primitive.ObjectID, error) {
	return s.findOrCreateByName(ctx, customersCollection, name)
}

func (s *Store) FindOrCreateTruck(ctx context.Context, name string) (primitive.ObjectID, error) {
	return s.findOrCreateByName(ctx, trucksCollection, name)
}

// findOrCreateByName is the find-or-create primitive: look up by the
// unique name, insert when absent, and on a lost creation race (the
// unique index rejects our insert) re-read the winner's row. Repeated
// calls with one name always return one identity.
func (s *Store) findOrCreateByName(ctx context.Context, collection string, name string) (primitive.ObjectID, error) {
	if name == "" {
		return primitive.NilObjectID, ErrEmptyReferenceName
	}

	col := s.db.Collection(collection)

	var existing struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := col.FindOne(ctx, bson.M{"name": name}).Decode(&existing)
	if err == nil {
		return existing.ID, nil
	}
	if err != mongo.ErrNoDocuments {
		return primitive.NilObjectID, err
	}

	id := primitive.NewObjectID()
	_, err = col.InsertOne(ctx, bson.M{
		"_id":        id,
		"name":       name,
		"created_at": time.Now(),
	})
	if err == nil {
		return id, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, err
	}

	// Someone else created the row between our read and insert.
	if err := col.FindOne(ctx, bson.M{"name": name}).Decode(&existing); err != nil {
		return primitive.NilObjectID, err
	}
	return existing.ID, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]Customer, error) {
	cur, err := s.db.Collection(customersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var customers []Customer
	if err := cur.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) ListTrucks(ctx context.Context) ([]Truck, error) {
	cur, err := s.db.Collection(trucksCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var trucks []Truck
	if err := cur.All(ctx, &trucks); err != nil {
		return nil, err
	}
	return trucks, nil
}
