package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type User struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Email       string              `bson:"email" json:"email"`
	Phone       string              `bson:"phone" json:"phone"`
	Password    string              `bson:"password" json:"-"`
	LoginCode   string              `bson:"login_code" json:"login_code"`
	CreatedByID *primitive.ObjectID `bson:"created_by_id,omitempty" json:"created_by_id,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	_, err := s.db.Collection(usersCollection).InsertOne(ctx, user)
	return translateWriteError(err)
}

// CreateUsers bulk-inserts users in one ordered write. A unique-index
// violation (already-migrated login codes) surfaces as ErrDuplicateKey.
func (s *Store) CreateUsers(ctx context.Context, users []User) (int, error) {
	if len(users) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, 0, len(users))
	for i := range users {
		docs = append(docs, users[i])
	}
	res, err := s.db.Collection(usersCollection).InsertMany(ctx, docs)
	if err != nil {
		inserted := 0
		if res != nil {
			inserted = len(res.InsertedIDs)
		}
		return inserted, translateWriteError(err)
	}
	return len(res.InsertedIDs), nil
}

// UserByIdentifier looks a user up by email, login code or phone, the
// three identifiers accepted at login.
func (s *Store) UserByIdentifier(ctx context.Context, identifier string) (*User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"login_code": identifier},
		bson.M{"phone": identifier},
	}}
	var user User
	err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	var user User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UserIDByLoginCode(ctx context.Context, code string) (primitive.ObjectID, error) {
	var user struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	err := s.db.Collection(usersCollection).
		FindOne(ctx, bson.M{"login_code": code}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return primitive.NilObjectID, ErrRecordNotFound
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (s *Store) LoginCodeExists(ctx context.Context, code string) (bool, error) {
	count, err := s.db.Collection(usersCollection).
		CountDocuments(ctx, bson.M{"login_code": code})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
