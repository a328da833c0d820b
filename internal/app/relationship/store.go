/*
Package relationship maintains the bidirectional friendship graph.

This file defines the Store interface the Service persists through, and the
MongoDB implementation. UpdatePair is the critical contract: both mirrored
records are written inside one transaction so the graph can never be observed
with only one half of an edge applied.
*/
package relationship

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrPartialWrite is returned by Store implementations that cannot roll back
// after the first half of a pair write succeeded and the second failed. The
// Service escalates it to a fatal integrity fault.
var ErrPartialWrite = errors.New("relationship: pair write applied only one record")

// Store is the persistence boundary for relationship records.
type Store interface {
	// Get returns the record for the user, or nil if none exists yet.
	Get(ctx context.Context, userID string) (*Record, error)

	// UpdatePair persists both records atomically: both writes apply or
	// neither does. Implementations that cannot guarantee atomicity must
	// return ErrPartialWrite when the pair diverges.
	UpdatePair(ctx context.Context, a, b *Record) error
}

// relationshipsCollection is the MongoDB collection name.
const relationshipsCollection = "relationships"

// MongoStore persists relationship records in MongoDB.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore returns a MongoStore bound to the relationships collection.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: database.Collection(relationshipsCollection),
	}
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, userID string) (*Record, error) {
	var rec Record
	err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdatePair implements Store. Both upserts run inside one transaction; the
// driver aborts the transaction if either write fails, so a partial pair is
// never committed.
func (s *MongoStore) UpdatePair(ctx context.Context, a, b *Record) error {
	session, err := s.collection.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		if err := s.upsert(sc, a); err != nil {
			return nil, err
		}
		if err := s.upsert(sc, b); err != nil {
			return nil, err
		}
		return nil, nil
	})

	return err
}

func (s *MongoStore) upsert(ctx context.Context, rec *Record) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"userId": rec.UserID}, rec, opts)
	return err
}
