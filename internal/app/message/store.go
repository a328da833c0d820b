/*
Package message defines persisted chat messages and their store.

This file defines the Store interface and its MongoDB implementation. Queries
return messages in persistence order, which is what the dispatcher's per-room
ordering guarantee is built on.
*/
package message

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the persistence boundary for messages.
type Store interface {
	// Insert persists a new message, assigning its id and timestamp.
	Insert(ctx context.Context, m *Message) error

	// ListConversation returns all direct messages between two users in
	// persistence order.
	ListConversation(ctx context.Context, a, b string) ([]Message, error)

	// ListGroup returns all messages of a group in persistence order.
	ListGroup(ctx context.Context, groupID string) ([]Message, error)
}

// messagesCollection is the MongoDB collection name.
const messagesCollection = "messages"

// MongoStore persists messages in MongoDB.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore returns a MongoStore bound to the messages collection.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: database.Collection(messagesCollection),
	}
}

// Insert implements Store.
func (s *MongoStore) Insert(ctx context.Context, m *Message) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.collection.InsertOne(ctx, m)
	return err
}

// ListConversation implements Store.
func (s *MongoStore) ListConversation(ctx context.Context, a, b string) ([]Message, error) {
	filter := bson.M{
		"targetKind": TargetUser,
		"$or": bson.A{
			bson.M{"senderId": a, "targetId": b},
			bson.M{"senderId": b, "targetId": a},
		},
	}
	return s.list(ctx, filter)
}

// ListGroup implements Store.
func (s *MongoStore) ListGroup(ctx context.Context, groupID string) ([]Message, error) {
	filter := bson.M{
		"targetKind": TargetGroup,
		"targetId":   groupID,
	}
	return s.list(ctx, filter)
}

func (s *MongoStore) list(ctx context.Context, filter bson.M) ([]Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
