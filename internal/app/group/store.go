/*
Package group manages chat groups.

This file defines the Store interface and its MongoDB implementation.
*/
package group

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the persistence boundary for groups.
type Store interface {
	// Insert persists a new group and assigns its id.
	Insert(ctx context.Context, g *Group) error

	// Get returns a group by id, or nil if it does not exist.
	Get(ctx context.Context, groupID string) (*Group, error)

	// Update replaces the stored group.
	Update(ctx context.Context, g *Group) error

	// Delete removes the group.
	Delete(ctx context.Context, groupID string) error

	// ListByMember returns every group containing the user.
	ListByMember(ctx context.Context, userID string) ([]Group, error)
}

// groupsCollection is the MongoDB collection name.
const groupsCollection = "groups"

// MongoStore persists groups in MongoDB.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore returns a MongoStore bound to the groups collection.
func NewMongoStore(database *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: database.Collection(groupsCollection),
	}
}

// Insert implements Store.
func (s *MongoStore) Insert(ctx context.Context, g *Group) error {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, g)
	return err
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, groupID string) (*Group, error) {
	objectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, nil
	}

	var g Group
	err = s.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Update implements Store.
func (s *MongoStore) Update(ctx context.Context, g *Group) error {
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	return err
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, groupID string) error {
	objectID, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil
	}
	_, err = s.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	return err
}

// ListByMember implements Store.
func (s *MongoStore) ListByMember(ctx context.Context, userID string) ([]Group, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"members": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
