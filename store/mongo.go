package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps the decoys in a MongoDB collection, one document per decoy
type MongoStore struct {
	collection *mongo.Collection
	// owned is the client to disconnect on Close, nil if the collection was provided by the caller
	owned *mongo.Client
}

// NewMongoStore creates a store on top of an existing collection
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// ConnectMongo connects to the server, pings it and makes sure the target index exists
func ConnectMongo(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := &MongoStore{
		collection: client.Database(database).Collection(collection),
		owned:      client,
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the index which backs ListByTarget
func (m *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "operation_target_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func byTarget(targetID string) bson.D {
	return bson.D{{Key: "operation_target_id", Value: targetID}}
}

// Save creates or replaces the decoy
func (m *MongoStore) Save(ctx context.Context, d *Decoy) error {
	if err := d.validate(); err != nil {
		return err
	}
	_, err := m.collection.ReplaceOne(ctx, byID(d.ID), d, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo save: %w", err)
	}
	return nil
}

// Get returns the decoy or ErrNotFound
func (m *MongoStore) Get(ctx context.Context, id string) (*Decoy, error) {
	var d Decoy
	err := m.collection.FindOne(ctx, byID(id)).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get: %w", err)
	}
	return &d, nil
}

// ListByTarget returns the decoys of an operation target, oldest first
func (m *MongoStore) ListByTarget(ctx context.Context, targetID string) ([]*Decoy, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, byTarget(targetID), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	var result []*Decoy
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return result, nil
}

// Delete removes the decoy or returns ErrNotFound
func (m *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := m.collection.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByTarget removes all the decoys of an operation target
func (m *MongoStore) DeleteByTarget(ctx context.Context, targetID string) (int, error) {
	res, err := m.collection.DeleteMany(ctx, byTarget(targetID))
	if err != nil {
		return 0, fmt.Errorf("mongo delete: %w", err)
	}
	return int(res.DeletedCount), nil
}

// Close disconnects the client if the store has created it
func (m *MongoStore) Close(ctx context.Context) error {
	if m.owned == nil {
		return nil
	}
	return m.owned.Disconnect(ctx)
}
