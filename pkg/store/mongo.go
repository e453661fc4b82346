package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mlindahl/layernet/pkg/netio"
)

// MongoStore persists records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	// URI is the connection string, e.g. mongodb://localhost:27017.
	URI string

	// Database name. Defaults to "layernet".
	Database string

	// Collection name. Defaults to "networks".
	Collection string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "layernet"
	}
	if cfg.Collection == "" {
		cfg.Collection = "networks"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Put inserts a graph under a fresh ID.
func (s *MongoStore) Put(ctx context.Context, g netio.Graph) (Record, error) {
	now := time.Now().UTC()
	rec := Record{ID: newID(), Graph: g, CreatedAt: now, UpdatedAt: now}

	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("mongo insert: %w", err)
	}
	return rec, nil
}

// Get retrieves a record by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return Record{}, notFound(id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("mongo find: %w", err)
	}
	return rec, nil
}

// Update replaces the graph of an existing record.
func (s *MongoStore) Update(ctx context.Context, id string, g netio.Graph) (Record, error) {
	now := time.Now().UTC()
	res := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"graph": g, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var rec Record
	err := res.Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return Record{}, notFound(id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("mongo update: %w", err)
	}
	return rec, nil
}

// Delete removes a record.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// List returns all records ordered by creation time.
func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, fmt.Errorf("mongo list: %w", err)
	}
	defer cur.Close(ctx)

	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return out, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
