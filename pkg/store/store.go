// Package store persists network structural documents.
//
// A stored record pairs a generated ID with the structural graph and
// timestamps. Two backends: MemoryStore for tests and single-process use,
// MongoStore for the server.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mlindahl/layernet/pkg/errors"
	"github.com/mlindahl/layernet/pkg/netio"
)

// Record is one stored network.
type Record struct {
	ID        string      `json:"id" bson:"_id"`
	Graph     netio.Graph `json:"graph" bson:"graph"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

// Store persists network records.
type Store interface {
	// Put inserts a graph and returns the stored record with a fresh ID.
	Put(ctx context.Context, g netio.Graph) (Record, error)

	// Get retrieves a record by ID. Returns NETWORK_NOT_FOUND if absent.
	Get(ctx context.Context, id string) (Record, error)

	// Update replaces the graph of an existing record.
	Update(ctx context.Context, id string, g netio.Graph) (Record, error)

	// Delete removes a record. Returns NETWORK_NOT_FOUND if absent.
	Delete(ctx context.Context, id string) error

	// List returns all records ordered by creation time.
	List(ctx context.Context) ([]Record, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// newID generates a record ID.
func newID() string {
	return uuid.NewString()
}

// notFound builds the standard absent-record error.
func notFound(id string) error {
	return errors.New(errors.ErrCodeNetworkNotFound, "network %s not found", id)
}
