// Package cache provides byte-level caching for derived artifacts.
//
// Layouts and rendered images are pure functions of a network's structure,
// so they are cached under content-derived keys: hash the structural JSON,
// then key the layout and each rendered artifact off that hash plus the
// options that shaped them. Editing a network changes its hash, which makes
// every stale derivative unreachable without explicit invalidation.
//
// Three backends: FileCache for CLI usage, RedisCache for the server, and
// NullCache to disable caching entirely.
package cache

import (
	"context"
	"time"
)

// Cache stores binary blobs under string keys with optional expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the options that affect layout computation.
type LayoutKeyOpts struct {
	Direction string `json:"direction,omitempty"`
	Spacing   int    `json:"spacing,omitempty"`
}

// ArtifactKeyOpts are the options that affect rendering.
type ArtifactKeyOpts struct {
	Format    string `json:"format,omitempty"`
	Direction string `json:"direction,omitempty"`
	Detailed  bool   `json:"detailed,omitempty"`
}

// Keyer generates cache keys for the artifact kinds the system caches.
type Keyer interface {
	// GraphKey keys a stored structural document by name and content hash.
	GraphKey(name, contentHash string) string

	// LayoutKey keys a computed layout by graph hash and layout options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by layout hash and render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for structural document caching.
func (k *DefaultKeyer) GraphKey(name, contentHash string) string {
	return hashKey("graph", name, contentHash)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
