// Package cache stores rendered artifacts and plans by content key.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: one JSON file per entry under a directory (CLI)
//   - [RedisCache]: shared cache for several API instances
//
// # Keys
//
// Keys are built by a [Keyer] from a content hash of the input and the
// options that change the output:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(designHash, cache.ArtifactKeyOpts{Format: "svg"})
//
// [ScopedKeyer] prefixes every key, for example with a deployment name.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// Default TTLs.
const (
	ArtifactTTL = 7 * 24 * time.Hour
	PlanTTL     = 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// PlanKey identifies the planned shape sequences of a batch.
	PlanKey(batchHash string) string
	// ArtifactKey identifies one rendered artifact of a placed design.
	ArtifactKey(designHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format   string   `json:"format"`
	Layers   []string `json:"layers,omitempty"`
	Labels   bool     `json:"labels,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Width    float64  `json:"width,omitempty"`
	Polygons bool     `json:"polygons,omitempty"`
}

// DefaultKeyer builds unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PlanKey returns "plan:<hash>".
func (DefaultKeyer) PlanKey(batchHash string) string {
	return "plan:" + batchHash
}

// ArtifactKey hashes the design hash together with opts.
func (DefaultKeyer) ArtifactKey(designHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", designHash, opts)
}

// NullCache misses on every Get and drops every Set. The runner falls back
// to it when no cache is configured.
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() Cache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }
