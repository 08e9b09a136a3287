// Package cache stores generated artifacts keyed by the hash of their inputs.
//
// Generation is deterministic: the same graph bytes and the same generator
// options always produce the same artifact. The cache exploits that so a
// repeated configure step can skip projection entirely.
//
// Three backends are provided:
//
//   - [FileCache] stores entries under a local directory (the CLI default)
//   - [RedisCache] shares entries between CI workers
//   - [NullCache] disables caching
//
// [Instrument] wraps any backend and reports hits, misses and writes to the
// observability cache hooks.
package cache

import (
	"context"
	"strings"
	"time"
)

// TTLArtifact is how long a generated artifact stays cached.
const TTLArtifact = 7 * 24 * time.Hour

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts are the generator options that change artifact bytes.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	Split     bool   `json:"split"`
	Generator string `json:"generator"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey returns the key of the artifact generated from input bytes
	// hashing to inputHash.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the key parts under a fixed prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// keyType returns the prefix of key, skipping any scope prefixes.
func keyType(key string) string {
	for _, t := range []string{"artifact"} {
		if strings.Contains(key, t+":") {
			return t
		}
	}
	return "unknown"
}
