// Package cache stores rendered diagrams between CLI runs.
//
// Rendering a scene to SVG goes through Graphviz, which is slow compared to
// building the DOT source. The export command keys rendered output by a hash
// of the DOT text, so an unchanged scene reuses the previous artifact.
//
//	c, _ := cache.NewFileCache(dir)
//	key := cache.ArtifactKey(dot, "svg")
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data
//	}
//
// [NullCache] disables caching without changing call sites.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// ArtifactTTL is how long rendered artifacts are kept.
const ArtifactTTL = 7 * 24 * time.Hour

// ArtifactKey returns the cache key for dot rendered to format, in the form
// "<format>:<hash of dot>".
func ArtifactKey(dot, format string) string {
	return format + ":" + Hash([]byte(dot))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
