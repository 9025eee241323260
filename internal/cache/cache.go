package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching. The embedding layer uses it
// to avoid re-embedding unchanged chunk content across ingest runs.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from arbitrary content, namespaced by the
// embedding model so switching models never serves stale vectors.
func Key(model, content string) string {
	hash := sha256.Sum256([]byte(content))
	return "gavel:v1:" + model + ":" + hex.EncodeToString(hash[:])
}
