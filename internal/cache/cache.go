// Package cache stores raw model replies keyed by request digest, so a
// re-run over already-captured screenshots skips paid extraction calls.
package cache

import "time"

// Cache defines the interface for reply caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key namespaces a request digest. Bump the version to invalidate
// every cached reply after a prompt or schema change.
func Key(digest string) string {
	return "rankpipe:v1:" + digest
}
