// Package cache provides the layered (memory + disk) cache used to make the
// advisory review stage resumable: verdicts already obtained for a pair are
// not requested again across process restarts.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ReviewKey derives a stable cache key for one reviewed pair. The provider
// and model are part of the key so that switching models re-reviews pairs
// instead of replaying stale verdicts.
func ReviewKey(provider, model, sourceID, deathID string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{provider, model, sourceID, deathID}, "\x00")))
	return "nexo:v1:" + hex.EncodeToString(sum[:])
}
