package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/ppiankov/factlens/internal/model"
)

// Cache stores adapter responses keyed by request
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const keyPrefix = "factlens:v1:"

// Key derives a cache key for one adapter request. Parts are normalized so
// that keyword order and case do not create separate entries.
func Key(namespace string, parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}
	hash := sha256.Sum256([]byte(strings.Join(normalized, "\x00")))
	return keyPrefix + namespace + ":" + hex.EncodeToString(hash[:])
}

// GetJSON decodes a cached value into T
func GetJSON[T any](c Cache, key string) (T, bool) {
	var out T
	if c == nil {
		return out, false
	}
	data, ok := c.Get(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false
	}
	return out, true
}

// SetJSON encodes v and stores it
func SetJSON(c Cache, key string, v interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}

// New builds the configured cache: memory in front of disk, or a no-op
// cache when caching is disabled
func New(config model.CacheConfig) Cache {
	if !config.Enabled {
		return Noop{}
	}
	memory := NewMemoryCache(config.MemoryTTL, 10*time.Minute)
	if config.Dir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(config.Dir, config.DiskTTL))
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(string) ([]byte, bool)               { return nil, false }
func (Noop) Set(string, []byte, time.Duration) error { return nil }
func (Noop) Delete(string) error                     { return nil }
func (Noop) Clear() error                            { return nil }
