// Package cache is the export-artifact cache: rendered reports keyed by a hash
// of the payload they were rendered from. Entries expire after a TTL and the
// least recently used entries are evicted beyond the size limit.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultSize = 256
	defaultTTL  = 30 * time.Minute
)

// Cache stores rendered artifacts.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Clear()
	Size() int
}

// LRU is a Cache backed by an expirable LRU.
type LRU struct {
	lru *expirable.LRU[string, []byte]
}

// NewLRU returns an LRU holding at most size entries for ttl each.
// Non-positive values take the defaults.
func NewLRU(size int, ttl time.Duration) *LRU {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LRU{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (c *LRU) Get(key string) ([]byte, bool) {
	return c.lru.Get(key)
}

func (c *LRU) Set(key string, value []byte) {
	c.lru.Add(key, value)
}

func (c *LRU) Clear() {
	c.lru.Purge()
}

func (c *LRU) Size() int {
	return c.lru.Len()
}

// Key hashes a payload into a cache key scoped by kind.
func Key(kind string, payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(kind)
	}
	sum := sha256.Sum256(append([]byte(kind+":"), data...))
	return kind + ":" + hex.EncodeToString(sum[:])
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(string) ([]byte, bool) { return nil, false }
func (Nop) Set(string, []byte)        {}
func (Nop) Clear()                    {}
func (Nop) Size() int                 { return 0 }
