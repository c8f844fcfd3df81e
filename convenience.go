package jwtcodec

import (
	"sync"
	"sync/atomic"
	"time"
)

type cacheEntry struct {
	codec      *Codec
	lastAccess atomic.Int64
}

type codecCache struct {
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

var cache = &codecCache{
	entries: make(map[string]*cacheEntry, 16),
}

const maxCacheSize = 100

// Encode encodes header and payload with a default HS256 codec and an empty
// key.
func Encode(header, payload *Value) (string, error) {
	return getCodec("").Encode(header, payload)
}

// Decode decodes token with a default codec.
func Decode(token string) (header, payload *Value, err error) {
	return getCodec("").Decode(token)
}

// EncodeText parses editor text leniently and encodes it with a default
// codec and an empty key.
func EncodeText(headerText, payloadText string) (string, error) {
	return getCodec("").EncodeText(headerText, payloadText)
}

// DecodeText decodes token to two-space indented text.
func DecodeText(token string) (headerText, payloadText string, err error) {
	return getCodec("").DecodeText(token)
}

// Sign encodes editor text into an HS256 token signed with key. Codecs are
// cached per key.
func Sign(headerText, payloadText, key string) (string, error) {
	return getCodec(key).EncodeText(headerText, payloadText)
}

// Verify checks an HS256 signature with key.
func Verify(token, key string) error {
	return getCodec(key).Verify(token, []byte(key))
}

func getCodec(key string) *Codec {
	now := time.Now().UnixNano()

	cache.mu.RLock()
	entry, exists := cache.entries[key]
	cache.mu.RUnlock()

	if exists {
		entry.lastAccess.Store(now)
		return entry.codec
	}

	cfg := DefaultConfig()
	cfg.Key = key
	codec, err := New(cfg)
	if err != nil {
		// DefaultConfig with any key always validates.
		panic("jwtcodec: default config rejected: " + err.Error())
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if entry, exists := cache.entries[key]; exists {
		entry.lastAccess.Store(now)
		return entry.codec
	}

	if len(cache.entries) >= maxCacheSize {
		evictOldestUnsafe()
	}

	entry = &cacheEntry{codec: codec}
	entry.lastAccess.Store(now)
	cache.entries[key] = entry
	return codec
}

func evictOldestUnsafe() {
	oldestKey := ""
	oldestTime := int64(1<<63 - 1)
	found := false

	for k, entry := range cache.entries {
		if last := entry.lastAccess.Load(); last < oldestTime {
			oldestKey = k
			oldestTime = last
			found = true
		}
	}

	if found {
		delete(cache.entries, oldestKey)
	}
}

// ClearCache drops all cached codecs.
func ClearCache() {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	clear(cache.entries)
}

func cacheSize() int {
	cache.mu.RLock()
	defer cache.mu.RUnlock()
	return len(cache.entries)
}
