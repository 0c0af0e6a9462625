package pipeline

import (
	"strings"
	"sync"

	"genforge/internal/params"
)

// CacheKey builds the identity of a constructed pipeline: a kind prefix so
// different pipeline families never collide on the same model path, the model
// path itself, and the adapter paths in order.
func CacheKey(prefix, modelPath string, loras []params.Lora) string {
	paths := make([]string, len(loras))
	for i, lora := range loras {
		paths[i] = lora.Path
	}
	return prefix + modelPath + strings.Join(paths, ",")
}

// Cache is a single-slot pipeline cache. Loaded pipelines hold gigabytes of
// device memory, so at most one stays alive; setting a different key evicts
// the previous handle and leaves its teardown to the runtime's own
// reference counting.
type Cache struct {
	mu     sync.Mutex
	key    string
	handle Handle
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the cached handle if the slot currently holds key.
func (c *Cache) Get(key string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == key && c.handle != nil {
		return c.handle, true
	}
	return nil, false
}

// Set stores handle under key, evicting whatever the slot held before. When
// the key already matches and a handle is present the call is a no-op: the
// current handle is retained to avoid discarding a warm pipeline.
func (c *Cache) Set(key string, handle Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == key && c.handle != nil {
		return
	}
	c.key = key
	c.handle = handle
}

// Delete clears the slot only if it currently holds key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == key {
		c.key = ""
		c.handle = nil
	}
}
