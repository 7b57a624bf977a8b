package cache

import "time"

// LayeredCache checks its layers in order (fastest first) and promotes hits
// into the layers above the one that answered
type LayeredCache struct {
	layers []Cache
}

// NewLayeredCache creates the default memory + disk cache, with an optional
// shared layer (redis) underneath
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration, shared Cache) *LayeredCache {
	layers := []Cache{
		NewMemoryCache(memoryTTL, 10*time.Minute),
		NewDiskCache(diskDir, diskTTL),
	}
	if shared != nil {
		layers = append(layers, shared)
	}
	return NewLayers(layers...)
}

// NewLayers builds a layered cache from arbitrary layers
func NewLayers(layers ...Cache) *LayeredCache {
	return &LayeredCache{layers: layers}
}

// Get retrieves a value, promoting it to faster layers on a lower-layer hit
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, found := layer.Get(key)
		if !found {
			continue
		}
		for _, upper := range c.layers[:i] {
			_ = upper.Set(key, val, 0) // Use each layer's default TTL
		}
		return val, true
	}
	return nil, false
}

// Set stores a value in every layer
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	for _, layer := range c.layers {
		if err := layer.Set(key, value, ttl); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a value from every layer
func (c *LayeredCache) Delete(key string) error {
	var firstErr error
	for _, layer := range c.layers {
		if err := layer.Delete(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Clear removes all values from every layer
func (c *LayeredCache) Clear() error {
	var firstErr error
	for _, layer := range c.layers {
		if err := layer.Clear(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
