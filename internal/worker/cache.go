package worker

import "sync"

// LayerCache is the worker-level cache spec §4.3 describes: an optional
// in-process map from layer name to a prepared handle, reused across jobs
// within the same process and never shared across workers. Grounded on
// layer_cache in original_source/worker/runner.py, which keys a dict of
// prepared QGIS layer objects by dataset name; this module has no rendering
// backend, so the cache stores whatever opaque handle a JobExecutor chooses
// to keep there.
type LayerCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

// NewLayerCache returns an empty cache.
func NewLayerCache() *LayerCache {
	return &LayerCache{items: make(map[string]interface{})}
}

// Get returns the cached handle for name, if present.
func (c *LayerCache) Get(name string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[name]
	return v, ok
}

// Set stores handle under name, overwriting any previous entry.
func (c *LayerCache) Set(name string, handle interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[name] = handle
}

// Len reports how many entries are currently cached, mainly for tests and
// metrics.
func (c *LayerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
