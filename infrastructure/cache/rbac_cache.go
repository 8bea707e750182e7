package cache

import "sync"

// Resource maps a route/method to the module that grants it.
type Resource struct {
	Code   string
	Module string
	Path   string
	Method string
}

// ResourceCache stores registered route resources.
type ResourceCache struct {
	mu        sync.RWMutex
	resources []Resource
}

func NewResourceCache() *ResourceCache {
	return &ResourceCache{}
}

func (c *ResourceCache) Add(r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, r)
}

// All returns every registered resource in registration order.
func (c *ResourceCache) All() []Resource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Resource, len(c.resources))
	copy(out, c.resources)
	return out
}
