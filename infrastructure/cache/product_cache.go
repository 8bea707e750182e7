package cache

import (
	"context"
	"sync"

	"logistica/models"
)

// ProductLoader reads the full product collection from its backing store.
type ProductLoader func(ctx context.Context) ([]models.Product, error)

// ProductCache holds the product collection in memory. It starts unloaded,
// fills on the first successful All and is emptied by Invalidate, which every
// product write path must call after persisting.
type ProductCache struct {
	mu       sync.RWMutex
	load     ProductLoader
	loaded   bool
	products []models.Product
}

func NewProductCache(load ProductLoader) *ProductCache {
	return &ProductCache{load: load}
}

// All returns a copy of the cached collection, loading it on a miss. A failed
// load is not cached.
func (c *ProductCache) All(ctx context.Context) ([]models.Product, error) {
	c.mu.RLock()
	if c.loaded {
		out := clone(c.products)
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		products, err := c.load(ctx)
		if err != nil {
			return nil, err
		}
		c.products = products
		c.loaded = true
	}
	return clone(c.products), nil
}

func (c *ProductCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = nil
	c.loaded = false
}

func (c *ProductCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func clone(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}
