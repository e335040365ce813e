package cache

import (
	"sync"
	"time"

	"promise-console/internal/models"
)

// entry pairs cached sales order details with their expiry.
type entry struct {
	details   models.SalesOrderDetails
	expiresAt time.Time
}

// DetailsCache is a thread-safe TTL cache for sales order detail lookups.
// Expired entries are evicted lazily on access; there is no background
// goroutine to manage.
type DetailsCache struct {
	mutex sync.RWMutex
	items map[string]entry
	ttl   time.Duration
}

// NewDetailsCache creates a cache whose entries live for ttl.
func NewDetailsCache(ttl time.Duration) *DetailsCache {
	return &DetailsCache{
		items: make(map[string]entry),
		ttl:   ttl,
	}
}

// Set stores details for an order id.
func (c *DetailsCache) Set(id string, details models.SalesOrderDetails) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items[id] = entry{details: details, expiresAt: time.Now().Add(c.ttl)}
}

// Get retrieves unexpired details for an order id.
func (c *DetailsCache) Get(id string) (models.SalesOrderDetails, bool) {
	c.mutex.RLock()
	e, exists := c.items[id]
	c.mutex.RUnlock()

	if !exists {
		return models.SalesOrderDetails{}, false
	}
	if time.Now().After(e.expiresAt) {
		c.mutex.Lock()
		delete(c.items, id)
		c.mutex.Unlock()
		return models.SalesOrderDetails{}, false
	}
	return e.details, true
}

// Delete removes one order id from the cache.
func (c *DetailsCache) Delete(id string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.items, id)
}

// Clear removes all entries.
func (c *DetailsCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[string]entry)
}

// Len returns the number of stored entries, including any not yet evicted.
func (c *DetailsCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.items)
}
