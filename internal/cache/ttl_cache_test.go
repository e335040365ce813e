package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"promise-console/internal/models"
)

// TestDetailsCache_BasicOperations tests set, get and overwrite
func TestDetailsCache_BasicOperations(t *testing.T) {
	c := NewDetailsCache(time.Minute)

	c.Set("SO-1", models.SalesOrderDetails{Name: "SO-1", CustomerName: "Big Corp"})

	details, exists := c.Get("SO-1")
	assert.True(t, exists, "entry should exist within its TTL")
	assert.Equal(t, "Big Corp", details.CustomerName)

	c.Set("SO-1", models.SalesOrderDetails{Name: "SO-1", CustomerName: "Renamed Corp"})
	details, _ = c.Get("SO-1")
	assert.Equal(t, "Renamed Corp", details.CustomerName)
}

// TestDetailsCache_Miss
func TestDetailsCache_Miss(t *testing.T) {
	c := NewDetailsCache(time.Minute)

	_, exists := c.Get("SO-missing")

	assert.False(t, exists)
}

// TestDetailsCache_Expiry evicts lazily on access
func TestDetailsCache_Expiry(t *testing.T) {
	c := NewDetailsCache(10 * time.Millisecond)
	c.Set("SO-1", models.SalesOrderDetails{Name: "SO-1"})

	time.Sleep(30 * time.Millisecond)

	_, exists := c.Get("SO-1")
	assert.False(t, exists, "expired entry should not be returned")
	assert.Equal(t, 0, c.Len(), "expired entry evicted on access")
}

// TestDetailsCache_DeleteAndClear
func TestDetailsCache_DeleteAndClear(t *testing.T) {
	c := NewDetailsCache(time.Minute)
	c.Set("SO-1", models.SalesOrderDetails{Name: "SO-1"})
	c.Set("SO-2", models.SalesOrderDetails{Name: "SO-2"})

	c.Delete("SO-1")
	_, exists := c.Get("SO-1")
	assert.False(t, exists)
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
