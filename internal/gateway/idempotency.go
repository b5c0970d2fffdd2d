package gateway

import (
	"container/list"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// deliveryCache remembers webhook delivery IDs for a limited time so
// at-least-once redeliveries of the same event are processed once.
type deliveryCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	ttl        time.Duration
	maxEntries int
	clock      clockwork.Clock
}

type deliveryEntry struct {
	key       string
	expiresAt time.Time
}

func newDeliveryCache(ttl time.Duration, maxEntries int, clock clockwork.Clock) *deliveryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &deliveryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
	}
}

// seen records the delivery ID and reports whether it was already known
// and unexpired.
func (c *deliveryCache) seen(key string) bool {
	if key == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*deliveryEntry)
		if now.Before(entry.expiresAt) {
			return true
		}
		c.order.Remove(elem)
		delete(c.items, key)
	}

	elem := c.order.PushFront(&deliveryEntry{key: key, expiresAt: now.Add(c.ttl)})
	c.items[key] = elem
	c.trim()
	return false
}

// forget drops the delivery ID so a redelivery of the same event is
// processed again.
func (c *deliveryCache) forget(key string) {
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.order.Remove(elem)
		delete(c.items, key)
	}
}

func (c *deliveryCache) trim() {
	for len(c.items) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		entry := elem.Value.(*deliveryEntry)
		delete(c.items, entry.key)
		c.order.Remove(elem)
	}
}
