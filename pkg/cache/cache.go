package cache

import (
	"context"
	"sync"
	"time"

	"orderflow/domain"
)

// entry значение кеша вместе со сроком годности
type entry struct {
	order     domain.Order
	expiresAt time.Time
}

// InMemory простой потокобезопасный кеш заказов с TTL.
// Протухшие записи удаляются лениво при чтении
type InMemory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewInMemory() *InMemory {
	return &InMemory{
		entries: make(map[string]entry),
	}
}

func (c *InMemory) Set(_ context.Context, key string, value domain.Order, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		order:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (c *InMemory) Get(_ context.Context, key string) (domain.Order, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return domain.Order{}, false, nil
	}
	if time.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return domain.Order{}, false, nil
	}
	return e.order, true, nil
}

func (c *InMemory) Has(ctx context.Context, key string) bool {
	_, ok, _ := c.Get(ctx, key)
	return ok
}

// Delete инвалидация после изменения или удаления заказа
func (c *InMemory) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}
