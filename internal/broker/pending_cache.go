package broker

import (
	"context"
	"sync"
)

// PendingCache is the shared pending-order view read by the engine's
// callers. It is best-effort only: writes through the executor update
// it optimistically, and Refresh reconciles against the backend, which
// stays authoritative.
type PendingCache struct {
	mu     sync.RWMutex
	orders map[string]PendingOrder
}

// NewPendingCache builds an empty cache.
func NewPendingCache() *PendingCache {
	return &PendingCache{orders: make(map[string]PendingOrder)}
}

// Put stores or overwrites one order.
func (c *PendingCache) Put(order PendingOrder) {
	c.mu.Lock()
	c.orders[order.OrderID] = order
	c.mu.Unlock()
}

// Remove drops one order. Removing an absent order is a no-op.
func (c *PendingCache) Remove(orderID string) {
	c.mu.Lock()
	delete(c.orders, orderID)
	c.mu.Unlock()
}

// Snapshot returns a copy of the cached orders.
func (c *PendingCache) Snapshot() []PendingOrder {
	c.mu.RLock()
	out := make([]PendingOrder, 0, len(c.orders))
	for _, order := range c.orders {
		out = append(out, order)
	}
	c.mu.RUnlock()
	return out
}

// ReplaceAll swaps the cached view for the given book.
func (c *PendingCache) ReplaceAll(orders []PendingOrder) {
	next := make(map[string]PendingOrder, len(orders))
	for _, order := range orders {
		next[order.OrderID] = order
	}
	c.mu.Lock()
	c.orders = next
	c.mu.Unlock()
}

// Refresh replaces the cached view with the backend's current book.
func (c *PendingCache) Refresh(ctx context.Context, backend Backend) error {
	orders, err := backend.ListPendingOrders(ctx)
	if err != nil {
		return err
	}
	c.ReplaceAll(orders)
	return nil
}
