package cart

import "sync"

// Cart is the mutable, not-yet-finalized quantity map for one session.
// Item resolvability against a Catalog is the facade's job; the cart only
// tracks quantities.
type Cart struct {
	mu  sync.RWMutex
	qty map[string]int
}

func New() *Cart {
	return &Cart{qty: make(map[string]int)}
}

// Add accumulates qty onto the line for itemID. Non-positive qty is a no-op.
func (c *Cart) Add(itemID string, qty int) int {
	if qty <= 0 {
		return c.Quantity(itemID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.qty[itemID] += qty
	return c.qty[itemID]
}

// Remove decrements the line by qty; qty <= 0 means remove the whole line.
// Lines that reach zero are dropped. Returns false if the line was absent.
func (c *Cart) Remove(itemID string, qty int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	have, ok := c.qty[itemID]
	if !ok {
		return false
	}
	if qty <= 0 || qty >= have {
		delete(c.qty, itemID)
		return true
	}
	c.qty[itemID] = have - qty
	return true
}

// Quantity returns the current line quantity, zero if absent.
func (c *Cart) Quantity(itemID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.qty[itemID]
}

// Items returns a copy of the quantity map.
func (c *Cart) Items() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]int, len(c.qty))
	for k, v := range c.qty {
		out[k] = v
	}
	return out
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.qty) == 0
}

// Clear drops every line, e.g. after checkout.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.qty = make(map[string]int)
	c.mu.Unlock()
}
