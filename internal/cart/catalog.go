package cart

import "strings"

// Item is one purchasable entry in a Catalog. Price is zero for catalogs
// that do not price items (grocery lists).
type Item struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price,omitempty"`
}

// Catalog is the fixed reference list a facade resolves item identifiers
// against. Built once at startup and read-only afterwards.
type Catalog struct {
	byID  map[string]Item
	order []string
}

func NewCatalog(items []Item) *Catalog {
	c := &Catalog{byID: make(map[string]Item, len(items))}
	for _, it := range items {
		id := strings.ToLower(it.ID)
		if _, dup := c.byID[id]; dup {
			continue
		}
		c.byID[id] = it
		c.order = append(c.order, id)
	}
	return c
}

// Lookup resolves an identifier case-insensitively, by id first and then by
// display name, so spoken input like "Coffee Mug" finds item "mug".
func (c *Catalog) Lookup(ident string) (Item, bool) {
	ident = strings.ToLower(strings.TrimSpace(ident))
	if it, ok := c.byID[ident]; ok {
		return it, true
	}
	for _, id := range c.order {
		if strings.ToLower(c.byID[id].Name) == ident {
			return c.byID[id], true
		}
	}
	return Item{}, false
}

// Items lists the catalog in insertion order.
func (c *Catalog) Items() []Item {
	out := make([]Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
