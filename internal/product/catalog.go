package product

import "sync"

// Catalog owns the published product list currently on display.
// Readers always get copies; only Replace writes.
type Catalog struct {
	mu       sync.RWMutex
	products []Product
	loaded   bool
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

// Replace swaps in a new product list.
func (c *Catalog) Replace(products []Product) {
	next := make([]Product, len(products))
	copy(next, products)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = next
	c.loaded = true
}

func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Catalog) All() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Filter returns the products whose category equals categoryID, in catalog order.
func (c *Catalog) Filter(categoryID int) []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Product, 0)
	for _, p := range c.products {
		if p.Category == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// Find looks a product up by slug.
func (c *Catalog) Find(slug string) (Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}
