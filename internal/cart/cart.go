package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cartdanawa/pricescan/internal/models"
)

// ErrNotFound is returned for an unknown item ID
var ErrNotFound = errors.New("cart item not found")

const unknownName = "Unknown Item"

// Cart is the running shopping list. Items keep insertion order.
type Cart struct {
	mu    sync.RWMutex
	items []*models.CartItem
	now   func() time.Time
}

func New() *Cart {
	return &Cart{now: time.Now}
}

// Add appends an accepted scan with quantity 1
func (c *Cart) Add(_ context.Context, rec models.ScanRecord) {
	c.Insert(rec.Name, rec.Price)
}

// Insert appends a new line and returns it
func (c *Cart) Insert(name string, price int) models.CartItem {
	if name == "" {
		name = unknownName
	}
	if price < 0 {
		price = 0
	}
	item := &models.CartItem{
		ID:        uuid.New().String(),
		Name:      name,
		Price:     price,
		Quantity:  1,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return *item
}

func (c *Cart) Get(id string) (models.CartItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.index(id); i >= 0 {
		return *c.items[i], true
	}
	return models.CartItem{}, false
}

// List returns a copy of all lines
func (c *Cart) List() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]models.CartItem, 0, len(c.items))
	for _, item := range c.items {
		result = append(result, *item)
	}
	return result
}

// Update replaces the name and price of a line
func (c *Cart) Update(id, name string, price int) (models.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return models.CartItem{}, ErrNotFound
	}
	if name == "" {
		name = unknownName
	}
	if price < 0 {
		price = 0
	}
	c.items[i].Name = name
	c.items[i].Price = price
	return *c.items[i], nil
}

// UpdateQuantity changes a line's quantity by delta, never below 1
func (c *Cart) UpdateQuantity(id string, delta int) (models.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return models.CartItem{}, ErrNotFound
	}
	c.items[i].Quantity = max(1, c.items[i].Quantity+delta)
	return *c.items[i], nil
}

func (c *Cart) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return ErrNotFound
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Total is the sum of price times quantity over all lines
func (c *Cart) Total() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

func (c *Cart) index(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
