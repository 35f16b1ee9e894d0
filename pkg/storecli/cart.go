package storecli

import (
	"fmt"
)

const cartKey = "cart"

// CartItem is the product snapshot the cart carries; prices are frozen at
// the moment of adding.
type CartItem struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// Cart holds the selected items client-side. Nothing is deduplicated:
// adding the same product twice means two lines. The server never sees the
// cart until checkout.
type Cart struct {
	store *Store
	items []CartItem
}

func NewCart(store *Store) (*Cart, error) {
	c := &Cart{store: store}
	if _, err := store.Get(cartKey, &c.items); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cart) Get() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Set replaces the whole list and persists it immediately.
func (c *Cart) Set(items []CartItem) error {
	c.items = make([]CartItem, len(items))
	copy(c.items, items)
	return c.store.Set(cartKey, c.items)
}

func (c *Cart) Add(item CartItem) error {
	return c.Set(append(c.Get(), item))
}

func (c *Cart) RemoveAt(i int) error {
	if i < 0 || i >= len(c.items) {
		return fmt.Errorf("storecli: cart index %d out of range", i)
	}
	items := c.Get()
	return c.Set(append(items[:i], items[i+1:]...))
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Total() float64 {
	var total float64
	for _, it := range c.items {
		total += it.Price
	}
	return total
}

// TotalDisplay formats the total for the cart page.
func (c *Cart) TotalDisplay() string {
	return fmt.Sprintf("$%.2f", c.Total())
}
