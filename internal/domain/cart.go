package domain

import (
	"github.com/shopspring/decimal"
)

// CartItem is one row in the shopper's cart. ID is the menu item id and is
// unique within the cart; Quantity is never below 1.
type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// LineTotal returns price * quantity for this row.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart holds the items a shopper intends to purchase. Insertion order is
// display order.
type Cart struct {
	Items []CartItem `json:"items"`
}

// TotalAmount is the sum of price * quantity over current items. It is
// derived on every call, never stored.
func (c Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// Find returns the index of the item with the given id, or -1.
func (c Cart) Find(id string) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the cart so a transition never mutates a
// state snapshot already handed to subscribers.
func (c Cart) Clone() Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}
