package domain

import "github.com/shopspring/decimal"

// MenuItem is one dish on a restaurant's menu.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
}

// CartItem converts a menu item into a cart row with quantity 1.
func (m MenuItem) CartItem() CartItem {
	return CartItem{
		ID:       m.ID,
		Name:     m.Name,
		Price:    m.Price,
		Quantity: 1,
		Image:    m.Image,
	}
}

// Restaurant is a search result from the restaurant directory.
type Restaurant struct {
	ID             string   `json:"id"`
	Name           string   `json:"restaurantName"`
	City           string   `json:"city"`
	Country        string   `json:"country"`
	Cuisines       []string `json:"cuisines"`
	ImageURL       string   `json:"imageUrl"`
	DeliveryTimeMn int      `json:"deliveryTime"`
}
