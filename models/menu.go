package models

import "time"

type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Photo       *string   `json:"photo"`
	CategoryID  *int64    `json:"category_id"`
	Price       *int64    `json:"price"`
	Stock       bool      `json:"stock"` // true hides the product from the menu
	IsDrink     bool      `json:"is_drink"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`

	// Filled by list/get queries.
	Category *Category      `json:"category,omitempty"`
	Variants []DrinkVariant `json:"variants,omitempty"`
}

const (
	DefaultDisplacement int64 = 750
	DefaultVariantPrice int64 = 200
)

// DrinkVariant is one pour size of a drink with its own price.
type DrinkVariant struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Displacement int64  `json:"displacement"` // ml
	Price        int64  `json:"price"`
	ProductID    int64  `json:"product_id"`

	ProductName string `json:"product_name,omitempty"`
}
