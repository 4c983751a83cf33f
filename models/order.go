package models

import "time"

const (
	OrderStatusPreparing = "preparing"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderStatuses lists the valid statuses in display order.
var OrderStatuses = []string{OrderStatusPreparing, OrderStatusDelivered, OrderStatusCancelled}

func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID       int64     `json:"id"`
	Table    int64     `json:"table"`
	ClientID int64     `json:"client_id"`
	Status   string    `json:"status"`
	Comment  *string   `json:"comment"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`

	// Filled by list/get queries.
	Client    *Client     `json:"client,omitempty"`
	Items     []OrderItem `json:"items,omitempty"`
	TotalCost int64       `json:"total_cost"`
}

// TotalCostOf sums price * quantity over items.
func TotalCostOf(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.Cost()
	}
	return total
}

// OrderItem is a product picked by a guest. Items with IsOrder=false are still in the cart.
type OrderItem struct {
	ID           int64  `json:"id"`
	OrderID      *int64 `json:"order_id"`
	ProductID    *int64 `json:"product_id"`
	Price        int64  `json:"price"`
	Quantity     int64  `json:"quantity"`
	Displacement *int64 `json:"displacement"`
	IsOrder      bool   `json:"is_order"`

	Product *Product `json:"product,omitempty"`
	Client  *Client  `json:"client,omitempty"` // owner of the order, if any
}

func (it OrderItem) Cost() int64 {
	return it.Price * it.Quantity
}
