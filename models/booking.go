package models

import "time"

type Booking struct {
	ID             int64     `json:"id"`
	ClientID       int64     `json:"client_id"`
	QuantityGuests int64     `json:"quantity_guests"`
	ReservedAt     time.Time `json:"reserved_at"`
	Phone          *string   `json:"phone"`
	IsConfirmed    bool      `json:"is_confirmed"`
	Created        time.Time `json:"created"`
	Updated        time.Time `json:"updated"`

	Client *Client `json:"client,omitempty"`
}
