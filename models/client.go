package models

import "time"

// Client is a guest who talks to the Telegram bot.
type Client struct {
	ID         int64     `json:"id"`
	Username   *string   `json:"username"`
	TelegramID int64     `json:"telegram_id"`
	IsBlocked  bool      `json:"is_blocked"`
	Created    time.Time `json:"created"`
	Updated    time.Time `json:"updated"`
}

// DisplayName is the username, or empty when the guest has none.
func (c *Client) DisplayName() string {
	if c == nil || c.Username == nil {
		return ""
	}
	return *c.Username
}
