package admin

import (
	"context"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"restaurant-telegram/models"
	"restaurant-telegram/services"
)

var yesNo = []Option{{Value: "true", Label: "Да"}, {Value: "false", Label: "Нет"}}

func clientLabel(c *models.Client) string {
	if name := c.DisplayName(); name != "" {
		return name
	}
	return fmt.Sprintf("Клиент %d", c.ID)
}

// clientOptions lists guests for select boxes and the "user" filters.
func clientOptions(store Store) func(context.Context) ([]Option, error) {
	return func(ctx context.Context) ([]Option, error) {
		clients, err := store.AllClients(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(clients))
		for i := range clients {
			opts[i] = Option{Value: strconv.FormatInt(clients[i].ID, 10), Label: clientLabel(&clients[i])}
		}
		return opts, nil
	}
}

func clientAdmin(store Store) *ModelAdmin[models.Client] {
	blocked := boolField("is_blocked", "Заблокирован", func(c *models.Client) *bool { return &c.IsBlocked })

	fields := []Field[models.Client]{
		optTextField("username", "Имя пользователя", KindText, func(c *models.Client) **string { return &c.Username }),
		intField("telegram_id", "Telegram ID", func(c *models.Client) *int64 { return &c.TelegramID }),
		blocked,
	}
	fields = append(fields, createdUpdated(
		func(c *models.Client) time.Time { return c.Created },
		func(c *models.Client) time.Time { return c.Updated },
	)...)

	return &ModelAdmin[models.Client]{
		Slug:       "clients",
		Title:      "Клиенты",
		Searchable: true,
		Columns: []Column[models.Client]{
			{Name: "id", Label: "ID", Link: true, Display: func(c *models.Client) template.HTML { return number(c.ID) }},
			{Name: "username", Label: "Имя пользователя", Link: true, Display: func(c *models.Client) template.HTML { return textOrEmpty(c.Username) }},
			{Name: "telegram_id", Label: "Telegram ID", Display: func(c *models.Client) template.HTML { return number(c.TelegramID) }},
			{Name: "is_blocked", Label: "Заблокирован", Edit: &blocked},
		},
		Filters: []Filter{
			{Param: services.FilterClientBlocked, Label: "Заблокирован", Choices: staticOptions(yesNo)},
		},
		Fields: fields,
		ID:     func(c *models.Client) int64 { return c.ID },
		Label:  clientLabel,
		New:    func() models.Client { return models.Client{} },
		List:   store.ListClients,
		Get:    store.GetClient,
		Create: store.CreateClient,
		Update: store.UpdateClient,
		Delete: store.DeleteClient,
	}
}
