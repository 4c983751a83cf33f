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

func orderStatusOptions() []Option {
	opts := make([]Option, len(models.OrderStatuses))
	for i, s := range models.OrderStatuses {
		opts[i] = Option{Value: s, Label: OrderStatusLabel(s)}
	}
	return opts
}

func clientName(c *models.Client) template.HTML {
	if c == nil {
		return EmptyValue
	}
	return text(clientLabel(c))
}

func orderAdmin(store Store, notifier Notifier) *ModelAdmin[models.Order] {
	status := choiceField("status", "Статус", orderStatusOptions(), func(o *models.Order) *string { return &o.Status })

	fields := []Field[models.Order]{
		intField("table", "Номер стола", func(o *models.Order) *int64 { return &o.Table }),
		fkField("user", "Клиент", clientOptions(store), func(o *models.Order) *int64 { return &o.ClientID }),
		status,
		optTextField("comment", "Комментарий", KindTextarea, func(o *models.Order) **string { return &o.Comment }),
		readOnlyField("items", "Позиции", func(o *models.Order) template.HTML { return OrderItemInfo(o.Items) }),
		readOnlyField("total_cost", "Сумма", func(o *models.Order) template.HTML { return template.HTML(Money(o.TotalCost)) }),
	}
	fields = append(fields, createdUpdated(
		func(o *models.Order) time.Time { return o.Created },
		func(o *models.Order) time.Time { return o.Updated },
	)...)

	tables := func(ctx context.Context) ([]Option, error) {
		nums, err := store.OrderTables(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(nums))
		for i, n := range nums {
			v := strconv.FormatInt(n, 10)
			opts[i] = Option{Value: v, Label: v}
		}
		return opts, nil
	}

	return &ModelAdmin[models.Order]{
		Slug:       "orders",
		Title:      "Заказы",
		Searchable: true,
		Columns: []Column[models.Order]{
			{Name: "number", Label: "Заказ", Link: true, Display: func(o *models.Order) template.HTML { return OrderNumber(o.ID) }},
			{Name: "table", Label: "Стол", Link: true, Display: func(o *models.Order) template.HTML { return number(o.Table) }},
			{Name: "user", Label: "Клиент", Display: func(o *models.Order) template.HTML { return clientName(o.Client) }},
			{Name: "status", Label: "Статус", Edit: &status},
			{Name: "total_cost", Label: "Сумма", Display: func(o *models.Order) template.HTML { return template.HTML(Money(o.TotalCost)) }},
			{Name: "items", Label: "Позиции", Display: func(o *models.Order) template.HTML { return OrderItemInfo(o.Items) }},
			{Name: "comment", Label: "Комментарий", Display: func(o *models.Order) template.HTML { return textOrEmpty(o.Comment) }},
			{Name: "status_emoji", Label: "", Display: func(o *models.Order) template.HTML { return OrderStatusEmoji(o.Status) }},
		},
		Filters: []Filter{
			{Param: services.FilterOrderTable, Label: "Стол", Choices: tables},
			{Param: services.FilterOrderClient, Label: "Клиент", Choices: clientOptions(store)},
			{Param: services.FilterOrderStatus, Label: "Статус", Choices: staticOptions(orderStatusOptions())},
		},
		Fields: fields,
		ID:     func(o *models.Order) int64 { return o.ID },
		Label:  func(o *models.Order) string { return fmt.Sprintf("Заказ %d", o.ID) },
		New:    func() models.Order { return models.Order{Status: models.OrderStatusPreparing} },
		List:   store.ListOrders,
		Get:    store.GetOrder,
		Create: store.CreateOrder,
		Update: store.UpdateOrder,
		Delete: store.DeleteOrder,
		OnChange: func(ctx context.Context, before, after *models.Order) {
			if before != nil && before.Status != after.Status {
				notifier.OrderStatusChanged(ctx, *after)
			}
		},
	}
}

func orderItemAdmin(store Store) *ModelAdmin[models.OrderItem] {
	product := optFKField("product", "Продукт", productOptions(store, false),
		func(it *models.OrderItem) **int64 { return &it.ProductID })
	order := optIntField("order", "Номер заказа", func(it *models.OrderItem) **int64 { return &it.OrderID })
	order.Help = "Пусто, пока позиция в корзине."

	return &ModelAdmin[models.OrderItem]{
		Slug:       "order-items",
		Title:      "Позиции заказов",
		Searchable: true,
		Columns: []Column[models.OrderItem]{
			{Name: "order", Label: "Заказ", Link: true, Display: func(it *models.OrderItem) template.HTML {
				if it.OrderID == nil {
					return EmptyValue
				}
				return OrderNumber(*it.OrderID)
			}},
			{Name: "id", Label: "ID", Link: true, Display: func(it *models.OrderItem) template.HTML { return number(it.ID) }},
			{Name: "user", Label: "Клиент", Display: func(it *models.OrderItem) template.HTML { return clientName(it.Client) }},
			{Name: "product", Label: "Продукт", Edit: &product},
			{Name: "cost", Label: "Стоимость", Display: func(it *models.OrderItem) template.HTML { return template.HTML(Money(it.Cost())) }},
			{Name: "quantity", Label: "Количество", Display: func(it *models.OrderItem) template.HTML { return number(it.Quantity) }},
			{Name: "status_emoji", Label: "", Display: func(it *models.OrderItem) template.HTML { return OrderItemStatusEmoji(it.IsOrder) }},
		},
		Filters: []Filter{
			{Param: services.FilterItemClient, Label: "Клиент", Choices: clientOptions(store)},
			{Param: services.FilterItemIsOrder, Label: "Оформлен", Choices: staticOptions(yesNo)},
		},
		Fields: []Field[models.OrderItem]{
			order,
			product,
			intField("price", "Цена", func(it *models.OrderItem) *int64 { return &it.Price }),
			intField("quantity", "Количество", func(it *models.OrderItem) *int64 { return &it.Quantity }),
			optIntField("displacement", "Объем, мл", func(it *models.OrderItem) **int64 { return &it.Displacement }),
			boolField("is_order", "Оформлен", func(it *models.OrderItem) *bool { return &it.IsOrder }),
		},
		ID:     func(it *models.OrderItem) int64 { return it.ID },
		Label:  func(it *models.OrderItem) string { return fmt.Sprintf("Позиция %d", it.ID) },
		New:    func() models.OrderItem { return models.OrderItem{Quantity: 1} },
		List:   store.ListOrderItems,
		Get:    store.GetOrderItem,
		Create: store.CreateOrderItem,
		Update: store.UpdateOrderItem,
		Delete: store.DeleteOrderItem,
	}
}

func bookingAdmin(store Store, notifier Notifier) *ModelAdmin[models.Booking] {
	confirmed := boolField("is_confirmed", "Подтверждено", func(b *models.Booking) *bool { return &b.IsConfirmed })

	fields := []Field[models.Booking]{
		fkField("user", "Клиент", clientOptions(store), func(b *models.Booking) *int64 { return &b.ClientID }),
		intField("quantity_guests", "Количество гостей", func(b *models.Booking) *int64 { return &b.QuantityGuests }),
		dateTimeField("reserved_at", "Дата и время", func(b *models.Booking) *time.Time { return &b.ReservedAt }),
		optTextField("phone", "Телефон", KindText, func(b *models.Booking) **string { return &b.Phone }),
		confirmed,
	}
	fields = append(fields, createdUpdated(
		func(b *models.Booking) time.Time { return b.Created },
		func(b *models.Booking) time.Time { return b.Updated },
	)...)

	return &ModelAdmin[models.Booking]{
		Slug:       "bookings",
		Title:      "Бронирования",
		Searchable: true,
		Columns: []Column[models.Booking]{
			{Name: "id", Label: "ID", Link: true, Display: func(b *models.Booking) template.HTML { return number(b.ID) }},
			{Name: "user", Label: "Клиент", Link: true, Display: func(b *models.Booking) template.HTML { return clientName(b.Client) }},
			{Name: "quantity_guests", Label: "Гостей", Display: func(b *models.Booking) template.HTML { return number(b.QuantityGuests) }},
			{Name: "reserved_at", Label: "Дата брони", Display: func(b *models.Booking) template.HTML { return dateTime(b.ReservedAt) }},
			{Name: "phone", Label: "Телефон", Display: func(b *models.Booking) template.HTML { return textOrEmpty(b.Phone) }},
			{Name: "is_confirmed", Label: "Подтверждено", Edit: &confirmed},
			{Name: "status_emoji", Label: "", Display: func(b *models.Booking) template.HTML { return BookingStatusEmoji(b.IsConfirmed) }},
		},
		Filters: []Filter{
			{Param: services.FilterBookingClient, Label: "Клиент", Choices: clientOptions(store)},
			{Param: services.FilterBookingDay, Label: "Дата брони", Choices: staticOptions(dateRanges)},
		},
		Fields: fields,
		ID:     func(b *models.Booking) int64 { return b.ID },
		Label:  func(b *models.Booking) string { return fmt.Sprintf("Бронь %d", b.ID) },
		New:    func() models.Booking { return models.Booking{QuantityGuests: 1} },
		List:   store.ListBookings,
		Get:    store.GetBooking,
		Create: store.CreateBooking,
		Update: store.UpdateBooking,
		Delete: store.DeleteBooking,
		OnChange: func(ctx context.Context, before, after *models.Booking) {
			if before != nil && before.IsConfirmed != after.IsConfirmed {
				notifier.BookingConfirmationChanged(ctx, *after)
			}
		},
	}
}
