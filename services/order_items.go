package services

import (
	"context"
	"fmt"

	"restaurant-telegram/models"
)

// Order item list filter keys.
const (
	FilterItemClient  = "client"
	FilterItemIsOrder = "is_order"
)

const itemColumns = `i.id, i.order_id, i.product_id, i.price, i.quantity, i.displacement, i.is_order,
	p.name, p.is_drink, o.client_id, c.username, c.telegram_id`

const itemFrom = `order_items i
	LEFT JOIN products p ON p.id = i.product_id
	LEFT JOIN orders o ON o.id = i.order_id
	LEFT JOIN clients c ON c.id = o.client_id`

func scanItem(row scanner) (models.OrderItem, error) {
	var it models.OrderItem
	var (
		productName *string
		isDrink     *bool
		clientID    *int64
		username    *string
		telegramID  *int64
	)
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Price, &it.Quantity, &it.Displacement, &it.IsOrder,
		&productName, &isDrink, &clientID, &username, &telegramID)
	if err != nil {
		return it, err
	}
	if it.ProductID != nil && productName != nil {
		it.Product = &models.Product{ID: *it.ProductID, Name: *productName, IsDrink: isDrink != nil && *isDrink}
	}
	if clientID != nil {
		it.Client = &models.Client{ID: *clientID, Username: username}
		if telegramID != nil {
			it.Client.TelegramID = *telegramID
		}
	}
	return it, nil
}

func ValidateOrderItem(it *models.OrderItem) error {
	if it.Price < 0 {
		return &ValidationError{Field: "price", Message: "цена не может быть отрицательной"}
	}
	if it.Quantity < 1 {
		return &ValidationError{Field: "quantity", Message: "количество должно быть не меньше 1"}
	}
	if it.Displacement != nil && *it.Displacement <= 0 {
		return &ValidationError{Field: "displacement", Message: "литраж должен быть больше нуля"}
	}
	return nil
}

// ListOrderItems searches by the username of the order's guest.
func (s *Store) ListOrderItems(ctx context.Context, p ListParams) ([]models.OrderItem, int, error) {
	w := &where{}
	w.search(p.Search, []string{"c.username"})
	if err := w.intFilter(p, FilterItemClient, "o.client_id"); err != nil {
		return nil, 0, err
	}
	if err := w.boolFilter(p, FilterItemIsOrder, "i.is_order"); err != nil {
		return nil, 0, err
	}
	total, err := s.count(ctx, itemFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count order items: %w", err)
	}
	page, args := w.page(p)
	rows, err := s.db.Query(ctx, `SELECT `+itemColumns+` FROM `+itemFrom+w.String()+
		` ORDER BY i.id`+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var out []models.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	return out, total, rows.Err()
}

func (s *Store) GetOrderItem(ctx context.Context, id int64) (models.OrderItem, error) {
	it, err := scanItem(s.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM `+itemFrom+` WHERE i.id = $1`, id))
	if err != nil {
		return models.OrderItem{}, notFound(err, "order item", id)
	}
	return it, nil
}

func (s *Store) CreateOrderItem(ctx context.Context, it *models.OrderItem) error {
	if err := ValidateOrderItem(it); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, price, quantity, displacement, is_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		it.OrderID, it.ProductID, it.Price, it.Quantity, it.Displacement, it.IsOrder,
	).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("create order item: %w", err)
	}
	return nil
}

func (s *Store) UpdateOrderItem(ctx context.Context, it *models.OrderItem) error {
	if err := ValidateOrderItem(it); err != nil {
		return err
	}
	return s.exec(ctx, "order item", it.ID, `
		UPDATE order_items SET
			order_id = $1, product_id = $2, price = $3, quantity = $4, displacement = $5, is_order = $6
		WHERE id = $7`,
		it.OrderID, it.ProductID, it.Price, it.Quantity, it.Displacement, it.IsOrder, it.ID,
	)
}

func (s *Store) DeleteOrderItem(ctx context.Context, id int64) error {
	return s.exec(ctx, "order item", id, `DELETE FROM order_items WHERE id = $1`, id)
}
