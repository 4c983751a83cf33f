package services

import (
	"context"
	"fmt"

	"restaurant-telegram/models"
)

// Order list filter keys.
const (
	FilterOrderTable  = "table"
	FilterOrderClient = "client"
	FilterOrderStatus = "status"
)

const orderColumns = `o.id, o.table_number, o.client_id, o.status, o.comment, o.created, o.updated,
	c.username, c.telegram_id, c.is_blocked`

const orderFrom = `orders o JOIN clients c ON c.id = o.client_id`

func scanOrder(row scanner) (models.Order, error) {
	var o models.Order
	cl := &models.Client{}
	err := row.Scan(&o.ID, &o.Table, &o.ClientID, &o.Status, &o.Comment, &o.Created, &o.Updated,
		&cl.Username, &cl.TelegramID, &cl.IsBlocked)
	if err != nil {
		return o, err
	}
	cl.ID = o.ClientID
	o.Client = cl
	return o, nil
}

func ValidateOrder(o *models.Order) error {
	if o.Status == "" {
		o.Status = models.OrderStatusPreparing
	}
	if !models.ValidOrderStatus(o.Status) {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("неизвестный статус %q", o.Status)}
	}
	if o.Table < 0 {
		return &ValidationError{Field: "table", Message: "номер стола не может быть отрицательным"}
	}
	if o.ClientID == 0 {
		return &ValidationError{Field: "user", Message: "обязательное поле"}
	}
	return nil
}

// ListOrders searches by the guest's username, newest first. Items and totals are attached.
func (s *Store) ListOrders(ctx context.Context, p ListParams) ([]models.Order, int, error) {
	w := &where{}
	w.search(p.Search, []string{"c.username"})
	if err := w.intFilter(p, FilterOrderTable, "o.table_number"); err != nil {
		return nil, 0, err
	}
	if err := w.intFilter(p, FilterOrderClient, "o.client_id"); err != nil {
		return nil, 0, err
	}
	if v := p.Filter(FilterOrderStatus); v != "" {
		if !models.ValidOrderStatus(v) {
			return nil, 0, &ValidationError{Field: FilterOrderStatus, Message: fmt.Sprintf("неизвестный статус %q", v)}
		}
		w.add("o.status = %s", v)
	}

	total, err := s.count(ctx, orderFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	page, args := w.page(p)
	rows, err := s.db.Query(ctx, `SELECT `+orderColumns+` FROM `+orderFrom+w.String()+
		` ORDER BY o.created DESC, o.id DESC`+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := s.attachItems(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// OrderTables returns the distinct table numbers that have orders.
func (s *Store) OrderTables(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT table_number FROM orders ORDER BY table_number`)
	if err != nil {
		return nil, fmt.Errorf("order tables: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	o, err := scanOrder(s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM `+orderFrom+` WHERE o.id = $1`, id))
	if err != nil {
		return models.Order{}, notFound(err, "order", id)
	}
	orders := []models.Order{o}
	if err := s.attachItems(ctx, orders); err != nil {
		return models.Order{}, err
	}
	return orders[0], nil
}

// OrderTotal sums price * quantity over the order's items.
func (s *Store) OrderTotal(ctx context.Context, orderID int64) (int64, error) {
	var total int64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(price::bigint * quantity), 0)::bigint FROM order_items WHERE order_id = $1`,
		orderID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("order %d total: %w", orderID, err)
	}
	return total, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := ValidateOrder(o); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO orders (table_number, client_id, status, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created, updated`,
		o.Table, o.ClientID, o.Status, o.Comment,
	).Scan(&o.ID, &o.Created, &o.Updated)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *Store) UpdateOrder(ctx context.Context, o *models.Order) error {
	if err := ValidateOrder(o); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		UPDATE orders SET table_number = $1, client_id = $2, status = $3, comment = $4, updated = now()
		WHERE id = $5
		RETURNING updated`,
		o.Table, o.ClientID, o.Status, o.Comment, o.ID,
	).Scan(&o.Updated)
	if err != nil {
		return notFound(err, "order", o.ID)
	}
	return nil
}

// DeleteOrder keeps the order's items with their order reference cleared.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.exec(ctx, "order", id, `DELETE FROM orders WHERE id = $1`, id)
}

func (s *Store) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	rows, err := s.db.Query(ctx, `SELECT `+itemColumns+` FROM `+itemFrom+`
		WHERE i.order_id = ANY($1) ORDER BY i.id`, ids)
	if err != nil {
		return fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	byOrder := make(map[int64][]models.OrderItem)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return err
		}
		byOrder[*it.OrderID] = append(byOrder[*it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		orders[i].TotalCost = models.TotalCostOf(orders[i].Items)
	}
	return nil
}
