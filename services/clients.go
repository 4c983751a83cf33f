package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"restaurant-telegram/models"
)

// Client list filter keys.
const FilterClientBlocked = "is_blocked"

const clientColumns = `c.id, c.username, c.telegram_id, c.is_blocked, c.created, c.updated`

func scanClient(row scanner) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Username, &c.TelegramID, &c.IsBlocked, &c.Created, &c.Updated)
	return c, err
}

func ValidateClient(c *models.Client) error {
	if c.TelegramID == 0 {
		return &ValidationError{Field: "telegram_id", Message: "обязательное поле"}
	}
	if c.Username != nil && utf8.RuneCountInString(*c.Username) > 50 {
		return &ValidationError{Field: "username", Message: "не более 50 символов"}
	}
	return nil
}

// ListClients searches by username or exact id, newest first.
func (s *Store) ListClients(ctx context.Context, p ListParams) ([]models.Client, int, error) {
	w := &where{}
	w.search(p.Search, []string{"c.username"}, "c.id")
	if err := w.boolFilter(p, FilterClientBlocked, "c.is_blocked"); err != nil {
		return nil, 0, err
	}
	total, err := s.count(ctx, "clients c", w)
	if err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}
	page, args := w.page(p)
	rows, err := s.db.Query(ctx, `SELECT `+clientColumns+` FROM clients c`+w.String()+
		` ORDER BY c.created DESC, c.id DESC`+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// AllClients returns every client ordered by username, for select boxes and filters.
func (s *Store) AllClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.Query(ctx, `SELECT `+clientColumns+` FROM clients c ORDER BY c.username NULLS LAST, c.id`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	var out []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id int64) (models.Client, error) {
	c, err := scanClient(s.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients c WHERE c.id = $1`, id))
	if err != nil {
		return models.Client{}, notFound(err, "client", id)
	}
	return c, nil
}

func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	if err := ValidateClient(c); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO clients (username, telegram_id, is_blocked)
		VALUES ($1, $2, $3)
		RETURNING id, created, updated`,
		c.Username, c.TelegramID, c.IsBlocked,
	).Scan(&c.ID, &c.Created, &c.Updated)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *Store) UpdateClient(ctx context.Context, c *models.Client) error {
	if err := ValidateClient(c); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		UPDATE clients SET username = $1, telegram_id = $2, is_blocked = $3, updated = now()
		WHERE id = $4
		RETURNING updated`,
		c.Username, c.TelegramID, c.IsBlocked, c.ID,
	).Scan(&c.Updated)
	if err != nil {
		return notFound(err, "client", c.ID)
	}
	return nil
}

// DeleteClient removes the client together with its orders and bookings.
func (s *Store) DeleteClient(ctx context.Context, id int64) error {
	return s.exec(ctx, "client", id, `DELETE FROM clients WHERE id = $1`, id)
}
