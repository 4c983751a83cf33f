package services

import (
	"context"
	"fmt"
	"strings"

	"restaurant-telegram/models"
)

// Booking list filter keys.
const (
	FilterBookingClient = "client"
	FilterBookingDay    = "reserved_at"
)

const bookingColumns = `b.id, b.client_id, b.quantity_guests, b.reserved_at, b.phone, b.is_confirmed, b.created, b.updated,
	c.username, c.telegram_id, c.is_blocked`

const bookingFrom = `bookings b JOIN clients c ON c.id = b.client_id`

func scanBooking(row scanner) (models.Booking, error) {
	var b models.Booking
	cl := &models.Client{}
	err := row.Scan(&b.ID, &b.ClientID, &b.QuantityGuests, &b.ReservedAt, &b.Phone, &b.IsConfirmed, &b.Created, &b.Updated,
		&cl.Username, &cl.TelegramID, &cl.IsBlocked)
	if err != nil {
		return b, err
	}
	cl.ID = b.ClientID
	b.Client = cl
	return b, nil
}

func ValidateBooking(b *models.Booking) error {
	if b.ClientID == 0 {
		return &ValidationError{Field: "user", Message: "обязательное поле"}
	}
	if b.QuantityGuests < 1 {
		return &ValidationError{Field: "quantity_guests", Message: "количество гостей должно быть не меньше 1"}
	}
	if b.ReservedAt.IsZero() {
		return &ValidationError{Field: "reserved_at", Message: "обязательное поле"}
	}
	if b.Phone != nil {
		p := strings.TrimSpace(*b.Phone)
		if p == "" {
			b.Phone = nil
		} else if len(p) > 32 {
			return &ValidationError{Field: "phone", Message: "не более 32 символов"}
		} else {
			b.Phone = &p
		}
	}
	return nil
}

// ListBookings searches by phone, newest first.
func (s *Store) ListBookings(ctx context.Context, p ListParams) ([]models.Booking, int, error) {
	w := &where{}
	w.search(p.Search, []string{"b.phone"})
	if err := w.intFilter(p, FilterBookingClient, "b.client_id"); err != nil {
		return nil, 0, err
	}
	if err := w.dateFilter(p, FilterBookingDay, "b.reserved_at", s.now()); err != nil {
		return nil, 0, err
	}
	total, err := s.count(ctx, bookingFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}
	page, args := w.page(p)
	rows, err := s.db.Query(ctx, `SELECT `+bookingColumns+` FROM `+bookingFrom+w.String()+
		` ORDER BY b.created DESC, b.id DESC`+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (s *Store) GetBooking(ctx context.Context, id int64) (models.Booking, error) {
	b, err := scanBooking(s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM `+bookingFrom+` WHERE b.id = $1`, id))
	if err != nil {
		return models.Booking{}, notFound(err, "booking", id)
	}
	return b, nil
}

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	if err := ValidateBooking(b); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO bookings (client_id, quantity_guests, reserved_at, phone, is_confirmed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created, updated`,
		b.ClientID, b.QuantityGuests, b.ReservedAt, b.Phone, b.IsConfirmed,
	).Scan(&b.ID, &b.Created, &b.Updated)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

func (s *Store) UpdateBooking(ctx context.Context, b *models.Booking) error {
	if err := ValidateBooking(b); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		UPDATE bookings SET client_id = $1, quantity_guests = $2, reserved_at = $3, phone = $4,
			is_confirmed = $5, updated = now()
		WHERE id = $6
		RETURNING updated`,
		b.ClientID, b.QuantityGuests, b.ReservedAt, b.Phone, b.IsConfirmed, b.ID,
	).Scan(&b.Updated)
	if err != nil {
		return notFound(err, "booking", b.ID)
	}
	return nil
}

func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	return s.exec(ctx, "booking", id, `DELETE FROM bookings WHERE id = $1`, id)
}
