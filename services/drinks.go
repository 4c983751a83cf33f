package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"restaurant-telegram/models"
)

// Drink variant list filter keys.
const (
	FilterVariantName         = "name"
	FilterVariantDisplacement = "displacement"
)

const variantColumns = `v.id, v.name, v.displacement, v.price, v.product_id, p.name`

const variantFrom = `measuring_drinks v JOIN products p ON p.id = v.product_id`

func scanVariant(row scanner) (models.DrinkVariant, error) {
	var v models.DrinkVariant
	err := row.Scan(&v.ID, &v.Name, &v.Displacement, &v.Price, &v.ProductID, &v.ProductName)
	return v, err
}

func ValidateDrinkVariant(v *models.DrinkVariant) error {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return &ValidationError{Field: "name", Message: "обязательное поле"}
	}
	if utf8.RuneCountInString(v.Name) > 200 {
		return &ValidationError{Field: "name", Message: "не более 200 символов"}
	}
	if v.Displacement <= 0 {
		return &ValidationError{Field: "displacement", Message: "литраж должен быть больше нуля"}
	}
	if v.Price < 0 {
		return &ValidationError{Field: "price", Message: "цена не может быть отрицательной"}
	}
	if v.ProductID == 0 {
		return &ValidationError{Field: "product", Message: "обязательное поле"}
	}
	return nil
}

// ListDrinkVariants searches by name or displacement, ordered by name.
func (s *Store) ListDrinkVariants(ctx context.Context, p ListParams) ([]models.DrinkVariant, int, error) {
	w := &where{}
	w.search(p.Search, []string{"v.name", "v.displacement::text"})
	if v := p.Filter(FilterVariantName); v != "" {
		w.add("v.name = %s", v)
	}
	if err := w.intFilter(p, FilterVariantDisplacement, "v.displacement"); err != nil {
		return nil, 0, err
	}
	total, err := s.count(ctx, variantFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count variants: %w", err)
	}
	page, args := w.page(p)
	rows, err := s.db.Query(ctx, `SELECT `+variantColumns+` FROM `+variantFrom+w.String()+
		` ORDER BY v.name, v.id`+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var out []models.DrinkVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (s *Store) VariantsByProduct(ctx context.Context, productID int64) ([]models.DrinkVariant, error) {
	rows, err := s.db.Query(ctx, `SELECT `+variantColumns+` FROM `+variantFrom+`
		WHERE v.product_id = $1 ORDER BY v.displacement, v.id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants of product %d: %w", productID, err)
	}
	defer rows.Close()
	var out []models.DrinkVariant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// VariantFilterValues returns the distinct names and displacements used by the list filters.
func (s *Store) VariantFilterValues(ctx context.Context) (names []string, displacements []int64, err error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT name FROM measuring_drinks ORDER BY name`)
	if err != nil {
		return nil, nil, fmt.Errorf("variant names: %w", err)
	}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, nil, err
		}
		names = append(names, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	rows, err = s.db.Query(ctx, `SELECT DISTINCT displacement FROM measuring_drinks ORDER BY displacement`)
	if err != nil {
		return nil, nil, fmt.Errorf("variant displacements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d int64
		if err := rows.Scan(&d); err != nil {
			return nil, nil, err
		}
		displacements = append(displacements, d)
	}
	return names, displacements, rows.Err()
}

func (s *Store) GetDrinkVariant(ctx context.Context, id int64) (models.DrinkVariant, error) {
	v, err := scanVariant(s.db.QueryRow(ctx, `SELECT `+variantColumns+` FROM `+variantFrom+` WHERE v.id = $1`, id))
	if err != nil {
		return models.DrinkVariant{}, notFound(err, "drink variant", id)
	}
	return v, nil
}

func (s *Store) CreateDrinkVariant(ctx context.Context, v *models.DrinkVariant) error {
	if err := ValidateDrinkVariant(v); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO measuring_drinks (name, displacement, price, product_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		v.Name, v.Displacement, v.Price, v.ProductID,
	).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("create drink variant: %w", err)
	}
	return nil
}

func (s *Store) UpdateDrinkVariant(ctx context.Context, v *models.DrinkVariant) error {
	if err := ValidateDrinkVariant(v); err != nil {
		return err
	}
	return s.exec(ctx, "drink variant", v.ID, `
		UPDATE measuring_drinks SET name = $1, displacement = $2, price = $3, product_id = $4
		WHERE id = $5`,
		v.Name, v.Displacement, v.Price, v.ProductID, v.ID,
	)
}

func (s *Store) DeleteDrinkVariant(ctx context.Context, id int64) error {
	return s.exec(ctx, "drink variant", id, `DELETE FROM measuring_drinks WHERE id = $1`, id)
}
