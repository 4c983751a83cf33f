package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"restaurant-telegram/models"
)

// Product list filter keys.
const (
	FilterProductCreated  = "created"
	FilterProductCategory = "category"
	FilterProductStock    = "stock"

	// CategoryNone selects products without a category.
	CategoryNone = "none"
)

const DrinkPriceMessage = "Для продукта который является напитком цена задается в 'Таблица литража и цены напитка'"

func ValidateCategory(c *models.Category) error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return &ValidationError{Field: "title", Message: "обязательное поле"}
	}
	if utf8.RuneCountInString(c.Title) > 200 {
		return &ValidationError{Field: "title", Message: "не более 200 символов"}
	}
	return nil
}

// ValidateProduct enforces that a drink is priced only through its variants.
func ValidateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "обязательное поле"}
	}
	if utf8.RuneCountInString(p.Name) > 200 {
		return &ValidationError{Field: "name", Message: "не более 200 символов"}
	}
	if p.Photo != nil && utf8.RuneCountInString(*p.Photo) > 200 {
		return &ValidationError{Field: "photo", Message: "не более 200 символов"}
	}
	if p.Price != nil && *p.Price < 0 {
		return &ValidationError{Field: "price", Message: "цена не может быть отрицательной"}
	}
	if p.IsDrink && p.Price != nil && *p.Price != 0 {
		return &ValidationError{Field: "price", Message: DrinkPriceMessage}
	}
	return nil
}

func (s *Store) ListCategories(ctx context.Context, p ListParams) ([]models.Category, int, error) {
	w := &where{}
	w.search(p.Search, []string{"c.title"})
	total, err := s.count(ctx, "categories c", w)
	if err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}
	page, args := w.page(p)
	rows, err := s.db.Query(ctx, `SELECT c.id, c.title FROM categories c`+w.String()+` ORDER BY c.title, c.id`+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// AllCategories returns every category, for select boxes and filters.
func (s *Store) AllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.Query(ctx, `SELECT id, title FROM categories ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	err := s.db.QueryRow(ctx, `SELECT id, title FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Title)
	if err != nil {
		return models.Category{}, notFound(err, "category", id)
	}
	return c, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	if err := ValidateCategory(c); err != nil {
		return err
	}
	if err := s.db.QueryRow(ctx, `INSERT INTO categories (title) VALUES ($1) RETURNING id`, c.Title).Scan(&c.ID); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	if err := ValidateCategory(c); err != nil {
		return err
	}
	return s.exec(ctx, "category", c.ID, `UPDATE categories SET title = $1 WHERE id = $2`, c.Title, c.ID)
}

// DeleteCategory leaves its products uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.exec(ctx, "category", id, `DELETE FROM categories WHERE id = $1`, id)
}

const productColumns = `p.id, p.name, p.description, p.photo, p.category_id, p.price, p.stock, p.is_drink,
	p.created, p.updated, cat.title`

const productFrom = `products p LEFT JOIN categories cat ON cat.id = p.category_id`

func scanProduct(row scanner) (models.Product, error) {
	var p models.Product
	var catTitle *string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Photo, &p.CategoryID, &p.Price, &p.Stock, &p.IsDrink,
		&p.Created, &p.Updated, &catTitle)
	if err != nil {
		return p, err
	}
	if p.CategoryID != nil && catTitle != nil {
		p.Category = &models.Category{ID: *p.CategoryID, Title: *catTitle}
	}
	return p, nil
}

// ListProducts searches by name, newest first. Drink variants are attached to drinks.
func (s *Store) ListProducts(ctx context.Context, p ListParams) ([]models.Product, int, error) {
	w := &where{}
	w.search(p.Search, []string{"p.name"})
	if err := w.dateFilter(p, FilterProductCreated, "p.created", s.now()); err != nil {
		return nil, 0, err
	}
	if v := p.Filter(FilterProductCategory); v == CategoryNone {
		w.add("p.category_id IS NULL")
	} else if err := w.intFilter(p, FilterProductCategory, "p.category_id"); err != nil {
		return nil, 0, err
	}
	if err := w.boolFilter(p, FilterProductStock, "p.stock"); err != nil {
		return nil, 0, err
	}

	total, err := s.count(ctx, productFrom, w)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	page, args := w.page(p)
	rows, err := s.db.Query(ctx, `SELECT `+productColumns+` FROM `+productFrom+w.String()+
		` ORDER BY p.created DESC, p.id DESC`+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		pr, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := s.attachVariants(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AllProducts returns id and name of every product, for select boxes.
func (s *Store) AllProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, is_drink FROM products ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.IsDrink); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	p, err := scanProduct(s.db.QueryRow(ctx, `SELECT `+productColumns+` FROM `+productFrom+` WHERE p.id = $1`, id))
	if err != nil {
		return models.Product{}, notFound(err, "product", id)
	}
	if p.IsDrink {
		if p.Variants, err = s.VariantsByProduct(ctx, p.ID); err != nil {
			return models.Product{}, err
		}
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO products (name, description, photo, category_id, price, stock, is_drink)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created, updated`,
		p.Name, p.Description, p.Photo, p.CategoryID, p.Price, p.Stock, p.IsDrink,
	).Scan(&p.ID, &p.Created, &p.Updated)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := ValidateProduct(p); err != nil {
		return err
	}
	err := s.db.QueryRow(ctx, `
		UPDATE products SET
			name = $1, description = $2, photo = $3, category_id = $4,
			price = $5, stock = $6, is_drink = $7, updated = now()
		WHERE id = $8
		RETURNING updated`,
		p.Name, p.Description, p.Photo, p.CategoryID, p.Price, p.Stock, p.IsDrink, p.ID,
	).Scan(&p.Updated)
	if err != nil {
		return notFound(err, "product", p.ID)
	}
	return nil
}

// DeleteProduct drops its drink variants; order items keep their rows with the product cleared.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	return s.exec(ctx, "product", id, `DELETE FROM products WHERE id = $1`, id)
}

func (s *Store) attachVariants(ctx context.Context, products []models.Product) error {
	var ids []int64
	for _, p := range products {
		if p.IsDrink {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	rows, err := s.db.Query(ctx, `SELECT `+variantColumns+` FROM `+variantFrom+`
		WHERE v.product_id = ANY($1) ORDER BY v.displacement, v.id`, ids)
	if err != nil {
		return fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	byProduct := make(map[int64][]models.DrinkVariant)
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return err
		}
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := range products {
		products[i].Variants = byProduct[products[i].ID]
	}
	return nil
}
