package admin

import (
	"context"
	"html/template"
	"strconv"
	"time"

	"restaurant-telegram/models"
	"restaurant-telegram/services"
)

var dateRanges = []Option{
	{Value: services.DateToday, Label: "Сегодня"},
	{Value: services.DatePast7Days, Label: "Последние 7 дней"},
	{Value: services.DateThisMonth, Label: "Этот месяц"},
	{Value: services.DateThisYear, Label: "Этот год"},
}

func categoryOptions(store Store) func(context.Context) ([]Option, error) {
	return func(ctx context.Context) ([]Option, error) {
		cats, err := store.AllCategories(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(cats))
		for i, c := range cats {
			opts[i] = Option{Value: strconv.FormatInt(c.ID, 10), Label: c.Title}
		}
		return opts, nil
	}
}

func categoryAdmin(store Store) *ModelAdmin[models.Category] {
	return &ModelAdmin[models.Category]{
		Slug:       "categories",
		Title:      "Категории",
		Searchable: true,
		Columns: []Column[models.Category]{
			{Name: "title", Label: "Название", Link: true, Display: func(c *models.Category) template.HTML { return text(c.Title) }},
		},
		Fields: []Field[models.Category]{
			textField("title", "Название", KindText, func(c *models.Category) *string { return &c.Title }),
		},
		ID:     func(c *models.Category) int64 { return c.ID },
		Label:  func(c *models.Category) string { return c.Title },
		New:    func() models.Category { return models.Category{} },
		List:   store.ListCategories,
		Get:    store.GetCategory,
		Create: store.CreateCategory,
		Update: store.UpdateCategory,
		Delete: store.DeleteCategory,
	}
}

func productAdmin(store Store, notifier Notifier) *ModelAdmin[models.Product] {
	category := optFKField("category", "Категория", categoryOptions(store),
		func(p *models.Product) **int64 { return &p.CategoryID })
	stock := boolField("stock", "Нет в наличии", func(p *models.Product) *bool { return &p.Stock })
	stock.Help = "Отмеченные позиции скрыты из меню."
	price := optIntField("price", "Цена", func(p *models.Product) **int64 { return &p.Price })
	price.Help = "Для напитков оставьте пустым."

	fields := []Field[models.Product]{
		textField("name", "Название", KindText, func(p *models.Product) *string { return &p.Name }),
		textField("description", "Описание", KindTextarea, func(p *models.Product) *string { return &p.Description }),
		optTextField("photo", "Фото (URL)", KindText, func(p *models.Product) **string { return &p.Photo }),
		readOnlyField("photo_preview", "Превью", func(p *models.Product) template.HTML { return PhotoThumbnail(p.Photo) }),
		category,
		price,
		stock,
		boolField("is_drink", "Напиток", func(p *models.Product) *bool { return &p.IsDrink }),
		readOnlyField("variants", "Объемы и цены", DrinkVariantInfo),
	}
	fields = append(fields, createdUpdated(
		func(p *models.Product) time.Time { return p.Created },
		func(p *models.Product) time.Time { return p.Updated },
	)...)

	categoryFilter := func(ctx context.Context) ([]Option, error) {
		opts, err := categoryOptions(store)(ctx)
		if err != nil {
			return nil, err
		}
		return append(opts, Option{Value: services.CategoryNone, Label: EmptyValue}), nil
	}

	return &ModelAdmin[models.Product]{
		Slug:       "products",
		Title:      "Продукты",
		Searchable: true,
		Columns: []Column[models.Product]{
			{Name: "id", Label: "ID", Link: true, Display: func(p *models.Product) template.HTML { return number(p.ID) }},
			{Name: "name", Label: "Название", Link: true, Display: func(p *models.Product) template.HTML { return text(p.Name) }},
			{Name: "description", Label: "Описание", Display: func(p *models.Product) template.HTML { return text(p.Description) }},
			{Name: "category", Label: "Категория", Edit: &category},
			{Name: "photo", Label: "Фото", Display: func(p *models.Product) template.HTML { return PhotoThumbnail(p.Photo) }},
			{Name: "stock", Label: "Нет в наличии", Edit: &stock},
		},
		Filters: []Filter{
			{Param: services.FilterProductCreated, Label: "Создано", Choices: staticOptions(dateRanges)},
			{Param: services.FilterProductCategory, Label: "Категория", Choices: categoryFilter},
			{Param: services.FilterProductStock, Label: "Нет в наличии", Choices: staticOptions(yesNo)},
		},
		Fields: fields,
		ID:     func(p *models.Product) int64 { return p.ID },
		Label:  func(p *models.Product) string { return p.Name },
		New:    func() models.Product { return models.Product{} },
		List:   store.ListProducts,
		Get:    store.GetProduct,
		Create: store.CreateProduct,
		Update: store.UpdateProduct,
		Delete: store.DeleteProduct,
		OnChange: func(ctx context.Context, before, after *models.Product) {
			if before != nil && before.Stock != after.Stock {
				notifier.ProductStockChanged(ctx, *after)
			}
		},
	}
}

func productOptions(store Store, drinksOnly bool) func(context.Context) ([]Option, error) {
	return func(ctx context.Context) ([]Option, error) {
		products, err := store.AllProducts(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, 0, len(products))
		for _, p := range products {
			if drinksOnly && !p.IsDrink {
				continue
			}
			opts = append(opts, Option{Value: strconv.FormatInt(p.ID, 10), Label: p.Name})
		}
		return opts, nil
	}
}

func drinkVariantAdmin(store Store) *ModelAdmin[models.DrinkVariant] {
	product := fkField("product", "Напиток", productOptions(store, true),
		func(v *models.DrinkVariant) *int64 { return &v.ProductID })

	nameChoices := func(ctx context.Context) ([]Option, error) {
		names, _, err := store.VariantFilterValues(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(names))
		for i, n := range names {
			opts[i] = Option{Value: n, Label: n}
		}
		return opts, nil
	}
	displacementChoices := func(ctx context.Context) ([]Option, error) {
		_, mls, err := store.VariantFilterValues(ctx)
		if err != nil {
			return nil, err
		}
		opts := make([]Option, len(mls))
		for i, ml := range mls {
			v := strconv.FormatInt(ml, 10)
			opts[i] = Option{Value: v, Label: v + " мл"}
		}
		return opts, nil
	}

	return &ModelAdmin[models.DrinkVariant]{
		Slug:       "drinks",
		Title:      "Объемы напитков",
		Searchable: true,
		Columns: []Column[models.DrinkVariant]{
			{Name: "name", Label: "Название", Link: true, Display: func(v *models.DrinkVariant) template.HTML { return text(v.Name) }},
			{Name: "displacement", Label: "Объем, мл", Display: func(v *models.DrinkVariant) template.HTML { return number(v.Displacement) }},
			{Name: "price", Label: "Цена", Display: func(v *models.DrinkVariant) template.HTML { return template.HTML(Money(v.Price)) }},
			{Name: "product", Label: "Напиток", Edit: &product},
		},
		Filters: []Filter{
			{Param: services.FilterVariantName, Label: "Название", Choices: nameChoices},
			{Param: services.FilterVariantDisplacement, Label: "Объем", Choices: displacementChoices},
		},
		Fields: []Field[models.DrinkVariant]{
			textField("name", "Название", KindText, func(v *models.DrinkVariant) *string { return &v.Name }),
			intField("displacement", "Объем, мл", func(v *models.DrinkVariant) *int64 { return &v.Displacement }),
			intField("price", "Цена", func(v *models.DrinkVariant) *int64 { return &v.Price }),
			product,
		},
		ID:    func(v *models.DrinkVariant) int64 { return v.ID },
		Label: func(v *models.DrinkVariant) string { return v.Name },
		New: func() models.DrinkVariant {
			return models.DrinkVariant{Displacement: models.DefaultDisplacement, Price: models.DefaultVariantPrice}
		},
		List:   store.ListDrinkVariants,
		Get:    store.GetDrinkVariant,
		Create: store.CreateDrinkVariant,
		Update: store.UpdateDrinkVariant,
		Delete: store.DeleteDrinkVariant,
	}
}
