package admin

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"restaurant-telegram/models"
	"restaurant-telegram/services"
)

// fakeStore keeps rows in memory and applies the same validators as services.Store.
type fakeStore struct {
	clients    map[int64]models.Client
	categories map[int64]models.Category
	products   map[int64]models.Product
	variants   map[int64]models.DrinkVariant
	orders     map[int64]models.Order
	items      map[int64]models.OrderItem
	bookings   map[int64]models.Booking
	nextID     int64
	updates    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clients:    map[int64]models.Client{},
		categories: map[int64]models.Category{},
		products:   map[int64]models.Product{},
		variants:   map[int64]models.DrinkVariant{},
		orders:     map[int64]models.Order{},
		items:      map[int64]models.OrderItem{},
		bookings:   map[int64]models.Booking{},
		nextID:     100,
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func values[V any](m map[int64]V) []V {
	out := make([]V, 0, len(m))
	for _, k := range sortedKeys(m) {
		out = append(out, m[k])
	}
	return out
}

func get[V any](m map[int64]V, what string, id int64) (V, error) {
	v, ok := m[id]
	if !ok {
		return v, fmt.Errorf("%s %d: %w", what, id, services.ErrNotFound)
	}
	return v, nil
}

func del[V any](m map[int64]V, what string, id int64) error {
	if _, ok := m[id]; !ok {
		return fmt.Errorf("%s %d: %w", what, id, services.ErrNotFound)
	}
	delete(m, id)
	return nil
}

func (f *fakeStore) clientPtr(id int64) *models.Client {
	c, ok := f.clients[id]
	if !ok {
		return nil
	}
	return &c
}

func (f *fakeStore) ListClients(_ context.Context, p services.ListParams) ([]models.Client, int, error) {
	var out []models.Client
	for _, c := range values(f.clients) {
		if p.Search != "" && !strings.Contains(c.DisplayName(), p.Search) {
			continue
		}
		if v := p.Filter(services.FilterClientBlocked); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, 0, &services.ValidationError{Field: services.FilterClientBlocked, Message: "некорректное значение фильтра"}
			}
			if c.IsBlocked != b {
				continue
			}
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeStore) AllClients(context.Context) ([]models.Client, error) {
	return values(f.clients), nil
}

func (f *fakeStore) GetClient(_ context.Context, id int64) (models.Client, error) {
	return get(f.clients, "client", id)
}

func (f *fakeStore) CreateClient(_ context.Context, c *models.Client) error {
	if err := services.ValidateClient(c); err != nil {
		return err
	}
	c.ID = f.id()
	f.clients[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateClient(_ context.Context, c *models.Client) error {
	if err := services.ValidateClient(c); err != nil {
		return err
	}
	if _, err := get(f.clients, "client", c.ID); err != nil {
		return err
	}
	f.updates++
	f.clients[c.ID] = *c
	return nil
}

func (f *fakeStore) DeleteClient(_ context.Context, id int64) error {
	return del(f.clients, "client", id)
}

func (f *fakeStore) ListCategories(context.Context, services.ListParams) ([]models.Category, int, error) {
	out := values(f.categories)
	return out, len(out), nil
}

func (f *fakeStore) AllCategories(context.Context) ([]models.Category, error) {
	return values(f.categories), nil
}

func (f *fakeStore) GetCategory(_ context.Context, id int64) (models.Category, error) {
	return get(f.categories, "category", id)
}

func (f *fakeStore) CreateCategory(_ context.Context, c *models.Category) error {
	if err := services.ValidateCategory(c); err != nil {
		return err
	}
	c.ID = f.id()
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, c *models.Category) error {
	if err := services.ValidateCategory(c); err != nil {
		return err
	}
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, id int64) error {
	return del(f.categories, "category", id)
}

func (f *fakeStore) ListProducts(context.Context, services.ListParams) ([]models.Product, int, error) {
	out := values(f.products)
	return out, len(out), nil
}

func (f *fakeStore) AllProducts(context.Context) ([]models.Product, error) {
	return values(f.products), nil
}

func (f *fakeStore) GetProduct(_ context.Context, id int64) (models.Product, error) {
	return get(f.products, "product", id)
}

func (f *fakeStore) CreateProduct(_ context.Context, p *models.Product) error {
	if err := services.ValidateProduct(p); err != nil {
		return err
	}
	p.ID = f.id()
	f.products[p.ID] = *p
	return nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, p *models.Product) error {
	if err := services.ValidateProduct(p); err != nil {
		return err
	}
	f.updates++
	f.products[p.ID] = *p
	return nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id int64) error {
	return del(f.products, "product", id)
}

func (f *fakeStore) ListDrinkVariants(context.Context, services.ListParams) ([]models.DrinkVariant, int, error) {
	out := values(f.variants)
	return out, len(out), nil
}

func (f *fakeStore) VariantFilterValues(context.Context) ([]string, []int64, error) {
	var names []string
	var mls []int64
	for _, v := range values(f.variants) {
		names = append(names, v.Name)
		mls = append(mls, v.Displacement)
	}
	return names, mls, nil
}

func (f *fakeStore) GetDrinkVariant(_ context.Context, id int64) (models.DrinkVariant, error) {
	return get(f.variants, "drink variant", id)
}

func (f *fakeStore) CreateDrinkVariant(_ context.Context, v *models.DrinkVariant) error {
	if err := services.ValidateDrinkVariant(v); err != nil {
		return err
	}
	v.ID = f.id()
	f.variants[v.ID] = *v
	return nil
}

func (f *fakeStore) UpdateDrinkVariant(_ context.Context, v *models.DrinkVariant) error {
	if err := services.ValidateDrinkVariant(v); err != nil {
		return err
	}
	f.variants[v.ID] = *v
	return nil
}

func (f *fakeStore) DeleteDrinkVariant(_ context.Context, id int64) error {
	return del(f.variants, "drink variant", id)
}

func (f *fakeStore) withClient(o models.Order) models.Order {
	o.Client = f.clientPtr(o.ClientID)
	return o
}

func (f *fakeStore) ListOrders(_ context.Context, p services.ListParams) ([]models.Order, int, error) {
	status := p.Filter(services.FilterOrderStatus)
	if status != "" && !models.ValidOrderStatus(status) {
		return nil, 0, &services.ValidationError{Field: services.FilterOrderStatus, Message: fmt.Sprintf("неизвестный статус %q", status)}
	}
	var out []models.Order
	for _, o := range values(f.orders) {
		if status != "" && o.Status != status {
			continue
		}
		out = append(out, f.withClient(o))
	}
	return out, len(out), nil
}

func (f *fakeStore) OrderTables(context.Context) ([]int64, error) {
	var tables []int64
	for _, o := range values(f.orders) {
		tables = append(tables, o.Table)
	}
	return tables, nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (models.Order, error) {
	o, err := get(f.orders, "order", id)
	if err != nil {
		return o, err
	}
	return f.withClient(o), nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order) error {
	if err := services.ValidateOrder(o); err != nil {
		return err
	}
	o.ID = f.id()
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeStore) UpdateOrder(_ context.Context, o *models.Order) error {
	if err := services.ValidateOrder(o); err != nil {
		return err
	}
	if _, err := get(f.orders, "order", o.ID); err != nil {
		return err
	}
	f.updates++
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeStore) DeleteOrder(_ context.Context, id int64) error {
	return del(f.orders, "order", id)
}

func (f *fakeStore) ListOrderItems(context.Context, services.ListParams) ([]models.OrderItem, int, error) {
	out := values(f.items)
	return out, len(out), nil
}

func (f *fakeStore) GetOrderItem(_ context.Context, id int64) (models.OrderItem, error) {
	return get(f.items, "order item", id)
}

func (f *fakeStore) CreateOrderItem(_ context.Context, it *models.OrderItem) error {
	if err := services.ValidateOrderItem(it); err != nil {
		return err
	}
	it.ID = f.id()
	f.items[it.ID] = *it
	return nil
}

func (f *fakeStore) UpdateOrderItem(_ context.Context, it *models.OrderItem) error {
	if err := services.ValidateOrderItem(it); err != nil {
		return err
	}
	f.items[it.ID] = *it
	return nil
}

func (f *fakeStore) DeleteOrderItem(_ context.Context, id int64) error {
	return del(f.items, "order item", id)
}

func (f *fakeStore) ListBookings(context.Context, services.ListParams) ([]models.Booking, int, error) {
	var out []models.Booking
	for _, b := range values(f.bookings) {
		b.Client = f.clientPtr(b.ClientID)
		out = append(out, b)
	}
	return out, len(out), nil
}

func (f *fakeStore) GetBooking(_ context.Context, id int64) (models.Booking, error) {
	b, err := get(f.bookings, "booking", id)
	if err != nil {
		return b, err
	}
	b.Client = f.clientPtr(b.ClientID)
	return b, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, b *models.Booking) error {
	if err := services.ValidateBooking(b); err != nil {
		return err
	}
	b.ID = f.id()
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeStore) UpdateBooking(_ context.Context, b *models.Booking) error {
	if err := services.ValidateBooking(b); err != nil {
		return err
	}
	f.updates++
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeStore) DeleteBooking(_ context.Context, id int64) error {
	return del(f.bookings, "booking", id)
}

// recordingNotifier remembers every notification it receives.
type recordingNotifier struct {
	mu       sync.Mutex
	orders   []models.Order
	bookings []models.Booking
	products []models.Product
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, o models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, o)
}

func (n *recordingNotifier) BookingConfirmationChanged(_ context.Context, b models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bookings = append(n.bookings, b)
}

func (n *recordingNotifier) ProductStockChanged(_ context.Context, p models.Product) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.products = append(n.products, p)
}
