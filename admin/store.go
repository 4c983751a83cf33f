package admin

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"restaurant-telegram/models"
	"restaurant-telegram/services"
)

// Store is the persistence the console needs; *services.Store implements it.
type Store interface {
	ListClients(ctx context.Context, p services.ListParams) ([]models.Client, int, error)
	AllClients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, id int64) (models.Client, error)
	CreateClient(ctx context.Context, c *models.Client) error
	UpdateClient(ctx context.Context, c *models.Client) error
	DeleteClient(ctx context.Context, id int64) error

	ListCategories(ctx context.Context, p services.ListParams) ([]models.Category, int, error)
	AllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListProducts(ctx context.Context, p services.ListParams) ([]models.Product, int, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	ListDrinkVariants(ctx context.Context, p services.ListParams) ([]models.DrinkVariant, int, error)
	VariantFilterValues(ctx context.Context) ([]string, []int64, error)
	GetDrinkVariant(ctx context.Context, id int64) (models.DrinkVariant, error)
	CreateDrinkVariant(ctx context.Context, v *models.DrinkVariant) error
	UpdateDrinkVariant(ctx context.Context, v *models.DrinkVariant) error
	DeleteDrinkVariant(ctx context.Context, id int64) error

	ListOrders(ctx context.Context, p services.ListParams) ([]models.Order, int, error)
	OrderTables(ctx context.Context) ([]int64, error)
	GetOrder(ctx context.Context, id int64) (models.Order, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	UpdateOrder(ctx context.Context, o *models.Order) error
	DeleteOrder(ctx context.Context, id int64) error

	ListOrderItems(ctx context.Context, p services.ListParams) ([]models.OrderItem, int, error)
	GetOrderItem(ctx context.Context, id int64) (models.OrderItem, error)
	CreateOrderItem(ctx context.Context, it *models.OrderItem) error
	UpdateOrderItem(ctx context.Context, it *models.OrderItem) error
	DeleteOrderItem(ctx context.Context, id int64) error

	ListBookings(ctx context.Context, p services.ListParams) ([]models.Booking, int, error)
	GetBooking(ctx context.Context, id int64) (models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, id int64) error
}

var _ Store = (*services.Store)(nil)

// Notifier is told about changes guests or downstream consumers care about.
// Implementations report their own failures. The console calls them off the request goroutine.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, o models.Order)
	BookingConfirmationChanged(ctx context.Context, b models.Booking)
	ProductStockChanged(ctx context.Context, p models.Product)
}

// Notifiers fans every call out to each notifier in order.
type Notifiers []Notifier

func (ns Notifiers) OrderStatusChanged(ctx context.Context, o models.Order) {
	for _, n := range ns {
		n.OrderStatusChanged(ctx, o)
	}
}

func (ns Notifiers) BookingConfirmationChanged(ctx context.Context, b models.Booking) {
	for _, n := range ns {
		n.BookingConfirmationChanged(ctx, b)
	}
}

func (ns Notifiers) ProductStockChanged(ctx context.Context, p models.Product) {
	for _, n := range ns {
		n.ProductStockChanged(ctx, p)
	}
}

// NotifyTimeout bounds a single background notification.
const NotifyTimeout = 30 * time.Second

// background hands every notification to its own goroutine with a context
// detached from the request.
type background struct {
	next Notifier
	log  *slog.Logger
	wg   sync.WaitGroup
}

func (b *background) run(ctx context.Context, kind string, fn func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				b.log.Error("notifier panicked", "kind", kind, "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, NotifyTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (b *background) OrderStatusChanged(ctx context.Context, o models.Order) {
	b.run(ctx, "order", func(ctx context.Context) { b.next.OrderStatusChanged(ctx, o) })
}

func (b *background) BookingConfirmationChanged(ctx context.Context, bk models.Booking) {
	b.run(ctx, "booking", func(ctx context.Context) { b.next.BookingConfirmationChanged(ctx, bk) })
}

func (b *background) ProductStockChanged(ctx context.Context, p models.Product) {
	b.run(ctx, "product", func(ctx context.Context) { b.next.ProductStockChanged(ctx, p) })
}

// wait blocks until pending notifications finish or ctx is done.
func (b *background) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
