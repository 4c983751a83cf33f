package admin

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"restaurant-telegram/models"
	"restaurant-telegram/services"
)

type fixture struct {
	store    *fakeStore
	notifier *recordingNotifier
	site     *Site
	handler  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newFakeStore()
	anna := "anna"
	store.clients[1] = models.Client{ID: 1, Username: &anna, TelegramID: 1001}
	store.clients[2] = models.Client{ID: 2, TelegramID: 1002, IsBlocked: true}
	store.categories[1] = models.Category{ID: 1, Title: "Супы"}
	price := int64(350)
	store.products[1] = models.Product{ID: 1, Name: "Борщ", CategoryID: int64p(1), Price: &price}
	store.products[2] = models.Product{ID: 2, Name: "Вино", IsDrink: true}
	store.orders[1] = models.Order{ID: 1, Table: 5, ClientID: 1, Status: models.OrderStatusPreparing,
		Items: []models.OrderItem{{Price: 350, Quantity: 2, Product: &models.Product{Name: "Борщ"}}}, TotalCost: 700}
	store.bookings[1] = models.Booking{ID: 1, ClientID: 1, QuantityGuests: 2, ReservedAt: time.Now()}

	notifier := &recordingNotifier{}
	site, err := New(store, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)), 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &fixture{store: store, notifier: notifier, site: site, handler: site.Handler(nil)}
}

// settle waits for notifications dispatched by earlier requests.
func (f *fixture) settle(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.site.Wait(ctx); err != nil {
		t.Fatalf("notifications still pending: %v", err)
	}
}

func int64p(v int64) *int64 { return &v }

func (f *fixture) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexListsEveryModel(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/admin/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, want := range []string{"Управление рестораном", "/admin/clients/", "/admin/products/", "/admin/drinks/", "/admin/bookings/"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("index misses %q", want)
		}
	}
}

func TestOrderListColumns(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/admin/orders/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<p>Заказ 1</p>",
		"<p>Борщ - 2 шт.</p>",
		"&#128992;",
		"anna",
		EmptyValue,
		`name="form-1-status"`,
		`<option value="preparing" selected>Готовится</option>`,
		`href="/admin/orders/1/change/"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("order list misses %q", want)
		}
	}
}

func TestListRejectsUnknownFilterValue(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/admin/orders/?status=accepted", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "неизвестный статус") {
		t.Error("error message not rendered")
	}
}

func TestInlineStatusChangeNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"_ids": {"1"}, "form-1-status": {models.OrderStatusDelivered}}

	rec := f.do(t, http.MethodPost, "/admin/orders/?table=5", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "saved=1") || !strings.Contains(loc, "table=5") {
		t.Errorf("redirect = %q", loc)
	}
	if got := f.store.orders[1].Status; got != models.OrderStatusDelivered {
		t.Errorf("status = %q", got)
	}
	f.settle(t)
	if len(f.notifier.orders) != 1 || f.notifier.orders[0].Status != models.OrderStatusDelivered {
		t.Fatalf("notifications = %+v", f.notifier.orders)
	}

	// Unchanged rows are neither written nor announced.
	rec = f.do(t, http.MethodPost, "/admin/orders/", form)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "saved=0") {
		t.Errorf("redirect = %q", loc)
	}
	f.settle(t)
	if f.store.updates != 1 || len(f.notifier.orders) != 1 {
		t.Errorf("updates = %d, notifications = %d", f.store.updates, len(f.notifier.orders))
	}
}

func TestInlineSaveRejectsBadChoice(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/admin/orders/", url.Values{"_ids": {"1"}, "form-1-status": {"lost"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	f.settle(t)
	if f.store.orders[1].Status != models.OrderStatusPreparing || len(f.notifier.orders) != 0 {
		t.Error("invalid status must not be saved")
	}
}

func TestInlineConfirmBookingAndStock(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/admin/bookings/", url.Values{"_ids": {"1"}, "form-1-is_confirmed": {"on"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	f.settle(t)
	if !f.store.bookings[1].IsConfirmed || len(f.notifier.bookings) != 1 {
		t.Errorf("booking not confirmed or not announced: %+v", f.notifier.bookings)
	}

	rec = f.do(t, http.MethodPost, "/admin/products/", url.Values{"_ids": {"1"}, "form-1-category": {"1"}, "form-1-stock": {"on"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	f.settle(t)
	if !f.store.products[1].Stock || len(f.notifier.products) != 1 {
		t.Errorf("stock change not saved or not announced")
	}
}

func TestChangeFormRejectsDrinkPrice(t *testing.T) {
	f := newFixture(t)
	form := url.Values{"name": {"Вино"}, "description": {""}, "price": {"500"}, "is_drink": {"on"}}
	rec := f.do(t, http.MethodPost, "/admin/products/2/change/", form)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), template.HTMLEscapeString(services.DrinkPriceMessage)) {
		t.Error("drink price message not shown")
	}
	if !strings.Contains(rec.Body.String(), `value="500"`) {
		t.Error("posted value should be kept in the form")
	}
	if f.store.products[2].Price != nil {
		t.Error("drink price must not be stored")
	}
}

func TestChangeFormShowsReadOnlyFields(t *testing.T) {
	f := newFixture(t)
	photo := "https://cdn.example.com/wine.jpg"
	p := f.store.products[2]
	p.Photo = &photo
	p.Variants = []models.DrinkVariant{{Displacement: 150, Price: 400}}
	f.store.products[2] = p

	rec := f.do(t, http.MethodGet, "/admin/products/2/change/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<img src='https://cdn.example.com/wine.jpg' width=50>", "<p>150мл - 400 р.</p>", "Создано", "/admin/products/2/delete/"} {
		if !strings.Contains(body, want) {
			t.Errorf("change form misses %q", want)
		}
	}
}

func TestAddBooking(t *testing.T) {
	f := newFixture(t)
	form := url.Values{
		"user":            {"1"},
		"quantity_guests": {"4"},
		"reserved_at":     {"2026-05-01T19:30"},
		"phone":           {" +79000000000 "},
	}
	rec := f.do(t, http.MethodPost, "/admin/bookings/add/", form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if len(f.store.bookings) != 2 {
		t.Fatalf("bookings = %d", len(f.store.bookings))
	}
	var created models.Booking
	for id, b := range f.store.bookings {
		if id != 1 {
			created = b
		}
	}
	if created.QuantityGuests != 4 || created.Phone == nil || *created.Phone != "+79000000000" {
		t.Errorf("created = %+v", created)
	}
	if created.ReservedAt.Hour() != 19 || created.ReservedAt.Minute() != 30 {
		t.Errorf("reserved at = %v", created.ReservedAt)
	}
	f.settle(t)
	if len(f.notifier.bookings) != 0 {
		t.Error("new bookings are not announced")
	}
}

func TestAddFormFieldErrors(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/admin/bookings/add/", url.Values{"user": {""}, "quantity_guests": {"x"}, "reserved_at": {"soon"}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{msgRequired, msgInteger, msgDateTime} {
		if !strings.Contains(body, want) {
			t.Errorf("form misses error %q", want)
		}
	}
}

func TestChangeMissingObject(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{"/admin/clients/99/change/", "/admin/clients/abc/change/", "/admin/clients/99/delete/"} {
		if rec := f.do(t, http.MethodGet, target, nil); rec.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, rec.Code)
		}
	}
}

func TestDeleteConfirmation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/admin/categories/1/delete/", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Супы") {
		t.Fatalf("confirm page: %d", rec.Code)
	}
	if _, ok := f.store.categories[1]; !ok {
		t.Fatal("GET must not delete")
	}
	rec = f.do(t, http.MethodPost, "/admin/categories/1/delete/", url.Values{})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/admin/categories/" {
		t.Fatalf("delete: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, ok := f.store.categories[1]; ok {
		t.Error("category still present")
	}
}

func TestClientFilterLinks(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/admin/clients/?is_blocked=true&p=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "anna") {
		t.Error("unblocked client listed under is_blocked=true")
	}
	if !strings.Contains(body, `href="/admin/clients/?is_blocked=false"`) {
		t.Error("filter links should drop the page and replace the value")
	}
	if !strings.Contains(body, `href="/admin/clients/"`) {
		t.Error("missing reset link")
	}
}

func TestAPI(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/orders/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list struct {
		Count   int            `json:"count"`
		Results []models.Order `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 1 || list.Results[0].TotalCost != 700 {
		t.Errorf("list = %+v", list)
	}

	rec = f.do(t, http.MethodGet, "/api/bookings/?client=1", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("bookings list: %d %s", rec.Code, rec.Body)
	}

	rec = f.do(t, http.MethodGet, "/api/clients/1/", nil)
	var c models.Client
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil || c.TelegramID != 1001 {
		t.Errorf("client = %+v, %v", c, err)
	}

	rec = f.do(t, http.MethodGet, "/api/clients/42/", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"error"`) {
		t.Errorf("missing client: %d %s", rec.Code, rec.Body)
	}

	rec = f.do(t, http.MethodGet, "/api/orders/?status=accepted", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad filter: %d", rec.Code)
	}
}

func TestAPICORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/products/", nil)
	req.Header.Set("Origin", "https://menu.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestHealth(t *testing.T) {
	site, err := New(newFakeStore(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)), 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ok := site.Handler(func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}

	down := site.Handler(func(context.Context) error { return errors.New("db down") })
	rec = httptest.NewRecorder()
	down.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d", rec.Code)
	}
}

type slowNotifier struct {
	recordingNotifier
	delay time.Duration
}

func (n *slowNotifier) OrderStatusChanged(ctx context.Context, o models.Order) {
	select {
	case <-time.After(n.delay):
	case <-ctx.Done():
		return
	}
	n.recordingNotifier.OrderStatusChanged(ctx, o)
}

func TestSlowNotifierDoesNotDelayRedirect(t *testing.T) {
	f := newFixture(t)
	slow := &slowNotifier{delay: 2 * time.Second}
	site, err := New(f.store, slow, slog.New(slog.NewTextHandler(io.Discard, nil)), 100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.site, f.handler = site, site.Handler(nil)

	start := time.Now()
	rec := f.do(t, http.MethodPost, "/admin/orders/", url.Values{"_ids": {"1"}, "form-1-status": {models.OrderStatusCancelled}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if took := time.Since(start); took > time.Second {
		t.Errorf("inline save took %v, notifications must not hold the request", took)
	}

	f.settle(t)
	if len(slow.orders) != 1 || slow.orders[0].Status != models.OrderStatusCancelled {
		t.Errorf("notification not delivered after the redirect: %+v", slow.orders)
	}
}
