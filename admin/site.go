package admin

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"restaurant-telegram/services"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Option is one choice of a select box or a list filter.
type Option struct {
	Value string
	Label string
}

type FieldKind int

const (
	KindText FieldKind = iota
	KindTextarea
	KindNumber
	KindCheckbox
	KindSelect
	KindDateTime
	KindReadOnly
)

// Field is one form input bound to a T. Read-only fields set Display instead of Set.
type Field[T any] struct {
	Name    string
	Label   string
	Help    string
	Kind    FieldKind
	Options func(ctx context.Context) ([]Option, error)
	Blank   bool // select offers an empty choice
	Get     func(*T) string
	Set     func(*T, string) error
	Display func(*T) template.HTML
}

// Column is one changelist column; Edit makes it inline-editable.
type Column[T any] struct {
	Name    string
	Label   string
	Link    bool
	Display func(*T) template.HTML
	Edit    *Field[T]
}

// Filter is a changelist sidebar filter; Param is passed to the store as a filter key.
type Filter struct {
	Param   string
	Label   string
	Choices func(ctx context.Context) ([]Option, error)
}

// ModelAdmin declares how one entity is listed, searched, filtered and edited.
type ModelAdmin[T any] struct {
	Slug       string
	Title      string
	Searchable bool
	Columns    []Column[T]
	Filters    []Filter
	Fields     []Field[T]

	ID     func(*T) int64
	Label  func(*T) string
	New    func() T
	List   func(ctx context.Context, p services.ListParams) ([]T, int, error)
	Get    func(ctx context.Context, id int64) (T, error)
	Create func(ctx context.Context, v *T) error
	Update func(ctx context.Context, v *T) error
	Delete func(ctx context.Context, id int64) error

	// OnChange runs after a successful save; before is nil for new objects.
	OnChange func(ctx context.Context, before, after *T)

	site *Site
}

type registered interface {
	slug() string
	title() string
	mount(r chi.Router)
	mountAPI(r chi.Router)
}

// Site is the admin console: a set of registered model admins sharing templates.
type Site struct {
	Title   string
	log     *slog.Logger
	perPage int
	pages   map[string]*template.Template
	models  []registered
	notify  *background
}

func newSite(log *slog.Logger, perPage int) (*Site, error) {
	s := &Site{
		Title:   "Управление рестораном",
		log:     log,
		perPage: perPage,
		pages:   make(map[string]*template.Template),
	}
	for _, page := range []string{"index.html", "list.html", "form.html", "delete.html"} {
		t, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templatesFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		s.pages[page] = t
	}
	return s, nil
}

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
}

func register[T any](s *Site, m *ModelAdmin[T]) {
	m.site = s
	s.models = append(s.models, m)
}

func (m *ModelAdmin[T]) slug() string  { return m.Slug }
func (m *ModelAdmin[T]) title() string { return m.Title }

func (m *ModelAdmin[T]) mount(r chi.Router) {
	r.Route("/"+m.Slug, func(r chi.Router) {
		r.Get("/", m.handleList)
		r.Post("/", m.handleListSave)
		r.Get("/add/", m.handleAdd)
		r.Post("/add/", m.handleAdd)
		r.Get("/{id}/change/", m.handleChange)
		r.Post("/{id}/change/", m.handleChange)
		r.Get("/{id}/delete/", m.handleDelete)
		r.Post("/{id}/delete/", m.handleDelete)
	})
}

func (m *ModelAdmin[T]) mountAPI(r chi.Router) {
	r.Route("/"+m.Slug, func(r chi.Router) {
		r.Get("/", m.handleAPIList)
		r.Get("/{id}/", m.handleAPIGet)
	})
}

type navItem struct {
	Slug  string
	Title string
}

type pageView struct {
	SiteTitle string
	Title     string
	Nav       []navItem
}

func (s *Site) page(title string) pageView {
	nav := make([]navItem, len(s.models))
	for i, m := range s.models {
		nav[i] = navItem{Slug: m.slug(), Title: m.title()}
	}
	return pageView{SiteTitle: s.Title, Title: title, Nav: nav}
}

func (s *Site) render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := s.pages[page]
	if !ok {
		s.log.Error("unknown template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", data); err != nil {
		s.log.Error("render template", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Site) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("admin request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Site) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", s.page(""))
}
