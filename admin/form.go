package admin

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"restaurant-telegram/services"

	"github.com/go-chi/chi/v5"
)

type fieldView struct {
	Label      string
	Help       string
	Error      string
	IsReadOnly bool
	ReadOnly   template.HTML
	Input      inputView
}

type formView struct {
	pageView
	Slug      string
	IsAdd     bool
	ID        int64
	Fields    []fieldView
	Errors    []string
	DeleteURL string
}

// idParam parses {id}; a malformed id is answered with 404.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func (m *ModelAdmin[T]) handleAdd(w http.ResponseWriter, r *http.Request) {
	obj := m.New()
	if r.Method != http.MethodPost {
		m.renderForm(w, r, http.StatusOK, &obj, true, nil, nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if errs := m.bind(&obj, r.PostForm); len(errs) > 0 {
		m.renderForm(w, r, http.StatusBadRequest, &obj, true, r.PostForm, errs)
		return
	}
	if err := m.Create(r.Context(), &obj); err != nil {
		m.saveFailed(w, r, &obj, true, err)
		return
	}
	m.site.log.Info("admin object created", "model", m.Slug, "id", m.ID(&obj))
	m.changed(r.Context(), nil, &obj)
	http.Redirect(w, r, m.listURL()+"?saved=1", http.StatusSeeOther)
}

func (m *ModelAdmin[T]) handleChange(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	before, err := m.Get(r.Context(), id)
	if err != nil {
		m.getFailed(w, r, err)
		return
	}
	obj := before
	if r.Method != http.MethodPost {
		m.renderForm(w, r, http.StatusOK, &obj, false, nil, nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if errs := m.bind(&obj, r.PostForm); len(errs) > 0 {
		m.renderForm(w, r, http.StatusBadRequest, &obj, false, r.PostForm, errs)
		return
	}
	if err := m.Update(r.Context(), &obj); err != nil {
		m.saveFailed(w, r, &obj, false, err)
		return
	}
	m.site.log.Info("admin object changed", "model", m.Slug, "id", id)
	m.changed(r.Context(), &before, &obj)
	http.Redirect(w, r, m.listURL()+"?saved=1", http.StatusSeeOther)
}

func (m *ModelAdmin[T]) getFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	m.site.serverError(w, r, err)
}

// saveFailed re-renders the form for validation errors and fails otherwise.
func (m *ModelAdmin[T]) saveFailed(w http.ResponseWriter, r *http.Request, obj *T, isAdd bool, err error) {
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		m.renderForm(w, r, http.StatusBadRequest, obj, isAdd, r.PostForm, map[string]string{ve.Field: ve.Message})
		return
	}
	m.getFailed(w, r, err)
}

// bind copies posted values into obj and returns messages keyed by field name.
func (m *ModelAdmin[T]) bind(obj *T, form url.Values) map[string]string {
	errs := make(map[string]string)
	for i := range m.Fields {
		f := &m.Fields[i]
		if f.Kind == KindReadOnly || f.Set == nil {
			continue
		}
		if err := f.Set(obj, form.Get(f.Name)); err != nil {
			var ve *services.ValidationError
			if errors.As(err, &ve) {
				errs[f.Name] = ve.Message
			} else {
				errs[f.Name] = err.Error()
			}
		}
	}
	return errs
}

func (m *ModelAdmin[T]) renderForm(w http.ResponseWriter, r *http.Request, status int, obj *T, isAdd bool, posted url.Values, errs map[string]string) {
	ctx := r.Context()
	title := "Добавить: " + m.Title
	if !isAdd {
		title = m.Label(obj)
	}
	v := formView{
		pageView: m.site.page(title),
		Slug:     m.Slug,
		IsAdd:    isAdd,
	}
	if !isAdd {
		v.ID = m.ID(obj)
		v.DeleteURL = "/admin/" + m.Slug + "/" + strconv.FormatInt(v.ID, 10) + "/delete/"
	}

	known := make(map[string]bool, len(m.Fields))
	for i := range m.Fields {
		f := &m.Fields[i]
		known[f.Name] = true
		fv := fieldView{Label: f.Label, Help: f.Help, Error: errs[f.Name]}
		if f.Kind == KindReadOnly {
			if isAdd {
				continue
			}
			fv.IsReadOnly = true
			fv.ReadOnly = f.Display(obj)
			v.Fields = append(v.Fields, fv)
			continue
		}
		var opts []Option
		if f.Options != nil {
			var err error
			if opts, err = f.Options(ctx); err != nil {
				m.site.serverError(w, r, err)
				return
			}
		}
		var value *string
		if posted != nil {
			s := posted.Get(f.Name)
			value = &s
		}
		fv.Input = inputFor(f, f.Name, obj, opts, value)
		v.Fields = append(v.Fields, fv)
	}
	for name, msg := range errs {
		if !known[name] {
			v.Errors = append(v.Errors, msg)
		}
	}
	m.site.render(w, status, "form.html", v)
}
