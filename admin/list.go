package admin

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"restaurant-telegram/services"
)

type cellView struct {
	HTML  template.HTML
	Link  string
	Input *inputView
}

type rowView struct {
	ID    int64
	Cells []cellView
}

type choiceView struct {
	Label    string
	URL      string
	Selected bool
}

type filterView struct {
	Label   string
	Choices []choiceView
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type listView struct {
	pageView
	Slug       string
	Headers    []string
	Rows       []rowView
	Editable   bool
	Filters    []filterView
	Search     string
	Searchable bool
	Count      int
	Pages      []pageLink
	Action     string
	Error      string
	Saved      int
}

func (m *ModelAdmin[T]) listURL() string {
	return "/admin/" + m.Slug + "/"
}

func (m *ModelAdmin[T]) changeURL(id int64) string {
	return fmt.Sprintf("/admin/%s/%d/change/", m.Slug, id)
}

func (m *ModelAdmin[T]) inputName(id int64, field string) string {
	return fmt.Sprintf("form-%d-%s", id, field)
}

// listParams reads q, p and the declared filter parameters from the query string.
func (m *ModelAdmin[T]) listParams(q url.Values) services.ListParams {
	p := services.ListParams{
		Search:  q.Get("q"),
		Filters: make(map[string]string),
		Page:    1,
		PerPage: m.site.perPage,
	}
	if n, err := strconv.Atoi(q.Get("p")); err == nil && n > 0 {
		p.Page = n
	}
	for _, f := range m.Filters {
		if v := q.Get(f.Param); v != "" {
			p.Filters[f.Param] = v
		}
	}
	return p
}

func (m *ModelAdmin[T]) handleList(w http.ResponseWriter, r *http.Request) {
	saved, _ := strconv.Atoi(r.URL.Query().Get("saved"))
	m.renderList(w, r, http.StatusOK, "", saved)
}

// handleListSave applies the inline-editable columns of every posted row.
func (m *ModelAdmin[T]) handleListSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		m.renderList(w, r, http.StatusBadRequest, "Некорректная форма.", 0)
		return
	}
	ctx := r.Context()
	saved := 0
	for _, raw := range r.PostForm["_ids"] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			m.renderList(w, r, http.StatusBadRequest, "Некорректный идентификатор: "+raw, saved)
			return
		}
		changed, err := m.saveRow(ctx, id, r.PostForm)
		if err != nil {
			var ve *services.ValidationError
			switch {
			case errors.As(err, &ve):
				m.renderList(w, r, http.StatusBadRequest, fmt.Sprintf("Объект %d: %s", id, ve.Message), saved)
			case errors.Is(err, services.ErrNotFound):
				m.renderList(w, r, http.StatusNotFound, fmt.Sprintf("Объект %d не найден.", id), saved)
			default:
				m.site.serverError(w, r, err)
			}
			return
		}
		if changed {
			saved++
		}
	}
	q := r.URL.Query()
	q.Set("saved", strconv.Itoa(saved))
	http.Redirect(w, r, m.listURL()+"?"+q.Encode(), http.StatusSeeOther)
}

// saveRow updates one object only when an editable value actually changed.
func (m *ModelAdmin[T]) saveRow(ctx context.Context, id int64, form url.Values) (bool, error) {
	before, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	after := before
	changed := false
	for _, col := range m.Columns {
		f := col.Edit
		if f == nil {
			continue
		}
		if err := f.Set(&after, form.Get(m.inputName(id, f.Name))); err != nil {
			return false, err
		}
		if f.Get(&after) != f.Get(&before) {
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	if err := m.Update(ctx, &after); err != nil {
		return false, err
	}
	m.changed(ctx, &before, &after)
	return true, nil
}

func (m *ModelAdmin[T]) changed(ctx context.Context, before, after *T) {
	if m.OnChange != nil {
		m.OnChange(ctx, before, after)
	}
}

func (m *ModelAdmin[T]) renderList(w http.ResponseWriter, r *http.Request, status int, errMsg string, saved int) {
	ctx := r.Context()
	query := r.URL.Query()
	query.Del("saved")
	p := m.listParams(query)

	items, count, err := m.List(ctx, p)
	if err != nil {
		var ve *services.ValidationError
		if !errors.As(err, &ve) {
			m.site.serverError(w, r, err)
			return
		}
		status, errMsg = http.StatusBadRequest, ve.Message
	}

	v := listView{
		pageView:   m.site.page(m.Title),
		Slug:       m.Slug,
		Search:     p.Search,
		Searchable: m.Searchable,
		Count:      count,
		Action:     m.listURL(),
		Error:      errMsg,
		Saved:      saved,
	}

	if len(query) > 0 {
		v.Action += "?" + query.Encode()
	}

	editOpts := make(map[string][]Option)
	for _, col := range m.Columns {
		v.Headers = append(v.Headers, col.Label)
		if col.Edit == nil {
			continue
		}
		v.Editable = true
		if col.Edit.Options != nil {
			opts, err := col.Edit.Options(ctx)
			if err != nil {
				m.site.serverError(w, r, err)
				return
			}
			editOpts[col.Name] = opts
		}
	}

	for i := range items {
		obj := &items[i]
		id := m.ID(obj)
		row := rowView{ID: id}
		for _, col := range m.Columns {
			c := cellView{}
			if col.Display != nil {
				c.HTML = col.Display(obj)
			}
			if col.Link {
				c.Link = m.changeURL(id)
			}
			if col.Edit != nil {
				in := inputFor(col.Edit, m.inputName(id, col.Edit.Name), obj, editOpts[col.Name], nil)
				c.Input = &in
			}
			row.Cells = append(row.Cells, c)
		}
		v.Rows = append(v.Rows, row)
	}

	for _, f := range m.Filters {
		fv, err := m.filterView(ctx, f, query)
		if err != nil {
			m.site.serverError(w, r, err)
			return
		}
		v.Filters = append(v.Filters, fv)
	}
	v.Pages = m.pageLinks(query, p, count)

	m.site.render(w, status, "list.html", v)
}

func (m *ModelAdmin[T]) filterView(ctx context.Context, f Filter, query url.Values) (filterView, error) {
	choices, err := f.Choices(ctx)
	if err != nil {
		return filterView{}, fmt.Errorf("filter %s: %w", f.Param, err)
	}
	current := query.Get(f.Param)
	link := func(value string) string {
		q := cloneValues(query)
		q.Del("p")
		if value == "" {
			q.Del(f.Param)
		} else {
			q.Set(f.Param, value)
		}
		if len(q) == 0 {
			return m.listURL()
		}
		return m.listURL() + "?" + q.Encode()
	}
	fv := filterView{Label: f.Label}
	fv.Choices = append(fv.Choices, choiceView{Label: "Все", URL: link(""), Selected: current == ""})
	for _, c := range choices {
		fv.Choices = append(fv.Choices, choiceView{Label: c.Label, URL: link(c.Value), Selected: current == c.Value})
	}
	return fv, nil
}

func (m *ModelAdmin[T]) pageLinks(query url.Values, p services.ListParams, count int) []pageLink {
	per := p.PerPage
	if per <= 0 {
		per = services.DefaultPerPage
	}
	pages := (count + per - 1) / per
	if pages <= 1 {
		return nil
	}
	links := make([]pageLink, 0, pages)
	for n := 1; n <= pages; n++ {
		q := cloneValues(query)
		q.Set("p", strconv.Itoa(n))
		links = append(links, pageLink{Number: n, URL: m.listURL() + "?" + q.Encode(), Current: n == p.Page})
	}
	return links
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
