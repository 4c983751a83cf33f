package admin

import (
	"net/http"
)

type deleteView struct {
	pageView
	Slug      string
	Object    string
	ChangeURL string
}

// handleDelete asks for confirmation on GET and deletes on POST.
func (m *ModelAdmin[T]) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	obj, err := m.Get(r.Context(), id)
	if err != nil {
		m.getFailed(w, r, err)
		return
	}
	if r.Method != http.MethodPost {
		m.site.render(w, http.StatusOK, "delete.html", deleteView{
			pageView:  m.site.page("Удалить: " + m.Label(&obj)),
			Slug:      m.Slug,
			Object:    m.Label(&obj),
			ChangeURL: m.changeURL(id),
		})
		return
	}
	if err := m.Delete(r.Context(), id); err != nil {
		m.getFailed(w, r, err)
		return
	}
	m.site.log.Info("admin object deleted", "model", m.Slug, "id", id)
	http.Redirect(w, r, m.listURL(), http.StatusSeeOther)
}
