package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const DefaultPerPage = 100

// ListParams carries the changelist query: free-text search, exact filters and the page window.
type ListParams struct {
	Search  string
	Filters map[string]string
	Page    int // 1-based
	PerPage int
}

// Filter returns the trimmed filter value for key ("" when absent).
func (p ListParams) Filter(key string) string {
	if p.Filters == nil {
		return ""
	}
	return strings.TrimSpace(p.Filters[key])
}

func (p ListParams) window() (limit, offset int) {
	limit = p.PerPage
	if limit <= 0 {
		limit = DefaultPerPage
	}
	page := p.Page
	if page < 1 {
		page = 1
	}
	// Pages past the last representable offset are simply empty.
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return limit, (page - 1) * limit
}

type scanner interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed conditions with positional pgx arguments.
type where struct {
	conds []string
	args  []any
}

// add appends a condition; every %s in format becomes the next $n bound to vals in order.
func (w *where) add(format string, vals ...any) {
	ph := make([]any, len(vals))
	for i, v := range vals {
		w.args = append(w.args, v)
		ph[i] = "$" + strconv.Itoa(len(w.args))
	}
	w.conds = append(w.conds, fmt.Sprintf(format, ph...))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the clause with the full argument list.
func (w *where) page(p ListParams) (string, []any) {
	limit, offset := p.window()
	args := append(append([]any{}, w.args...), limit, offset)
	n := len(w.args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

// search adds one condition per whitespace-separated term; a term matches when any of
// the text columns contains it (case-insensitive). Numeric terms also match idColumns exactly.
func (w *where) search(q string, textColumns []string, idColumns ...string) {
	for _, term := range strings.Fields(q) {
		var parts []string
		var vals []any
		for _, col := range textColumns {
			parts = append(parts, col+" ILIKE %s")
			vals = append(vals, "%"+escapeLike(term)+"%")
		}
		if id, err := strconv.ParseInt(term, 10, 64); err == nil {
			for _, col := range idColumns {
				parts = append(parts, col+" = %s")
				vals = append(vals, id)
			}
		}
		if len(parts) == 0 {
			continue
		}
		w.add("("+strings.Join(parts, " OR ")+")", vals...)
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (w *where) boolFilter(p ListParams, key, column string) error {
	v := p.Filter(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return &ValidationError{Field: key, Message: fmt.Sprintf("некорректное значение фильтра: %q", v)}
	}
	w.add(column+" = %s", b)
	return nil
}

func (w *where) intFilter(p ListParams, key, column string) error {
	v := p.Filter(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return &ValidationError{Field: key, Message: fmt.Sprintf("некорректное значение фильтра: %q", v)}
	}
	w.add(column+" = %s", n)
	return nil
}

func (w *where) dateFilter(p ListParams, key, column string, now time.Time) error {
	v := p.Filter(key)
	if v == "" {
		return nil
	}
	from, to, ok := DateRange(v, now)
	if !ok {
		return &ValidationError{Field: key, Message: fmt.Sprintf("некорректное значение фильтра: %q", v)}
	}
	w.add(column+" >= %s AND "+column+" < %s", from, to)
	return nil
}

// Date range filter keys.
const (
	DateToday     = "today"
	DatePast7Days = "past_7_days"
	DateThisMonth = "this_month"
	DateThisYear  = "this_year"
)

// DateRange resolves a date filter key to the half-open interval [from, to) in now's location.
func DateRange(key string, now time.Time) (from, to time.Time, ok bool) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	switch key {
	case DateToday:
		return today, tomorrow, true
	case DatePast7Days:
		return today.AddDate(0, 0, -7), tomorrow, true
	case DateThisMonth:
		first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
		return first, first.AddDate(0, 1, 0), true
	case DateThisYear:
		first := time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location())
		return first, first.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}
