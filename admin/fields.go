package admin

import (
	"context"
	"html/template"
	"strconv"
	"strings"
	"time"

	"restaurant-telegram/services"
)

// DateTimeLayout is the value format of <input type="datetime-local">.
const DateTimeLayout = "2006-01-02T15:04"

const (
	msgRequired = "Обязательное поле."
	msgInteger  = "Введите целое число."
	msgDateTime = "Введите правильную дату и время."
)

func invalid(field, msg string) error {
	return &services.ValidationError{Field: field, Message: msg}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1":
		return true
	}
	return false
}

func textField[T any](name, label string, kind FieldKind, ref func(*T) *string) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  kind,
		Get:   func(o *T) string { return *ref(o) },
		Set: func(o *T, v string) error {
			*ref(o) = v
			return nil
		},
	}
}

// optTextField stores a blank value as NULL.
func optTextField[T any](name, label string, kind FieldKind, ref func(*T) **string) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  kind,
		Get: func(o *T) string {
			if p := *ref(o); p != nil {
				return *p
			}
			return ""
		},
		Set: func(o *T, v string) error {
			if strings.TrimSpace(v) == "" {
				*ref(o) = nil
				return nil
			}
			*ref(o) = &v
			return nil
		},
	}
}

func intField[T any](name, label string, ref func(*T) *int64) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindNumber,
		Get:   func(o *T) string { return strconv.FormatInt(*ref(o), 10) },
		Set: func(o *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				return invalid(name, msgRequired)
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return invalid(name, msgInteger)
			}
			*ref(o) = n
			return nil
		},
	}
}

func optIntField[T any](name, label string, ref func(*T) **int64) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindNumber,
		Get:   func(o *T) string { return optInt(*ref(o)) },
		Set: func(o *T, v string) error {
			n, err := parseOptInt(name, v)
			if err != nil {
				return err
			}
			*ref(o) = n
			return nil
		},
	}
}

func boolField[T any](name, label string, ref func(*T) *bool) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindCheckbox,
		Get:   func(o *T) string { return strconv.FormatBool(*ref(o)) },
		Set: func(o *T, v string) error {
			*ref(o) = truthy(v)
			return nil
		},
	}
}

func dateTimeField[T any](name, label string, ref func(*T) *time.Time) Field[T] {
	return Field[T]{
		Name:  name,
		Label: label,
		Kind:  KindDateTime,
		Get: func(o *T) string {
			t := *ref(o)
			if t.IsZero() {
				return ""
			}
			return t.Local().Format(DateTimeLayout)
		},
		Set: func(o *T, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				return invalid(name, msgRequired)
			}
			t, err := time.ParseInLocation(DateTimeLayout, v, time.Local)
			if err != nil {
				return invalid(name, msgDateTime)
			}
			*ref(o) = t
			return nil
		},
	}
}

// fkField is a required select over related rows.
func fkField[T any](name, label string, opts func(context.Context) ([]Option, error), ref func(*T) *int64) Field[T] {
	f := intField(name, label, ref)
	f.Kind = KindSelect
	f.Options = opts
	f.Blank = true
	f.Get = func(o *T) string {
		if id := *ref(o); id != 0 {
			return strconv.FormatInt(id, 10)
		}
		return ""
	}
	return f
}

// optFKField is a select whose empty choice clears the reference.
func optFKField[T any](name, label string, opts func(context.Context) ([]Option, error), ref func(*T) **int64) Field[T] {
	f := optIntField(name, label, ref)
	f.Kind = KindSelect
	f.Options = opts
	f.Blank = true
	return f
}

func choiceField[T any](name, label string, choices []Option, ref func(*T) *string) Field[T] {
	f := textField(name, label, KindSelect, ref)
	f.Options = staticOptions(choices)
	f.Set = func(o *T, v string) error {
		for _, c := range choices {
			if c.Value == v {
				*ref(o) = v
				return nil
			}
		}
		return invalid(name, "Выберите корректный вариант.")
	}
	return f
}

func readOnlyField[T any](name, label string, display func(*T) template.HTML) Field[T] {
	return Field[T]{Name: name, Label: label, Kind: KindReadOnly, Display: display}
}

func createdUpdated[T any](created, updated func(*T) time.Time) []Field[T] {
	return []Field[T]{
		readOnlyField("created", "Создано", func(o *T) template.HTML { return dateTime(created(o)) }),
		readOnlyField("updated", "Обновлено", func(o *T) template.HTML { return dateTime(updated(o)) }),
	}
}

func staticOptions(choices []Option) func(context.Context) ([]Option, error) {
	return func(context.Context) ([]Option, error) { return choices, nil }
}

func optInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func parseOptInt(field, v string) (*int64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, invalid(field, msgInteger)
	}
	return &n, nil
}

func dateTime(t time.Time) template.HTML {
	if t.IsZero() {
		return EmptyValue
	}
	return template.HTML(t.Local().Format("02.01.2006 15:04"))
}

// inputFor renders the widget of f for obj. A non-nil posted value wins over the object.
func inputFor[T any](f *Field[T], name string, obj *T, opts []Option, posted *string) inputView {
	in := inputView{Name: name, Type: inputTypes[f.Kind]}
	value := f.Get(obj)
	if posted != nil {
		value = *posted
		if f.Kind == KindCheckbox {
			value = strconv.FormatBool(truthy(*posted))
		}
	}
	switch f.Kind {
	case KindCheckbox:
		in.Checked = value == "true"
	case KindSelect:
		if f.Blank {
			in.Options = append(in.Options, optionView{Value: "", Label: "---------", Selected: value == ""})
		}
		for _, o := range opts {
			in.Options = append(in.Options, optionView{Value: o.Value, Label: o.Label, Selected: o.Value == value})
		}
	default:
		in.Value = value
	}
	return in
}

var inputTypes = map[FieldKind]string{
	KindText:     "text",
	KindTextarea: "textarea",
	KindNumber:   "number",
	KindCheckbox: "checkbox",
	KindSelect:   "select",
	KindDateTime: "datetime-local",
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type inputView struct {
	Name    string
	Type    string
	Value   string
	Checked bool
	Options []optionView
}
