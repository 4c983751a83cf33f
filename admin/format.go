package admin

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"restaurant-telegram/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EmptyValue is shown for missing values.
const EmptyValue = "-пусто-"

var ruPrinter = message.NewPrinter(language.Russian)

// Money prints an integer amount with Russian digit grouping.
func Money(v int64) string {
	return ruPrinter.Sprintf("%d", v)
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

func textOrEmpty(s *string) template.HTML {
	if s == nil || strings.TrimSpace(*s) == "" {
		return EmptyValue
	}
	return template.HTML(esc(*s))
}

func text(s string) template.HTML {
	if s == "" {
		return EmptyValue
	}
	return template.HTML(esc(s))
}

func number(v int64) template.HTML {
	return template.HTML(strconv.FormatInt(v, 10))
}

func boolIcon(v bool) template.HTML {
	if v {
		return "&#9989;"
	}
	return "&#10060;"
}

// PhotoThumbnail renders a 50px preview of the product photo, or nothing.
func PhotoThumbnail(photo *string) template.HTML {
	if photo == nil || *photo == "" {
		return ""
	}
	return template.HTML(fmt.Sprintf("<img src='%s' width=50>", esc(*photo)))
}

// DrinkVariantInfo lists pour sizes and prices of a drink.
func DrinkVariantInfo(p *models.Product) template.HTML {
	if p == nil || !p.IsDrink {
		return ""
	}
	var b strings.Builder
	for _, v := range p.Variants {
		fmt.Fprintf(&b, "<p>%dмл - %s р.</p>", v.Displacement, Money(v.Price))
	}
	return template.HTML(b.String())
}

var orderStatusLabels = map[string]string{
	models.OrderStatusPreparing: "Готовится",
	models.OrderStatusDelivered: "Доставлен гостю",
	models.OrderStatusCancelled: "Отменен",
}

func OrderStatusLabel(status string) string {
	if l, ok := orderStatusLabels[status]; ok {
		return l
	}
	return status
}

func OrderStatusEmoji(status string) template.HTML {
	switch status {
	case models.OrderStatusPreparing:
		return "&#128992;"
	case models.OrderStatusDelivered:
		return "&#9989;"
	case models.OrderStatusCancelled:
		return "&#10060;"
	}
	return ""
}

func OrderNumber(id int64) template.HTML {
	return template.HTML(fmt.Sprintf("<p>Заказ %d</p>", id))
}

// OrderItemInfo lists the products of an order; drinks include the pour size.
func OrderItemInfo(items []models.OrderItem) template.HTML {
	var b strings.Builder
	for _, it := range items {
		if it.Product == nil {
			fmt.Fprintf(&b, "<p>%s - %d шт.</p>", EmptyValue, it.Quantity)
			continue
		}
		name := esc(it.Product.Name)
		if it.Product.IsDrink {
			ml := EmptyValue
			if it.Displacement != nil {
				ml = strconv.FormatInt(*it.Displacement, 10)
			}
			fmt.Fprintf(&b, "<p>%s - %sмл %dшт. </p>", name, ml, it.Quantity)
		} else {
			fmt.Fprintf(&b, "<p>%s - %d шт.</p>", name, it.Quantity)
		}
	}
	return template.HTML(b.String())
}

// OrderItemStatusEmoji: finalized items get a check mark, cart items a cart.
func OrderItemStatusEmoji(isOrder bool) template.HTML {
	if isOrder {
		return "&#9989;"
	}
	return "&#128722;"
}

func BookingStatusEmoji(confirmed bool) template.HTML {
	if confirmed {
		return "&#9989;"
	}
	return "&#128992;"
}
