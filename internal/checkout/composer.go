// Package checkout turns a cart into a pre-filled WhatsApp order message.
package checkout

import (
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"mataam/internal/cart"
	"mataam/internal/catalog"
)

// DefaultCurrency is the label appended to every amount.
const DefaultCurrency = "د.أ"

const (
	headerText   = "مرحباً، أريد طلب:"
	totalText    = "المجموع:"
	pickupText   = "استلام من المحل"
	deliverText  = "التوصيل إلى:"
	feeText      = "سعر التوصيل:"
	grandTotText = "الإجمالي مع التوصيل:"
)

var ErrEmptyCart = errors.New("cart is empty")

var hundred = decimal.NewFromInt(100)

// FormatMinor renders an amount in minor units as a major amount with two
// decimals, e.g. 1250 -> "12.50".
func FormatMinor(minor decimal.Decimal) string {
	return minor.Div(hundred).StringFixed(2)
}

// Composer builds order messages. Phone is the recipient in international
// format without "+"; when empty the link lets the shopper pick a chat.
type Composer struct {
	Phone    string
	Currency string
}

func (c Composer) currency() string {
	if c.Currency == "" {
		return DefaultCurrency
	}
	return c.Currency
}

// Message renders the order. loc == nil means takeaway.
func (c Composer) Message(lines []cart.Line, total decimal.Decimal, loc *catalog.DeliveryLocation) string {
	cur := c.currency()
	var b strings.Builder
	b.WriteString(headerText)
	b.WriteString("\n\n")
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l.Product.Name)
		b.WriteString(": ")
		b.WriteString(l.Quantity.String())
		b.WriteString(" ")
		b.WriteString(l.Product.UnitType.Label())
		b.WriteString("\n")
	}
	b.WriteString("\n" + totalText + " " + FormatMinor(total) + " " + cur)

	if loc == nil {
		b.WriteString("\n\n" + pickupText)
		return b.String()
	}
	fee := decimal.NewFromInt(loc.Price)
	b.WriteString("\n\n" + deliverText + " " + loc.Name)
	b.WriteString("\n" + feeText + " " + FormatMinor(fee) + " " + cur)
	b.WriteString("\n" + grandTotText + " " + FormatMinor(total.Add(fee)) + " " + cur)
	return b.String()
}

// Link returns the wa.me deep link carrying message as pre-filled text.
func (c Composer) Link(message string) string {
	phone := strings.TrimPrefix(strings.TrimSpace(c.Phone), "+")
	// QueryEscape turns spaces into "+", which WhatsApp shows literally.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + phone + "?text=" + text
}

// Order is a composed checkout, ready to hand to the shopper.
type Order struct {
	Message     string          `json:"message"`
	URL         string          `json:"url"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee int64           `json:"deliveryFee"`
	Total       decimal.Decimal `json:"total"`
}

// Compose builds the message and link for the current cart contents without
// changing the cart.
func (c Composer) Compose(ct *cart.Cart, loc *catalog.DeliveryLocation) (Order, error) {
	lines := ct.Items()
	if len(lines) == 0 {
		return Order{}, ErrEmptyCart
	}
	subtotal := ct.TotalPrice()
	o := Order{Subtotal: subtotal, Total: subtotal}
	if loc != nil {
		o.DeliveryFee = loc.Price
		o.Total = subtotal.Add(decimal.NewFromInt(loc.Price))
	}
	o.Message = c.Message(lines, subtotal, loc)
	o.URL = c.Link(o.Message)
	return o, nil
}
