package checkout

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"mataam/internal/cart"
	"mataam/internal/catalog"
)

func sampleCart() *cart.Cart {
	c := cart.New()
	c.AddItem(catalog.Product{ID: 1, Name: "كبة مقلية", Price: 500, UnitType: catalog.UnitPiece}, decimal.NewFromInt(2))
	c.AddItem(catalog.Product{ID: 2, Name: "ورق عنب", Price: 600, UnitType: catalog.UnitKilo}, decimal.RequireFromString("1.5"))
	return c
}

func TestFormatMinor(t *testing.T) {
	tests := map[string]string{
		"0":     "0.00",
		"5":     "0.05",
		"1250":  "12.50",
		"1900":  "19.00",
		"166.5": "1.67",
	}
	for in, want := range tests {
		if got := FormatMinor(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatMinor(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestTakeawayMessage(t *testing.T) {
	c := sampleCart()
	msg := Composer{}.Message(c.Items(), c.TotalPrice(), nil)

	want := "مرحباً، أريد طلب:\n\n" +
		"- كبة مقلية: 2 حبة\n" +
		"- ورق عنب: 1.5 كيلو\n" +
		"\nالمجموع: 19.00 د.أ" +
		"\n\nاستلام من المحل"
	if msg != want {
		t.Fatalf("message mismatch\n got: %q\nwant: %q", msg, want)
	}
	if strings.Contains(msg, "سعر التوصيل") {
		t.Fatalf("takeaway message must not carry a delivery fee")
	}
}

func TestDeliveryMessage(t *testing.T) {
	c := sampleCart()
	loc := &catalog.DeliveryLocation{ID: 3, Name: "خلدا", Price: 250}
	msg := Composer{Currency: "JOD"}.Message(c.Items(), c.TotalPrice(), loc)

	for _, part := range []string{
		"المجموع: 19.00 JOD",
		"التوصيل إلى: خلدا",
		"سعر التوصيل: 2.50 JOD",
		"الإجمالي مع التوصيل: 21.50 JOD",
	} {
		if !strings.Contains(msg, part) {
			t.Errorf("message missing %q:\n%s", part, msg)
		}
	}
	if strings.Contains(msg, "استلام من المحل") {
		t.Errorf("delivery message must not carry pickup text")
	}
}

func TestLink(t *testing.T) {
	msg := "مرحباً، أريد طلب:\n\n- a+b: 1 حبة"
	tests := []struct {
		name, phone, prefix string
	}{
		{"no phone", "", "https://wa.me/?text="},
		{"phone", "962790000000", "https://wa.me/962790000000?text="},
		{"plus stripped", "+962790000000", "https://wa.me/962790000000?text="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := Composer{Phone: tt.phone}.Link(msg)
			if !strings.HasPrefix(link, tt.prefix) {
				t.Fatalf("link = %q, want prefix %q", link, tt.prefix)
			}
			encoded := strings.TrimPrefix(link, tt.prefix)
			if strings.Contains(encoded, "+") || strings.Contains(encoded, " ") {
				t.Fatalf("text not percent-encoded: %q", encoded)
			}
			got, err := url.QueryUnescape(encoded)
			if err != nil {
				t.Fatalf("unescape: %v", err)
			}
			if got != msg {
				t.Fatalf("round trip = %q, want %q", got, msg)
			}
		})
	}
}

func TestComposeEmptyCart(t *testing.T) {
	if _, err := (Composer{}).Compose(cart.New(), nil); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestComposeTotals(t *testing.T) {
	o, err := Composer{}.Compose(sampleCart(), &catalog.DeliveryLocation{Name: "x", Price: 200})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !o.Subtotal.Equal(decimal.NewFromInt(1900)) || o.DeliveryFee != 200 || !o.Total.Equal(decimal.NewFromInt(2100)) {
		t.Fatalf("unexpected totals: %+v", o)
	}
	if !strings.HasPrefix(o.URL, "https://wa.me/?text=") {
		t.Fatalf("unexpected url %q", o.URL)
	}
}
