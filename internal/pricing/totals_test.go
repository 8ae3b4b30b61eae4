package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeriveItemSubtotal(t *testing.T) {
	cases := []struct {
		name  string
		price string
		qty   int
		want  string
	}{
		{"whole", "10.00", 3, "30"},
		{"cents", "19.99", 2, "39.98"},
		{"zero price", "0", 5, "0"},
		{"half rounds away from zero", "0.125", 1, "0.13"},
		{"large quantity", "2.49", 1000, "2490"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveItemSubtotal(dec(tc.price), tc.qty)
			if !got.Equal(dec(tc.want)) {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestTotals(t *testing.T) {
	cases := []struct {
		name                     string
		subtotal, rate, shipping string
		wantTax, wantTotal       string
	}{
		{"default rate", "100.00", "10", "5.00", "10", "115"},
		{"zero everything", "0", "0", "0", "0", "0"},
		{"fractional tax", "33.33", "8.25", "0", "2.75", "36.08"},
		{"half cent rounds up", "0.50", "1", "0", "0.01", "0.51"},
		{"free shipping", "60.00", "10", "0", "6", "66"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tax, total := Totals(dec(tc.subtotal), dec(tc.rate), dec(tc.shipping))
			if !tax.Equal(dec(tc.wantTax)) {
				t.Fatalf("tax: expected %s, got %s", tc.wantTax, tax)
			}
			if !total.Equal(dec(tc.wantTotal)) {
				t.Fatalf("total: expected %s, got %s", tc.wantTotal, total)
			}
		})
	}
}

func TestApplyTotalsOverwritesStaleDerivedFields(t *testing.T) {
	order := &models.Order{
		Subtotal:     dec("100"),
		TaxRate:      dec("10"),
		ShippingCost: dec("5"),
		TaxAmount:    dec("999.99"),
		TotalAmount:  dec("0.01"),
	}
	ApplyTotals(order)

	if !order.TaxAmount.Equal(dec("10")) {
		t.Fatalf("expected tax 10, got %s", order.TaxAmount)
	}
	if !order.TotalAmount.Equal(dec("115")) {
		t.Fatalf("expected total 115, got %s", order.TotalAmount)
	}
}

func TestApplyTotalsIsIdempotent(t *testing.T) {
	order := &models.Order{Subtotal: dec("47.333"), TaxRate: dec("7.5"), ShippingCost: dec("4.999")}
	ApplyTotals(order)
	tax, total := order.TaxAmount, order.TotalAmount

	ApplyTotals(order)
	if !order.TaxAmount.Equal(tax) || !order.TotalAmount.Equal(total) {
		t.Fatalf("second pass changed totals: %s/%s -> %s/%s", tax, total, order.TaxAmount, order.TotalAmount)
	}
	if !order.Subtotal.Equal(dec("47.33")) || !order.ShippingCost.Equal(dec("5")) {
		t.Fatalf("inputs not normalized: subtotal %s shipping %s", order.Subtotal, order.ShippingCost)
	}
}

func TestApplyItemSubtotal(t *testing.T) {
	item := &models.OrderItem{Price: dec("3.335"), Quantity: 3, Subtotal: dec("1")}
	ApplyItemSubtotal(item)

	if !item.Price.Equal(dec("3.34")) {
		t.Fatalf("expected price 3.34, got %s", item.Price)
	}
	if !item.Subtotal.Equal(dec("10.02")) {
		t.Fatalf("expected subtotal 10.02, got %s", item.Subtotal)
	}
}

func TestSumItemSubtotals(t *testing.T) {
	items := []models.OrderItem{
		{Subtotal: dec("10.10")},
		{Subtotal: dec("0.20")},
		{Subtotal: dec("5")},
	}
	if got := SumItemSubtotals(items); !got.Equal(dec("15.30")) {
		t.Fatalf("expected 15.30, got %s", got)
	}
	if got := SumItemSubtotals(nil); !got.IsZero() {
		t.Fatalf("expected zero for no items, got %s", got)
	}
}

func TestOverflowNamesFieldsPastColumnLimit(t *testing.T) {
	order := &models.Order{Subtotal: dec("90000000"), TaxRate: dec("20"), ShippingCost: dec("5")}
	ApplyTotals(order)
	got := OrderOverflow(order)
	if len(got) != 1 || got[0] != "total_amount" {
		t.Fatalf("expected total_amount only, got %v", got)
	}

	item := &models.OrderItem{Price: dec("99999999.99"), Quantity: 1}
	ApplyItemSubtotal(item)
	if got := ItemOverflow(item); len(got) != 0 {
		t.Fatalf("expected the column maximum to fit, got %v", got)
	}
	item.Quantity = 2
	ApplyItemSubtotal(item)
	if got := ItemOverflow(item); len(got) != 1 || got[0] != "subtotal" {
		t.Fatalf("expected subtotal overflow, got %v", got)
	}
}
