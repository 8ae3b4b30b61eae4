// Package pricing derives order and order item money fields.
package pricing

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
)

// MoneyPlaces is the scale every stored money column carries.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// MaxAmount is the largest value a numeric(10,2) money column holds.
var MaxAmount = decimal.RequireFromString("99999999.99")

// Round rounds half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// DeriveItemSubtotal is round(price × quantity, 2).
func DeriveItemSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return Round(price.Mul(decimal.NewFromInt(int64(quantity))))
}

// Totals returns round(subtotal × taxRate / 100, 2) and
// round(subtotal + taxAmount + shippingCost, 2).
func Totals(subtotal, taxRate, shippingCost decimal.Decimal) (taxAmount, totalAmount decimal.Decimal) {
	taxAmount = Round(subtotal.Mul(taxRate).Div(hundred))
	totalAmount = Round(subtotal.Add(taxAmount).Add(shippingCost))
	return taxAmount, totalAmount
}

// ApplyItemSubtotal normalizes the item price to storage scale and rederives
// its subtotal.
func ApplyItemSubtotal(item *models.OrderItem) {
	item.Price = Round(item.Price)
	item.Subtotal = DeriveItemSubtotal(item.Price, item.Quantity)
}

// ApplyTotals normalizes the order's input money fields to storage scale and
// rederives TaxAmount and TotalAmount from them. Any previously held derived
// values are discarded.
func ApplyTotals(order *models.Order) {
	order.Subtotal = Round(order.Subtotal)
	order.TaxRate = Round(order.TaxRate)
	order.ShippingCost = Round(order.ShippingCost)
	order.TaxAmount, order.TotalAmount = Totals(order.Subtotal, order.TaxRate, order.ShippingCost)
}

// SumItemSubtotals is round(Σ item.Subtotal, 2).
func SumItemSubtotals(items []models.OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal)
	}
	return Round(sum)
}

// OrderOverflow names the money fields of order that exceed MaxAmount.
func OrderOverflow(order *models.Order) []string {
	return overflowing(map[string]decimal.Decimal{
		"subtotal":      order.Subtotal,
		"shipping_cost": order.ShippingCost,
		"tax_amount":    order.TaxAmount,
		"total_amount":  order.TotalAmount,
	})
}

// ItemOverflow names the money fields of item that exceed MaxAmount.
func ItemOverflow(item *models.OrderItem) []string {
	return overflowing(map[string]decimal.Decimal{
		"price":    item.Price,
		"subtotal": item.Subtotal,
	})
}

func overflowing(values map[string]decimal.Decimal) []string {
	var out []string
	for field, v := range values {
		if v.Abs().GreaterThan(MaxAmount) {
			out = append(out, field)
		}
	}
	slices.Sort(out)
	return out
}
