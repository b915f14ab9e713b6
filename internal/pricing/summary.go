package pricing

import (
	"cedra_storefront/internal/models"

	"github.com/shopspring/decimal"
)

// CartSummary est le récapitulatif affiché dans la vue panier
type CartSummary struct {
	ItemCount            int             `json:"totalItemCount"`
	TotalPrice           decimal.Decimal `json:"totalPrice"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	TotalDiscount        decimal.Decimal `json:"totalDiscount"`
	DeliveryCharge       decimal.Decimal `json:"deliveryCharge"`
	Payable              decimal.Decimal `json:"payable"`
	AmountToFreeShipping decimal.Decimal `json:"amountToFreeShipping"`
}

// Summarize calcule le récapitulatif avec la règle de livraison du panier
func Summarize(cart models.Cart, rates Rates) CartSummary {
	subtotal := Subtotal(cart.Items)
	summary := CartSummary{
		ItemCount:            cart.ItemCount(),
		TotalPrice:           GrossSubtotal(cart.Items),
		Subtotal:             subtotal,
		TotalDiscount:        TotalDiscount(cart.Items),
		DeliveryCharge:       decimal.Zero,
		AmountToFreeShipping: decimal.Zero,
	}
	if !cart.IsEmpty() {
		summary.DeliveryCharge = rates.Cart.Charge(subtotal)
		if missing := rates.Cart.FreeShippingThreshold.Sub(subtotal); missing.IsPositive() {
			summary.AmountToFreeShipping = missing
		}
	}
	summary.Payable = subtotal.Add(summary.DeliveryCharge)
	return summary
}
