// Package pricing regroupe les calculs de prix du panier et des colis.
// Toutes les fonctions sont pures ; les montants ne sont jamais arrondis ici.
package pricing

import (
	"cedra_storefront/internal/models"

	"github.com/shopspring/decimal"
)

// Context est une règle de livraison : gratuit au-delà du seuil, forfait sinon
type Context struct {
	FreeShippingThreshold decimal.Decimal
	FlatFee               decimal.Decimal
}

// Rates regroupe les constantes tarifaires.
// Cart sert au résumé du panier, Package au calcul par colis (revue/paiement).
// Les deux forfaits diffèrent volontairement (50 vs 58) : voir DESIGN.md.
type Rates struct {
	Cart                  Context
	Package               Context
	PlatformFeePerPackage decimal.Decimal
	PlatformFeeMinimum    decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		Cart: Context{
			FreeShippingThreshold: decimal.NewFromInt(500),
			FlatFee:               decimal.NewFromInt(50),
		},
		Package: Context{
			FreeShippingThreshold: decimal.NewFromInt(500),
			FlatFee:               decimal.NewFromInt(58),
		},
		PlatformFeePerPackage: decimal.NewFromInt(16),
		PlatformFeeMinimum:    decimal.NewFromInt(32),
	}
}

// EffectiveUnitPrice retourne le prix remisé s'il est inférieur au prix unitaire
func EffectiveUnitPrice(item models.CartLineItem) decimal.Decimal {
	if HasDiscount(item) {
		return *item.DiscountPrice
	}
	return item.UnitPrice
}

func HasDiscount(item models.CartLineItem) bool {
	return item.DiscountPrice != nil && item.DiscountPrice.LessThan(item.UnitPrice)
}

func LineTotal(item models.CartLineItem) decimal.Decimal {
	return EffectiveUnitPrice(item).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Subtotal utilise les prix remisés
func Subtotal(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// GrossSubtotal ignore les remises (sert au "vous économisez")
func GrossSubtotal(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func TotalDiscount(items []models.CartLineItem) decimal.Decimal {
	return GrossSubtotal(items).Sub(Subtotal(items))
}

// DeliveryCharge vaut 0 dès que le sous-total atteint le seuil
func DeliveryCharge(subtotal, threshold, flatFee decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return flatFee
}

func (c Context) Charge(subtotal decimal.Decimal) decimal.Decimal {
	return DeliveryCharge(subtotal, c.FreeShippingThreshold, c.FlatFee)
}

// PlatformFee = max(nbColis × tarif, minimum)
func PlatformFee(packageCount int, perPackage, minimum decimal.Decimal) decimal.Decimal {
	return decimal.Max(perPackage.Mul(decimal.NewFromInt(int64(packageCount))), minimum)
}

func (r Rates) PlatformFee(packageCount int) decimal.Decimal {
	return PlatformFee(packageCount, r.PlatformFeePerPackage, r.PlatformFeeMinimum)
}

// Format arrondit à deux décimales, pour l'affichage uniquement
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
