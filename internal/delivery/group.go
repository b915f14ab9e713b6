package delivery

import (
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

const DefaultSeller = "Default Seller"

// Group répartit les lignes en colis par vendeur, dans l'ordre de première
// apparition. Chaque colis est évalué contre la règle de livraison par colis.
func Group(items []models.CartLineItem, rule pricing.Context) []models.DeliveryPackage {
	packages := []models.DeliveryPackage{}
	index := map[string]int{}

	for _, item := range items {
		seller := item.Seller
		if seller == "" {
			seller = DefaultSeller
		}
		i, ok := index[seller]
		if !ok {
			i = len(packages)
			index[seller] = i
			packages = append(packages, models.DeliveryPackage{
				PackageNumber: i + 1,
				Seller:        seller,
				Items:         []models.CartLineItem{},
			})
		}
		packages[i].Items = append(packages[i].Items, item)
	}

	for i := range packages {
		packages[i].Subtotal = pricing.Subtotal(packages[i].Items)
		packages[i].DeliveryCharge = rule.Charge(packages[i].Subtotal)
	}
	return packages
}

// Quote est le récapitulatif des étapes revue et paiement
type Quote struct {
	Packages      []models.DeliveryPackage `json:"packages"`
	GrossSubtotal decimal.Decimal          `json:"grossSubtotal"`
	Subtotal      decimal.Decimal          `json:"subtotal"`
	Discount      decimal.Decimal          `json:"totalDiscount"`
	DeliveryTotal decimal.Decimal          `json:"totalDeliveryCharge"`
	PlatformFee   decimal.Decimal          `json:"platformFee"`
	GrandTotal    decimal.Decimal          `json:"grandTotal"`
}

func NewQuote(items []models.CartLineItem, rates pricing.Rates) Quote {
	q := Quote{
		Packages:      Group(items, rates.Package),
		GrossSubtotal: pricing.GrossSubtotal(items),
		Subtotal:      pricing.Subtotal(items),
		Discount:      pricing.TotalDiscount(items),
		DeliveryTotal: decimal.Zero,
		PlatformFee:   decimal.Zero,
	}
	for _, p := range q.Packages {
		q.DeliveryTotal = q.DeliveryTotal.Add(p.DeliveryCharge)
	}
	if len(q.Packages) > 0 {
		q.PlatformFee = rates.PlatformFee(len(q.Packages))
	}
	q.GrandTotal = q.Subtotal.Add(q.DeliveryTotal).Add(q.PlatformFee)
	return q
}
