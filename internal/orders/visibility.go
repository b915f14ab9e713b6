package orders

import (
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

// VisibleTo applique la lecture par rôle : l'admin voit tout, le client ses
// commandes, le vendeur uniquement ses lignes et ses colis.
func VisibleTo(viewer models.Viewer, orders []models.Order) []models.Order {
	visible := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if view, ok := ViewFor(viewer, order); ok {
			visible = append(visible, view)
		}
	}
	return visible
}

// ViewFor retourne la vue d'une commande pour viewer ; false si elle ne le concerne pas
func ViewFor(viewer models.Viewer, order models.Order) (models.Order, bool) {
	switch {
	case viewer.IsAdmin():
		return order, true
	case viewer.IsVendor():
		return vendorView(viewer.CompanyID, order)
	default:
		return order, viewer.UserID != "" && order.UserID == viewer.UserID
	}
}

// vendorView recalcule les montants sur les seules lignes du vendeur.
// Les frais de plateforme ne concernent pas le vendeur.
func vendorView(seller string, order models.Order) (models.Order, bool) {
	items := make([]models.OrderLineItem, 0, len(order.Items))
	raw := make([]models.CartLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		if item.Seller == seller {
			items = append(items, item)
			raw = append(raw, item.CartLineItem)
		}
	}
	if len(items) == 0 {
		return models.Order{}, false
	}

	packages := make([]models.DeliveryPackage, 0, 1)
	deliveryTotal := decimal.Zero
	for _, p := range order.Packages {
		if p.Seller == seller {
			packages = append(packages, p)
			deliveryTotal = deliveryTotal.Add(p.DeliveryCharge)
		}
	}

	view := order
	view.Items = items
	view.Packages = packages
	view.Subtotal = pricing.Subtotal(raw)
	view.GrossSubtotal = pricing.GrossSubtotal(raw)
	view.Discount = pricing.TotalDiscount(raw)
	view.DeliveryTotal = deliveryTotal
	view.PlatformFee = decimal.Zero
	view.GrandTotal = view.Subtotal.Add(deliveryTotal)
	return view, true
}
