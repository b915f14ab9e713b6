package cart

import (
	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"
)

// ValidateLineItem vérifie une ligne avant l'ajout au panier
func ValidateLineItem(item models.CartLineItem) error {
	if item.ProductID == "" {
		return apperr.NewValidation("productId", "identifiant produit requis")
	}
	if item.Quantity < 1 {
		return apperr.NewValidation("quantity", "la quantité doit être au moins 1")
	}
	if item.UnitPrice.IsNegative() {
		return apperr.NewValidation("unitPrice", "prix négatif")
	}
	if item.DiscountPrice != nil && (item.DiscountPrice.IsNegative() || !item.DiscountPrice.LessThan(item.UnitPrice)) {
		return apperr.NewValidation("discountPrice", "le prix remisé doit être inférieur au prix unitaire")
	}
	return nil
}
