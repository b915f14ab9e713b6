package checkout

import (
	"strings"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"
)

var cardSeparators = strings.NewReplacer(" ", "", "-", "")

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidatePaymentData vérifie uniquement les champs du moyen choisi.
// Paiement à la livraison et redirection passerelle n'ont aucun champ.
func ValidatePaymentData(method models.PaymentMethod, fields map[string]string) error {
	field := func(name string) string { return strings.TrimSpace(fields[name]) }

	switch method {
	case models.PaymentUPI:
		if !strings.Contains(field(models.FieldUPIID), "@") {
			return apperr.NewValidation(models.FieldUPIID, "identifiant UPI invalide (ex: nom@banque)")
		}
	case models.PaymentCard:
		number := cardSeparators.Replace(field(models.FieldCardNumber))
		if !allDigits(number) || len(number) < 16 {
			return apperr.NewValidation(models.FieldCardNumber, "numéro de carte invalide")
		}
		if cvv := field(models.FieldCardCVV); !allDigits(cvv) || len(cvv) < 3 {
			return apperr.NewValidation(models.FieldCardCVV, "CVV invalide")
		}
		if field(models.FieldCardExpiry) == "" {
			return apperr.NewValidation(models.FieldCardExpiry, "date d'expiration requise")
		}
	case models.PaymentNetBanking:
		if field(models.FieldBank) == "" {
			return apperr.NewValidation(models.FieldBank, "sélectionnez une banque")
		}
	case models.PaymentWallet:
		phone := cardSeparators.Replace(field(models.FieldPhone))
		if !allDigits(phone) || len(phone) != 10 {
			return apperr.NewValidation(models.FieldPhone, "numéro à 10 chiffres requis")
		}
	case models.PaymentCOD, models.PaymentGateway:
	default:
		return apperr.NewValidation("method", "moyen de paiement inconnu: "+string(method))
	}
	return nil
}

// ValidateAddress vérifie un brouillon d'adresse avant la confirmation
func ValidateAddress(draft models.ShippingAddress) error {
	switch {
	case strings.TrimSpace(draft.Name) == "":
		return apperr.NewValidation("name", "nom requis")
	case !allDigits(draft.Mobile) || len(draft.Mobile) != 10:
		return apperr.NewValidation("mobile", "numéro de mobile à 10 chiffres requis")
	case strings.TrimSpace(draft.Address) == "":
		return apperr.NewValidation("address", "adresse requise")
	case strings.TrimSpace(draft.CityState) == "":
		return apperr.NewValidation("cityState", "ville et état requis")
	case !allDigits(draft.PostalCode) || len(draft.PostalCode) != 6:
		return apperr.NewValidation("postalCode", "code postal à 6 chiffres requis")
	}
	return nil
}
