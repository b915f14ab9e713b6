package utils

import (
	"encoding/base64"
	"errors"
	"net/url"
	"os"

	"cedra_storefront/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

// UPIPayee est le bénéficiaire des paiements UPI (UPI_PAYEE_VPA, UPI_PAYEE_NAME)
type UPIPayee struct {
	VPA  string
	Name string
}

func LoadUPIPayee() UPIPayee {
	p := UPIPayee{VPA: os.Getenv("UPI_PAYEE_VPA"), Name: os.Getenv("UPI_PAYEE_NAME")}
	if p.VPA == "" {
		p.VPA = "cedra@upi"
	}
	if p.Name == "" {
		p.Name = "Cedra"
	}
	return p
}

// UPIIntent construit l'URI upi://pay pour un montant en INR
func UPIIntent(payee UPIPayee, amount decimal.Decimal, ref string) (string, error) {
	if payee.VPA == "" {
		return "", errors.New("VPA du bénéficiaire manquant")
	}
	if !amount.IsPositive() {
		return "", errors.New("montant invalide")
	}

	q := url.Values{}
	q.Set("pa", payee.VPA)
	q.Set("pn", payee.Name)
	q.Set("am", pricing.Format(amount))
	q.Set("cu", "INR")
	if ref != "" {
		q.Set("tr", ref)
	}
	return "upi://pay?" + q.Encode(), nil
}

// GenerateUPIQR retourne le QR de paiement en data URI PNG
func GenerateUPIQR(payee UPIPayee, amount decimal.Decimal, ref string) (string, error) {
	intent, err := UPIIntent(payee, amount, ref)
	if err != nil {
		return "", err
	}
	png, err := qrcode.Encode(intent, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
