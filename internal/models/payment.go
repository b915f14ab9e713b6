package models

import "strings"

type PaymentMethod string

const (
	PaymentUPI        PaymentMethod = "upi"
	PaymentCard       PaymentMethod = "card"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentWallet     PaymentMethod = "wallet"
	PaymentCOD        PaymentMethod = "cod"
	PaymentGateway    PaymentMethod = "gateway"
)

var paymentLabels = map[PaymentMethod]string{
	PaymentUPI:        "UPI",
	PaymentCard:       "Credit / Debit Card",
	PaymentNetBanking: "Net Banking",
	PaymentWallet:     "Wallet",
	PaymentCOD:        "Cash on Delivery",
	PaymentGateway:    "Online Payment",
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentLabels[m]
	return ok
}

func (m PaymentMethod) Label() string {
	if label, ok := paymentLabels[m]; ok {
		return label
	}
	return string(m)
}

// Noms des champs des formulaires de paiement
const (
	FieldUPIID      = "upiId"
	FieldCardNumber = "cardNumber"
	FieldCardCVV    = "cvv"
	FieldCardExpiry = "expiry"
	FieldCardName   = "cardName"
	FieldBank       = "bank"
	FieldPhone      = "phone"
)

// PaymentSelection n'existe que pendant la session de checkout
type PaymentSelection struct {
	Method PaymentMethod     `json:"method"`
	Fields map[string]string `json:"fields,omitempty"`
}

// PaymentSummary est la version expurgée conservée sur la commande
type PaymentSummary struct {
	Method  PaymentMethod `json:"method"`
	Name    string        `json:"name"`
	Details string        `json:"details,omitempty"`
}

// Redact ne garde que ce qui peut être affiché sur une commande
func (p PaymentSelection) Redact() PaymentSummary {
	summary := PaymentSummary{Method: p.Method, Name: p.Method.Label()}

	switch p.Method {
	case PaymentCard:
		digits := DigitsOnly(p.Fields[FieldCardNumber])
		if len(digits) >= 4 {
			summary.Details = "**** **** **** " + digits[len(digits)-4:]
		}
	case PaymentUPI:
		id := p.Fields[FieldUPIID]
		if at := strings.Index(id, "@"); at > 0 {
			summary.Details = id[:1] + "***" + id[at:]
		}
	case PaymentWallet:
		phone := DigitsOnly(p.Fields[FieldPhone])
		if len(phone) >= 4 {
			summary.Details = "******" + phone[len(phone)-4:]
		}
	case PaymentNetBanking:
		summary.Details = p.Fields[FieldBank]
	}

	return summary
}

// DigitsOnly supprime espaces, tirets et tout caractère non numérique
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
