package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "Pending Payment"
	StatusConfirmed      OrderStatus = "Confirmed"
	StatusProcessing     OrderStatus = "Processing Item"
	StatusPacked         OrderStatus = "Packed"
	StatusHandedCourier  OrderStatus = "Handed to Courier"
	StatusInTransit      OrderStatus = "Shipment In Transit"
	StatusDelivered      OrderStatus = "Delivery Completed"
	StatusCancelled      OrderStatus = "Cancelled"
	StatusReturned       OrderStatus = "Returned"
)

// AllStatuses liste les statuts dans l'ordre prévu
var AllStatuses = []OrderStatus{
	StatusPendingPayment,
	StatusConfirmed,
	StatusProcessing,
	StatusPacked,
	StatusHandedCourier,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
	StatusReturned,
}

// anciens statuts des lignes "orders" (paid, shipped...)
var legacyStatuses = map[string]OrderStatus{
	"pending":   StatusPendingPayment,
	"paid":      StatusConfirmed,
	"shipped":   StatusInTransit,
	"delivered": StatusDelivered,
	"cancelled": StatusCancelled,
	"refunded":  StatusReturned,
}

// ParseOrderStatus accepte le libellé exact, sans tenir compte de la casse,
// ou un ancien statut
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.TrimSpace(s)
	for _, status := range AllStatuses {
		if strings.EqualFold(string(status), s) {
			return status, true
		}
	}
	status, ok := legacyStatuses[strings.ToLower(s)]
	return status, ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusReturned
}

// OrderLineItem est une copie figée de la ligne du panier
type OrderLineItem struct {
	CartLineItem
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// DeliveryPackage regroupe les lignes d'un même vendeur
type DeliveryPackage struct {
	PackageNumber  int             `json:"packageNumber"`
	Seller         string          `json:"seller"`
	Items          []CartLineItem  `json:"items"`
	Subtotal       decimal.Decimal `json:"packageSubtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
}

// Order est immuable après création, sauf Status
type Order struct {
	ID            string            `json:"orderId"`
	UserID        string            `json:"userId"`
	CustomerEmail string            `json:"customerEmail,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
	Items         []OrderLineItem   `json:"items"`
	Packages      []DeliveryPackage `json:"packages"`
	Address       ShippingAddress   `json:"address"`
	Payment       PaymentSummary    `json:"payment"`
	Status        OrderStatus       `json:"status"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	GrossSubtotal decimal.Decimal   `json:"grossSubtotal"`
	Discount      decimal.Decimal   `json:"totalDiscount"`
	DeliveryTotal decimal.Decimal   `json:"totalDeliveryCharge"`
	PlatformFee   decimal.Decimal   `json:"platformFee"`
	GrandTotal    decimal.Decimal   `json:"grandTotal"`
}

// OrderFilter restreint la liste des commandes ; vide = toutes
type OrderFilter struct {
	UserID string
	Seller string
	Status OrderStatus
}

func (f OrderFilter) Match(o Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.Seller != "" {
		for _, item := range o.Items {
			if item.Seller == f.Seller {
				return true
			}
		}
		return false
	}
	return true
}
