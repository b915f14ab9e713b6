package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCartItems_LegacySnakeCase(t *testing.T) {
	data := []byte(`[{"product_id":"p1","name":"Filtre","price":120.5,"quantity":2,"image_url":"x.png","company_id":"S1"}]`)

	items, err := NormalizeCartItems(data)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("120.5")))
	assert.Equal(t, "S1", items[0].Seller)
	assert.Equal(t, "x.png", items[0].ImageURL)
	assert.Nil(t, items[0].DiscountPrice)
}

func TestNormalizeCartItems_WrappedCurrentShape(t *testing.T) {
	data := []byte(`{"items":[{"productId":"p1","unitPrice":"250","discountPrice":"200","quantity":1,"seller":"S2","partNumber":"X"}]}`)

	items, err := NormalizeCartItems(data)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].DiscountPrice)
	assert.True(t, items[0].DiscountPrice.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "X", items[0].PartNumber)
}

func TestNormalizeCartItems_SkipsBrokenEntries(t *testing.T) {
	data := []byte(`[{"productId":"","quantity":1},{"productId":"p2","quantity":0},"oops",{"productId":"p3","quantity":"2"}]`)

	items, err := NormalizeCartItems(data)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestNormalizeCartItems_Empty(t *testing.T) {
	items, err := NormalizeCartItems(nil)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = NormalizeCartItems([]byte(`{broken`))
	assert.Error(t, err)
}

func TestNormalizeOrder_LegacyRow(t *testing.T) {
	data := []byte(`{"order_id":"o1","user_id":"u1","status":"paid","total_price":99.9,
		"items":"[{\"product_id\":\"p1\",\"price\":33.3,\"quantity\":3}]","created_at":"2025-01-02T10:00:00Z"}`)

	order, err := NormalizeOrder(data)
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, StatusConfirmed, order.Status)
	assert.True(t, order.GrandTotal.Equal(decimal.RequireFromString("99.9")))
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].LineTotal.Equal(decimal.RequireFromString("99.9")))
	assert.Equal(t, 2025, order.CreatedAt.Year())
}

func TestNormalizeOrder_CurrentShape(t *testing.T) {
	data := []byte(`{"orderId":"o2","userId":"u2","status":"Packed","grandTotal":"890",
		"packages":[{"packageNumber":1,"seller":"S1","items":[],"packageSubtotal":"600","deliveryCharge":"0"}],
		"address":{"id":"a1","name":"Asha","mobile":"9876543210"},
		"payment":{"method":"cod","name":"Cash on Delivery"}}`)

	order, err := NormalizeOrder(data)
	require.NoError(t, err)
	assert.Equal(t, StatusPacked, order.Status)
	require.Len(t, order.Packages, 1)
	assert.True(t, order.Packages[0].Subtotal.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "Asha", order.Address.Name)
	assert.Equal(t, PaymentCOD, order.Payment.Method)
}

func TestNormalizeOrder_StoredOrderIsUnchanged(t *testing.T) {
	discount := decimal.NewFromInt(200)
	created := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	headphones := CartLineItem{ProductID: "A", Name: "Casque", Brand: "Boat", UnitPrice: decimal.NewFromInt(300), Quantity: 2, Seller: "S1"}
	cable := CartLineItem{ProductID: "B", Name: "Câble", UnitPrice: decimal.NewFromInt(250), DiscountPrice: &discount, Quantity: 1, Seller: "S2", PartNumber: "USB-C"}

	stored := Order{
		ID:            "o1",
		UserID:        "u1",
		CustomerEmail: "asha@example.com",
		CreatedAt:     created,
		UpdatedAt:     created.Add(time.Hour),
		Items: []OrderLineItem{
			{CartLineItem: headphones, LineTotal: decimal.NewFromInt(600)},
			{CartLineItem: cable, LineTotal: decimal.NewFromInt(200)},
		},
		Packages: []DeliveryPackage{
			{PackageNumber: 1, Seller: "S1", Items: []CartLineItem{headphones}, Subtotal: decimal.NewFromInt(600), DeliveryCharge: decimal.Zero},
			{PackageNumber: 2, Seller: "S2", Items: []CartLineItem{cable}, Subtotal: decimal.NewFromInt(200), DeliveryCharge: decimal.NewFromInt(58)},
		},
		Address:       ShippingAddress{ID: "a1", UserID: "u1", Title: "Maison", Name: "Asha", Mobile: "9876543210", Address: "12 MG Road", CityState: "Pune, MH", PostalCode: "411001", CreatedAt: created},
		Payment:       PaymentSummary{Method: PaymentUPI, Name: "UPI", Details: "a***@okaxis"},
		Status:        StatusPacked,
		Subtotal:      decimal.NewFromInt(800),
		GrossSubtotal: decimal.NewFromInt(850),
		Discount:      decimal.NewFromInt(50),
		DeliveryTotal: decimal.NewFromInt(58),
		PlatformFee:   decimal.NewFromInt(32),
		GrandTotal:    decimal.NewFromInt(890),
	}
	payload, err := json.Marshal(stored)
	require.NoError(t, err)

	order, err := NormalizeOrder(payload)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", order.CustomerEmail)

	// relire puis réécrire une commande ne doit rien perdre
	again, err := json.Marshal(order)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(again))
}

func TestParseOrderStatus(t *testing.T) {
	s, ok := ParseOrderStatus("handed to courier")
	assert.True(t, ok)
	assert.Equal(t, StatusHandedCourier, s)

	s, ok = ParseOrderStatus("shipped")
	assert.True(t, ok)
	assert.Equal(t, StatusInTransit, s)

	_, ok = ParseOrderStatus("teleported")
	assert.False(t, ok)
}

func TestRedact(t *testing.T) {
	card := PaymentSelection{Method: PaymentCard, Fields: map[string]string{FieldCardNumber: "4111 1111-1111 1234", FieldCardCVV: "123"}}
	assert.Equal(t, "**** **** **** 1234", card.Redact().Details)

	upi := PaymentSelection{Method: PaymentUPI, Fields: map[string]string{FieldUPIID: "asha@okbank"}}
	assert.Equal(t, "a***@okbank", upi.Redact().Details)

	cod := PaymentSelection{Method: PaymentCOD}
	assert.Equal(t, "Cash on Delivery", cod.Redact().Name)
	assert.Empty(t, cod.Redact().Details)
}
