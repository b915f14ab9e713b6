package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Les réponses amont n'ont pas toutes la même forme (anciennes entrées Redis
// en snake_case, lignes Scylla avec items sérialisés en texte, total_price...).
// Ces fonctions sont appliquées une seule fois, à la frontière.

// NormalizeCartItems accepte une liste d'items ou un objet {"items": [...]}
func NormalizeCartItems(data []byte) ([]CartLineItem, error) {
	raw, err := decodeAny(data)
	if err != nil {
		return nil, fmt.Errorf("panier illisible: %w", err)
	}

	var list []any
	switch v := raw.(type) {
	case nil:
		return []CartLineItem{}, nil
	case []any:
		list = v
	case map[string]any:
		list = asList(v["items"])
	default:
		return nil, fmt.Errorf("panier illisible: type %T inattendu", raw)
	}

	items := make([]CartLineItem, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := cartItemFromMap(m)
		if item.ProductID == "" || item.Quantity <= 0 {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// NormalizeOrder convertit un enregistrement de commande en Order
func NormalizeOrder(data []byte) (Order, error) {
	raw, err := decodeAny(data)
	if err != nil {
		return Order{}, fmt.Errorf("commande illisible: %w", err)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return Order{}, fmt.Errorf("commande illisible: type %T inattendu", raw)
	}

	order := Order{
		ID:            pickString(m, "orderId", "order_id", "id"),
		UserID:        pickString(m, "userId", "user_id"),
		CustomerEmail: pickString(m, "customerEmail", "customer_email", "email"),
		CreatedAt:     pickTime(m, "createdAt", "created_at"),
		UpdatedAt:     pickTime(m, "updatedAt", "updated_at"),
		Items:         []OrderLineItem{},
		Packages:      []DeliveryPackage{},
	}

	rawStatus := pickString(m, "status")
	if status, ok := ParseOrderStatus(rawStatus); ok {
		order.Status = status
	} else {
		order.Status = OrderStatus(rawStatus)
	}

	for _, entry := range asList(m["items"]) {
		em, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		item := OrderLineItem{CartLineItem: cartItemFromMap(em)}
		if total, ok := pickDecimal(em, "lineTotal", "line_total"); ok {
			item.LineTotal = total
		} else {
			price := item.UnitPrice
			if item.DiscountPrice != nil && item.DiscountPrice.LessThan(price) {
				price = *item.DiscountPrice
			}
			item.LineTotal = price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		order.Items = append(order.Items, item)
	}

	if packages := asList(m["packages"]); len(packages) > 0 {
		if err := remarshal(packages, &order.Packages); err != nil {
			return Order{}, fmt.Errorf("colis illisibles: %w", err)
		}
	}
	if address, ok := m["address"].(map[string]any); ok {
		if err := remarshal(address, &order.Address); err != nil {
			return Order{}, fmt.Errorf("adresse illisible: %w", err)
		}
	}
	if payment, ok := m["payment"].(map[string]any); ok {
		if err := remarshal(payment, &order.Payment); err != nil {
			return Order{}, fmt.Errorf("paiement illisible: %w", err)
		}
	} else if method := pickString(m, "paymentMethod", "payment_method"); method != "" {
		pm := PaymentMethod(strings.ToLower(method))
		order.Payment = PaymentSummary{Method: pm, Name: pm.Label()}
	}

	order.Subtotal, _ = pickDecimal(m, "subtotal")
	order.GrossSubtotal, _ = pickDecimal(m, "grossSubtotal", "gross_subtotal")
	order.Discount, _ = pickDecimal(m, "totalDiscount", "discount")
	order.DeliveryTotal, _ = pickDecimal(m, "totalDeliveryCharge", "delivery_charge")
	order.PlatformFee, _ = pickDecimal(m, "platformFee", "platform_fee")
	order.GrandTotal, _ = pickDecimal(m, "grandTotal", "total_price", "totalPrice", "amount_total")

	return order, nil
}

func decodeAny(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// asList accepte une liste ou une liste sérialisée dans une chaîne
func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case string:
		raw, err := decodeAny([]byte(t))
		if err != nil {
			return nil
		}
		list, _ := raw.([]any)
		return list
	}
	return nil
}

func cartItemFromMap(m map[string]any) CartLineItem {
	item := CartLineItem{
		ProductID:  pickString(m, "productId", "product_id", "id"),
		Name:       pickString(m, "name", "productName", "product_name"),
		Brand:      pickString(m, "brand"),
		ImageURL:   pickString(m, "imageUrl", "image_url", "image"),
		Seller:     pickString(m, "seller", "vendor", "companyId", "company_id"),
		PartNumber: pickString(m, "partNumber", "part_number"),
		Quantity:   pickInt(m, "quantity", "qty"),
	}
	if price, ok := pickDecimal(m, "unitPrice", "unit_price", "price"); ok {
		item.UnitPrice = price
	}
	if discount, ok := pickDecimal(m, "discountPrice", "discount_price"); ok {
		item.DiscountPrice = &discount
	}
	return item
}

func pickString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func pickInt(m map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := m[key].(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n)
			}
			if f, err := v.Float64(); err == nil {
				return int(f)
			}
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

func pickDecimal(m map[string]any, keys ...string) (decimal.Decimal, bool) {
	for _, key := range keys {
		var s string
		switch v := m[key].(type) {
		case json.Number:
			s = v.String()
		case string:
			s = v
		default:
			continue
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func pickTime(m map[string]any, keys ...string) time.Time {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
				return t
			}
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return time.Unix(n, 0).UTC()
			}
		}
	}
	return time.Time{}
}

func remarshal(src any, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
