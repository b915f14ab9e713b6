package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineItem est une ligne du panier. L'identité d'une ligne est le couple
// (ProductID, PartNumber) : deux variantes d'un même produit sont deux lignes.
type CartLineItem struct {
	ProductID     string           `json:"productId"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand,omitempty"`
	ImageURL      string           `json:"imageUrl,omitempty"`
	UnitPrice     decimal.Decimal  `json:"unitPrice"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Quantity      int              `json:"quantity"`
	Seller        string           `json:"seller,omitempty"`
	PartNumber    string           `json:"partNumber,omitempty"`
}

type LineKey struct {
	ProductID  string
	PartNumber string
}

func (i CartLineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, PartNumber: i.PartNumber}
}

// Cart est une valeur : les helpers renvoient toujours une copie
type Cart struct {
	UserID    string         `json:"userId,omitempty"`
	Items     []CartLineItem `json:"items"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func EmptyCart(userID string) Cart {
	return Cart{UserID: userID, Items: []CartLineItem{}}
}

func (c Cart) Clone() Cart {
	items := make([]CartLineItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount retourne la somme des quantités
func (c Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c Cart) Find(key LineKey) (CartLineItem, bool) {
	for _, item := range c.Items {
		if item.Key() == key {
			return item, true
		}
	}
	return CartLineItem{}, false
}

// WithItem ajoute une ligne ou cumule la quantité si la clé existe déjà
func (c Cart) WithItem(item CartLineItem) Cart {
	next := c.Clone()
	for i := range next.Items {
		if next.Items[i].Key() == item.Key() {
			next.Items[i].Quantity += item.Quantity
			return next
		}
	}
	next.Items = append(next.Items, item)
	return next
}

// WithQuantity fixe la quantité d'une ligne ; une quantité <= 0 supprime la ligne
func (c Cart) WithQuantity(key LineKey, quantity int) Cart {
	if quantity <= 0 {
		return c.Without(key)
	}
	next := c.Clone()
	for i := range next.Items {
		if next.Items[i].Key() == key {
			next.Items[i].Quantity = quantity
			break
		}
	}
	return next
}

// Without supprime la ligne correspondante (aucun effet si absente)
func (c Cart) Without(key LineKey) Cart {
	next := Cart{UserID: c.UserID, UpdatedAt: c.UpdatedAt, Items: make([]CartLineItem, 0, len(c.Items))}
	for _, item := range c.Items {
		if item.Key() != key {
			next.Items = append(next.Items, item)
		}
	}
	return next
}
