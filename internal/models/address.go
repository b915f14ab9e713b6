package models

import "time"

// ShippingAddress n'est jamais modifiée : une édition crée une nouvelle adresse
type ShippingAddress struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId,omitempty"`
	Title      string    `json:"title"`
	Name       string    `json:"name"`
	Mobile     string    `json:"mobile"`
	Address    string    `json:"address"`
	CityState  string    `json:"cityState"`
	PostalCode string    `json:"postalCode"`
	CreatedAt  time.Time `json:"createdAt"`
}
