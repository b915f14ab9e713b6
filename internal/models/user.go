package models

// Rôles lus dans le JWT
const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// Viewer est l'identité de celui qui lit les commandes.
// CompanyID identifie le vendeur : c'est la valeur portée par CartLineItem.Seller.
type Viewer struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
}

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

// IsVendor exige le rôle vendeur : un client rattaché à une société reste un client
func (v Viewer) IsVendor() bool {
	return v.Role == RoleVendor && v.CompanyID != ""
}
