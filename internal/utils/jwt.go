package utils

import (
	"errors"
	"fmt"
	"time"

	"cedra_storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Claims porte l'identité du lecteur ; "companyId" identifie le vendeur
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
	jwt.RegisteredClaims
}

func GenerateJWT(viewer models.Viewer, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    viewer.UserID,
		Email:     viewer.Email,
		Role:      viewer.Role,
		CompanyID: viewer.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseJWT vérifie la signature HMAC et l'expiration
func ParseJWT(tokenString string, secret []byte) (models.Viewer, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return models.Viewer{}, err
	}
	if !token.Valid {
		return models.Viewer{}, errors.New("token invalide")
	}
	if claims.UserID == "" {
		return models.Viewer{}, errors.New("user_id manquant")
	}

	return models.Viewer{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
	}, nil
}
