package middleware

import (
	"log"
	"net/http"
	"strings"

	"cedra_storefront/internal/models"
	"cedra_storefront/internal/utils"

	"github.com/gin-gonic/gin"
)

const viewerKey = "viewer"

// AuthRequired refuse la requête sans JWT valide ; le client est renvoyé
// vers la connexion.
func AuthRequired(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, err := authenticate(c, secret)
		if err != nil {
			log.Printf("❌ Authentification refusée: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirectTo": "login"})
			return
		}
		setViewer(c, viewer)
		c.Next()
	}
}

// OptionalAuth renseigne le lecteur si un token valide est présent.
// Un token invalide est ignoré : la requête continue en anonyme.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if viewer, err := authenticate(c, secret); err == nil {
				setViewer(c, viewer)
			} else {
				log.Printf("⚠️ Token ignoré: %v", err)
			}
		}
		c.Next()
	}
}

type authError string

func (e authError) Error() string { return string(e) }

func authenticate(c *gin.Context, secret []byte) (models.Viewer, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return models.Viewer{}, authError("Token manquant")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return models.Viewer{}, authError("Format Authorization invalide")
	}

	viewer, err := utils.ParseJWT(parts[1], secret)
	if err != nil {
		return models.Viewer{}, authError("Token invalide")
	}
	return viewer, nil
}

func setViewer(c *gin.Context, viewer models.Viewer) {
	c.Set(viewerKey, viewer)
	c.Set("user_id", viewer.UserID)
	c.Set("email", viewer.Email)
	c.Set("role", viewer.Role)
	c.Set("company_id", viewer.CompanyID)
}

// CurrentViewer retourne le lecteur authentifié de la requête
func CurrentViewer(c *gin.Context) (models.Viewer, bool) {
	v, ok := c.Get(viewerKey)
	if !ok {
		return models.Viewer{}, false
	}
	viewer, ok := v.(models.Viewer)
	return viewer, ok
}
