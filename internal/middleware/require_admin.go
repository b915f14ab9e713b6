package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	viewer, ok := CurrentViewer(c)
	if !ok || !viewer.IsAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		return
	}
	c.Next()
}

// VendorRequired vérifie que le token est rattaché à un vendeur
func VendorRequired(c *gin.Context) {
	viewer, ok := CurrentViewer(c)
	if !ok || !viewer.IsVendor() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux vendeurs"})
		return
	}
	c.Next()
}
