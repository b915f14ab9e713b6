package handlers

import (
	"net/http"
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/checkout"
	"cedra_storefront/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GET /api/addresses
func (h *Handler) ListAddresses(c *gin.Context) {
	addresses, err := h.deps.Addresses(viewerOf(c).UserID).List(c.Request.Context())
	if err != nil {
		respondError(c, apperr.Persistence("liste adresses", err))
		return
	}
	if addresses == nil {
		addresses = []models.ShippingAddress{}
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// POST /api/addresses ; une adresse n'est jamais modifiée, on en crée une nouvelle
func (h *Handler) CreateAddress(c *gin.Context) {
	var address models.ShippingAddress
	if err := c.ShouldBindJSON(&address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if err := checkout.ValidateAddress(address); err != nil {
		respondError(c, err)
		return
	}

	userID := viewerOf(c).UserID
	address.ID = uuid.NewString()
	address.UserID = userID
	address.CreatedAt = time.Now().UTC()

	saved, err := h.deps.Addresses(userID).Save(c.Request.Context(), address)
	if err != nil {
		respondError(c, apperr.Persistence("enregistrement adresse", err))
		return
	}
	c.JSON(http.StatusCreated, saved)
}
