package handlers

import (
	"net/http"

	"cedra_storefront/internal/models"
	"cedra_storefront/internal/orders"

	"github.com/gin-gonic/gin"
)

type orderResponse struct {
	models.Order
	Timeline []orders.TimelineStep `json:"timeline"`
}

func withTimeline(order models.Order) orderResponse {
	return orderResponse{Order: order, Timeline: orders.Timeline(order.Status)}
}

// GET /api/orders?status= ; client, vendeur ou admin selon le JWT
func (h *Handler) ListOrders(c *gin.Context) {
	var status models.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := orders.ParseStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		status = parsed
	}

	list, err := h.orders.List(c.Request.Context(), viewerOf(c), status)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

// GET /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Get(c.Request.Context(), viewerOf(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withTimeline(order))
}

type statusInput struct {
	Status string `json:"status"`
}

// PUT /api/orders/:id/status ; admin ou vendeur concerné
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var input statusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), viewerOf(c), c.Param("id"), input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, withTimeline(order))
}
