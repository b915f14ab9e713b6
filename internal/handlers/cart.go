package handlers

import (
	"net/http"

	"cedra_storefront/internal/cart"
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/pricing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionHeader identifie le visiteur anonyme (article en attente)
const SessionHeader = "X-Session-ID"

type cartResponse struct {
	Items   []models.CartLineItem `json:"items"`
	Summary pricing.CartSummary   `json:"summary"`
}

type replayResponse struct {
	Replayed bool `json:"replayed"`
	cartResponse
}

// sessionID lit l'identifiant anonyme ou en crée un, renvoyé dans la réponse
func sessionID(c *gin.Context) string {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(SessionHeader, id)
	return id
}

// cartStore construit le Store de la requête. Connecté ou non selon le JWT.
func (h *Handler) cartStore(c *gin.Context) *cart.Store {
	viewer := viewerOf(c)
	return cart.NewStore(
		h.deps.Carts.ForUser(viewer.UserID),
		cart.NewSessionAuth(viewer.UserID != ""),
		h.deps.Rates,
		cart.WithPendingStash(h.deps.Pending.ForSession(sessionID(c))),
	)
}

// userStore sert le websocket et le checkout : utilisateur connecté, pas d'article en attente
func (h *Handler) userStore(userID string) *cart.Store {
	return cart.NewStore(h.deps.Carts.ForUser(userID), cart.NewSessionAuth(true), h.deps.Rates)
}

func (h *Handler) respondCart(c *gin.Context, store *cart.Store) {
	current := store.Cart()
	c.JSON(http.StatusOK, cartResponse{Items: current.Items, Summary: store.Summary()})
}

func (h *Handler) record(operation string, err error) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.CartMutation(operation, err)
	}
}

// GET /api/cart
func (h *Handler) GetCart(c *gin.Context) {
	store := h.cartStore(c)
	defer store.Close()

	store.Load(c.Request.Context())
	h.respondCart(c, store)
}

type addItemInput struct {
	ProductID     string           `json:"productId"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	ImageURL      string           `json:"imageUrl"`
	UnitPrice     decimal.Decimal  `json:"unitPrice"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	Quantity      int              `json:"quantity"`
	Seller        string           `json:"seller"`
	PartNumber    string           `json:"partNumber"`
}

// POST /api/cart/items
// Sans connexion : l'article est gardé en attente et la réponse renvoie vers le login.
func (h *Handler) AddToCart(c *gin.Context) {
	var input addItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	store := h.cartStore(c)
	defer store.Close()

	_, err := store.AddItem(c.Request.Context(), models.CartLineItem{
		ProductID:     input.ProductID,
		Name:          input.Name,
		Brand:         input.Brand,
		ImageURL:      input.ImageURL,
		UnitPrice:     input.UnitPrice,
		DiscountPrice: input.DiscountPrice,
		Quantity:      input.Quantity,
		Seller:        input.Seller,
		PartNumber:    input.PartNumber,
	})
	h.record("add", err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, store)
}

type updateItemInput struct {
	PartNumber string `json:"partNumber"`
	Quantity   int    `json:"quantity"`
}

// PATCH /api/cart/items/:productId ; quantité <= 0 supprime la ligne
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var input updateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	store := h.cartStore(c)
	defer store.Close()

	_, err := store.UpdateQuantity(c.Request.Context(), c.Param("productId"), input.PartNumber, input.Quantity)
	h.record("update", err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, store)
}

// DELETE /api/cart/items/:productId?partNumber=
func (h *Handler) RemoveCartItem(c *gin.Context) {
	store := h.cartStore(c)
	defer store.Close()

	_, err := store.RemoveItem(c.Request.Context(), c.Param("productId"), c.Query("partNumber"))
	h.record("remove", err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, store)
}

// DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	store := h.cartStore(c)
	defer store.Close()

	_, err := store.Clear(c.Request.Context())
	h.record("clear", err)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondCart(c, store)
}

// GET /api/cart/pending
func (h *Handler) GetPending(c *gin.Context) {
	store := h.cartStore(c)
	defer store.Close()

	item, err := store.PendingItem(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": item})
}

// POST /api/cart/pending/replay, appelé juste après la connexion
func (h *Handler) ReplayPending(c *gin.Context) {
	store := h.cartStore(c)
	defer store.Close()

	ctx := c.Request.Context()
	store.Load(ctx)
	_, replayed, err := store.ReplayPending(ctx)
	h.record("replay", err)
	if err != nil {
		respondError(c, err)
		return
	}

	current := store.Cart()
	c.JSON(http.StatusOK, replayResponse{
		Replayed:     replayed,
		cartResponse: cartResponse{Items: current.Items, Summary: store.Summary()},
	})
}
