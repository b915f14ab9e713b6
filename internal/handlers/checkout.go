package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/cache"
	"cedra_storefront/internal/cart"
	"cedra_storefront/internal/checkout"
	"cedra_storefront/internal/delivery"
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/utils"

	"github.com/gin-gonic/gin"
)

type checkoutResponse struct {
	Stage      checkout.Stage           `json:"stage"`
	CanAdvance bool                     `json:"canAdvance"`
	Addresses  []models.ShippingAddress `json:"addresses,omitempty"`
	AddressID  string                   `json:"addressId,omitempty"`
	Draft      *models.ShippingAddress  `json:"draft,omitempty"`
	Payment    models.PaymentMethod     `json:"paymentMethod,omitempty"`
	Quote      delivery.Quote           `json:"quote"`
	Order      *models.Order            `json:"order,omitempty"`
}

// checkoutFlow est la session de checkout de la requête, rechargée depuis Redis
type checkoutFlow struct {
	userID  string
	store   *cart.Store
	session *checkout.Session
}

func (h *Handler) openCheckout(ctx context.Context, userID string) *checkoutFlow {
	store := h.userStore(userID)
	store.Load(ctx)

	session := checkout.NewSession(store, h.deps.Addresses(userID), h.factory, h.deps.Rates)

	var st checkout.State
	found, err := h.deps.Checkout.Load(ctx, userID, &st)
	if err != nil {
		// état illisible : on repart du panier
		log.Printf("⚠️ État checkout illisible pour %s: %v", userID, err)
	}
	if found {
		var order *models.Order
		if st.OrderID != "" {
			if o, err := h.deps.Orders.Get(ctx, st.OrderID); err == nil && o.UserID == userID {
				order = &o
			}
		}
		session.Restore(st, order)
	}
	return &checkoutFlow{userID: userID, store: store, session: session}
}

func (h *Handler) saveCheckout(ctx context.Context, flow *checkoutFlow) {
	if err := h.deps.Checkout.Save(ctx, flow.userID, flow.session.State()); err != nil {
		log.Printf("⚠️ État checkout non sauvegardé pour %s: %v", flow.userID, err)
	}
}

func (h *Handler) respondCheckout(c *gin.Context, flow *checkoutFlow, status int) {
	ctx := c.Request.Context()
	s := flow.session
	st := s.State()

	resp := checkoutResponse{
		Stage:      s.CurrentStage(),
		CanAdvance: s.CanAdvance(ctx),
		AddressID:  st.AddressID,
		Draft:      st.Draft,
		Payment:    st.PaymentMethod,
		Quote:      s.Quote(),
	}
	if order, ok := s.Order(); ok {
		resp.Order = &order
	}
	switch s.CurrentStage() {
	case checkout.StageAddress, checkout.StageAddressConfirm, checkout.StageReview:
		addresses, err := s.Addresses(ctx)
		if err != nil {
			log.Printf("⚠️ Carnet d'adresses indisponible: %v", err)
		}
		resp.Addresses = addresses
	}
	c.JSON(status, resp)
}

// withCheckout recharge la session, applique fn puis sauvegarde l'état,
// même en cas d'erreur : une redirection change l'étape courante.
func (h *Handler) withCheckout(c *gin.Context, fn func(ctx context.Context, s *checkout.Session) error) {
	ctx := requestContext(c)
	userID := viewerOf(c).UserID

	// une seule requête à la fois par tunnel : deux paiements simultanés
	// créeraient deux commandes
	release, err := h.deps.Checkout.Lock(ctx, userID)
	switch {
	case errors.Is(err, cache.ErrCheckoutBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "Une autre opération est en cours, réessayez"})
		return
	case err != nil:
		log.Printf("⚠️ %v, on continue sans verrou", err)
	default:
		defer release()
	}

	flow := h.openCheckout(ctx, userID)
	defer flow.store.Close()

	fnErr := fn(ctx, flow.session)
	h.saveCheckout(ctx, flow)
	if fnErr != nil {
		var precondition *apperr.PreconditionError
		if errors.As(fnErr, &precondition) {
			c.JSON(http.StatusConflict, gin.H{
				"error":      precondition.Reason,
				"redirectTo": precondition.RedirectTo,
				"stage":      flow.session.CurrentStage(),
			})
			return
		}
		respondError(c, fnErr)
		return
	}
	h.respondCheckout(c, flow, http.StatusOK)
}

// GET /api/checkout
func (h *Handler) GetCheckout(c *gin.Context) {
	h.withCheckout(c, func(context.Context, *checkout.Session) error { return nil })
}

// POST /api/checkout/advance
func (h *Handler) AdvanceCheckout(c *gin.Context) {
	h.withCheckout(c, func(ctx context.Context, s *checkout.Session) error {
		_, err := s.Advance(ctx)
		return err
	})
}

// POST /api/checkout/back
func (h *Handler) BackCheckout(c *gin.Context) {
	h.withCheckout(c, func(_ context.Context, s *checkout.Session) error {
		s.Back()
		return nil
	})
}

type goToInput struct {
	Stage checkout.Stage `json:"stage"`
}

// POST /api/checkout/goto
func (h *Handler) GoToStage(c *gin.Context) {
	var input goToInput
	if err := c.ShouldBindJSON(&input); err != nil || !input.Stage.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Étape invalide"})
		return
	}
	h.withCheckout(c, func(ctx context.Context, s *checkout.Session) error {
		_, err := s.GoTo(ctx, input.Stage)
		return err
	})
}

type selectAddressInput struct {
	AddressID string `json:"addressId"`
}

// PUT /api/checkout/address
func (h *Handler) SelectAddress(c *gin.Context) {
	var input selectAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	h.withCheckout(c, func(ctx context.Context, s *checkout.Session) error {
		return s.SelectAddress(ctx, input.AddressID)
	})
}

// POST /api/checkout/address/new : ouvre la confirmation avec le brouillon
func (h *Handler) BeginNewAddress(c *gin.Context) {
	var draft models.ShippingAddress
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	draft.ID = ""
	draft.UserID = viewerOf(c).UserID
	h.withCheckout(c, func(_ context.Context, s *checkout.Session) error {
		return s.BeginNewAddress(draft)
	})
}

// POST /api/checkout/address/confirm
func (h *Handler) ConfirmNewAddress(c *gin.Context) {
	h.withCheckout(c, func(ctx context.Context, s *checkout.Session) error {
		_, err := s.ConfirmNewAddress(ctx)
		return err
	})
}

// DELETE /api/checkout/address/new
func (h *Handler) CancelNewAddress(c *gin.Context) {
	h.withCheckout(c, func(_ context.Context, s *checkout.Session) error {
		s.CancelNewAddress()
		return nil
	})
}

type paymentInput struct {
	Method models.PaymentMethod `json:"method"`
	Fields map[string]string    `json:"fields"`
}

// POST /api/checkout/payment : choix du moyen de paiement puis validation de
// la commande. Les champs du formulaire ne quittent jamais cette requête.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var input paymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	h.withCheckout(c, func(ctx context.Context, s *checkout.Session) error {
		if err := s.SelectPayment(input.Method, input.Fields); err != nil {
			return err
		}
		_, err := s.PlaceOrder(ctx)
		return err
	})
}

// GET /api/checkout/upi-qr : QR de paiement UPI pour le montant du récapitulatif
func (h *Handler) UPIQRCode(c *gin.Context) {
	ctx := c.Request.Context()
	flow := h.openCheckout(ctx, viewerOf(c).UserID)
	defer flow.store.Close()

	quote := flow.session.Quote()
	qr, err := utils.GenerateUPIQR(h.deps.UPI, quote.GrandTotal, "")
	if err != nil {
		respondError(c, apperr.NewPrecondition(err.Error(), string(checkout.StageCart)))
		return
	}
	c.JSON(http.StatusOK, gin.H{"qr": qr, "amount": quote.GrandTotal})
}
