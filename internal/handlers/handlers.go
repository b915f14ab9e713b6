package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/cache"
	"cedra_storefront/internal/checkout"
	"cedra_storefront/internal/metrics"
	"cedra_storefront/internal/middleware"
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/orders"
	"cedra_storefront/internal/pricing"
	"cedra_storefront/internal/utils"

	"github.com/gin-gonic/gin"
)

// AddressBooks ouvre le carnet d'adresses d'un utilisateur
type AddressBooks func(userID string) checkout.AddressBook

type Deps struct {
	Carts        *cache.CartRepository
	Pending      *cache.PendingRepository
	Checkout     *cache.CheckoutStateRepository
	Orders       orders.Persistence
	Addresses    AddressBooks
	Notifier     orders.Notifier
	Metrics      *metrics.Metrics
	Rates        pricing.Rates
	UPI          utils.UPIPayee
	PollInterval time.Duration
}

type Handler struct {
	deps    Deps
	factory *orders.Factory
	orders  *orders.Service

	// flux des tableaux de bord, un par périmètre
	ctx     context.Context
	feedsMu sync.Mutex
	feeds   map[models.OrderFilter]*orders.Feed
}

// New démarre les flux de tableau de bord sous ctx
func New(ctx context.Context, deps Deps) *Handler {
	if deps.Notifier == nil {
		deps.Notifier = utils.NopNotifier{}
	}
	opts := []orders.FactoryOption{orders.WithNotifier(deps.Notifier)}
	var recorder orders.Recorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
		opts = append(opts, orders.WithRecorder(recorder))
	}

	return &Handler{
		deps:    deps,
		factory: orders.NewFactory(deps.Orders, deps.Rates, opts...),
		orders:  orders.NewService(deps.Orders, deps.Notifier, recorder),
		ctx:     ctx,
		feeds:   map[models.OrderFilter]*orders.Feed{},
	}
}

func viewerOf(c *gin.Context) models.Viewer {
	viewer, _ := middleware.CurrentViewer(c)
	return viewer
}

// requestContext porte l'email du client jusqu'à la commande
func requestContext(c *gin.Context) context.Context {
	return orders.WithCustomerEmail(c.Request.Context(), viewerOf(c).Email)
}

// respondError traduit les erreurs métier en statut HTTP
func respondError(c *gin.Context, err error) {
	var validation *apperr.ValidationError
	var precondition *apperr.PreconditionError

	switch {
	case errors.Is(err, apperr.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirectTo": "login"})
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validation.Message, "field": validation.Field})
	case errors.As(err, &precondition):
		c.JSON(http.StatusConflict, gin.H{"error": precondition.Reason, "redirectTo": precondition.RedirectTo})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Introuvable"})
	case errors.Is(err, apperr.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
	case errors.Is(err, apperr.ErrPersistence):
		log.Printf("❌ %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service momentanément indisponible, réessayez"})
	default:
		log.Printf("❌ Erreur inattendue: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
	}
}
