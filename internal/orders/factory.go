package orders

import (
	"context"
	"log"
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/delivery"
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/pricing"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
)

// Persistence est l'historique des commandes (ajout seulement)
type Persistence interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
	Get(ctx context.Context, orderID string) (models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error)
}

// CartSource est le panier figé par la commande puis vidé
type CartSource interface {
	Cart() models.Cart
	Clear(ctx context.Context) (models.Cart, error)
}

// Notifier prévient le client ; les implémentations n'échouent jamais la commande
type Notifier interface {
	OrderCreated(ctx context.Context, order models.Order)
	StatusChanged(ctx context.Context, order models.Order, previous models.OrderStatus)
}

// Recorder reçoit les compteurs métier
type Recorder interface {
	OrderCreated(method models.PaymentMethod)
	StatusChanged(status models.OrderStatus)
}

type emailKey struct{}

// WithCustomerEmail attache l'email du client à la requête ; il est recopié
// sur la commande pour les notifications de statut.
func WithCustomerEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey{}, email)
}

func CustomerEmail(ctx context.Context) string {
	email, _ := ctx.Value(emailKey{}).(string)
	return email
}

// Étapes du tunnel vers lesquelles rediriger
const (
	redirectCart    = "cart"
	redirectAddress = "address"
)

type Factory struct {
	persistence Persistence
	rates       pricing.Rates
	notifier    Notifier
	recorder    Recorder
	now         func() time.Time
	newID       func() string
}

type FactoryOption func(*Factory)

func WithNotifier(n Notifier) FactoryOption {
	return func(f *Factory) { f.notifier = n }
}

func WithRecorder(r Recorder) FactoryOption {
	return func(f *Factory) { f.recorder = r }
}

func WithClock(now func() time.Time) FactoryOption {
	return func(f *Factory) { f.now = now }
}

func NewFactory(persistence Persistence, rates pricing.Rates, opts ...FactoryOption) *Factory {
	f := &Factory{
		persistence: persistence,
		rates:       rates,
		now:         time.Now,
		newID:       func() string { return gocql.TimeUUID().String() },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateOrder fige le panier en commande. Le panier n'est vidé qu'une fois
// la commande enregistrée.
func (f *Factory) CreateOrder(ctx context.Context, cart CartSource, address models.ShippingAddress, payment models.PaymentSelection) (models.Order, error) {
	snapshot := cart.Cart()
	if snapshot.IsEmpty() {
		return models.Order{}, apperr.NewPrecondition("panier vide", redirectCart)
	}
	if address.ID == "" {
		return models.Order{}, apperr.NewPrecondition("aucune adresse sélectionnée", redirectAddress)
	}

	items := make([]models.CartLineItem, len(snapshot.Items))
	copy(items, snapshot.Items)

	order := f.build(snapshot.UserID, items, address, payment)
	order.CustomerEmail = CustomerEmail(ctx)

	created, err := f.persistence.Create(ctx, order)
	if err != nil {
		return models.Order{}, apperr.Persistence("création commande", err)
	}

	if _, err := cart.Clear(ctx); err != nil {
		log.Printf("⚠️ Commande %s créée mais panier non vidé: %v", created.ID, err)
	}

	log.Printf("📦 Commande %s créée (%d colis, %s)", created.ID, len(created.Packages), pricing.Format(created.GrandTotal))

	if f.recorder != nil {
		f.recorder.OrderCreated(payment.Method)
	}
	if f.notifier != nil {
		f.notifier.OrderCreated(ctx, created)
	}
	return created, nil
}

func (f *Factory) build(userID string, items []models.CartLineItem, address models.ShippingAddress, payment models.PaymentSelection) models.Order {
	quote := delivery.NewQuote(items, f.rates)

	lines := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderLineItem{CartLineItem: item, LineTotal: round(pricing.LineTotal(item))})
	}

	packages := make([]models.DeliveryPackage, 0, len(quote.Packages))
	for _, p := range quote.Packages {
		p.Subtotal = round(p.Subtotal)
		p.DeliveryCharge = round(p.DeliveryCharge)
		packages = append(packages, p)
	}

	status := models.StatusConfirmed
	if payment.Method == models.PaymentCOD {
		status = models.StatusPendingPayment
	}

	if userID == "" {
		userID = address.UserID
	}

	now := f.now().UTC()
	return models.Order{
		ID:            f.newID(),
		UserID:        userID,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         lines,
		Packages:      packages,
		Address:       address,
		Payment:       payment.Redact(),
		Status:        status,
		Subtotal:      round(quote.Subtotal),
		GrossSubtotal: round(quote.GrossSubtotal),
		Discount:      round(quote.Discount),
		DeliveryTotal: round(quote.DeliveryTotal),
		PlatformFee:   round(quote.PlatformFee),
		GrandTotal:    round(quote.GrandTotal),
	}
}

// les montants ne sont arrondis qu'au moment de figer la commande
func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
