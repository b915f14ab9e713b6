package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

// Persistence est le service distant du panier, scopé à l'utilisateur connecté.
// Chaque écriture renvoie le panier rafraîchi.
type Persistence interface {
	Get(ctx context.Context) (models.Cart, error)
	AddItem(ctx context.Context, item models.CartLineItem) (models.Cart, error)
	UpdateItem(ctx context.Context, key models.LineKey, quantity int) (models.Cart, error)
	RemoveItem(ctx context.Context, key models.LineKey) (models.Cart, error)
	Clear(ctx context.Context) error
}

// PendingStash garde un seul article en attente pendant la redirection vers la connexion
type PendingStash interface {
	Put(ctx context.Context, item models.CartLineItem) error
	Peek(ctx context.Context) (*models.CartLineItem, error)
	Take(ctx context.Context) (*models.CartLineItem, error)
}

const authReplayTimeout = 10 * time.Second

// Store possède le panier courant. Les mutations sont sérialisées : elles
// sont appliquées dans l'ordre où elles sont émises.
type Store struct {
	mu          sync.Mutex
	persistence Persistence
	auth        AuthContext
	rates       pricing.Rates
	pending     PendingStash
	cart        models.Cart
	unsubscribe func()
}

type Option func(*Store)

func WithPendingStash(stash PendingStash) Option {
	return func(s *Store) { s.pending = stash }
}

func NewStore(persistence Persistence, auth AuthContext, rates pricing.Rates, opts ...Option) *Store {
	s := &Store{
		persistence: persistence,
		auth:        auth,
		rates:       rates,
		pending:     &memoryStash{},
		cart:        models.EmptyCart(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = auth.Subscribe(s.onAuthChange)
	return s
}

// Close détache le Store de l'AuthContext
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Load relit le panier distant. Un échec de lecture donne un panier vide,
// jamais un cache périmé.
func (s *Store) Load(ctx context.Context) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.auth.IsAuthenticated() {
		return s.cart.Clone()
	}

	cart, err := s.persistence.Get(ctx)
	if err != nil {
		log.Printf("⚠️ Lecture panier impossible, panier vide: %v", err)
		cart = models.EmptyCart(s.cart.UserID)
	}
	s.cart = cart
	return cart.Clone()
}

// AddItem ajoute la ligne ou cumule sa quantité. Sans authentification,
// l'article est gardé en attente et ErrAuthRequired est renvoyée.
func (s *Store) AddItem(ctx context.Context, input models.CartLineItem) (models.Cart, error) {
	if err := ValidateLineItem(input); err != nil {
		return s.Cart(), err
	}

	if !s.auth.IsAuthenticated() {
		if err := s.pending.Put(ctx, input); err != nil {
			log.Printf("⚠️ Impossible de garder l'article en attente: %v", err)
		}
		return s.Cart(), apperr.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.persistence.AddItem(ctx, input)
	if err != nil {
		return s.cart.Clone(), apperr.Persistence("ajout au panier", err)
	}
	s.cart = next
	return next.Clone(), nil
}

// UpdateQuantity fixe la quantité ; <= 0 supprime la ligne
func (s *Store) UpdateQuantity(ctx context.Context, productID, partNumber string, quantity int) (models.Cart, error) {
	key := models.LineKey{ProductID: productID, PartNumber: partNumber}
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID, partNumber)
	}
	if !s.auth.IsAuthenticated() {
		return s.Cart(), apperr.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.persistence.UpdateItem(ctx, key, quantity)
	if err != nil {
		return s.cart.Clone(), apperr.Persistence("mise à jour quantité", err)
	}
	s.cart = next
	return next.Clone(), nil
}

// RemoveItem supprime la ligne ; aucune erreur si elle n'existe pas
func (s *Store) RemoveItem(ctx context.Context, productID, partNumber string) (models.Cart, error) {
	if !s.auth.IsAuthenticated() {
		return s.Cart(), apperr.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.persistence.RemoveItem(ctx, models.LineKey{ProductID: productID, PartNumber: partNumber})
	if err != nil {
		return s.cart.Clone(), apperr.Persistence("suppression ligne", err)
	}
	s.cart = next
	return next.Clone(), nil
}

func (s *Store) Clear(ctx context.Context) (models.Cart, error) {
	if !s.auth.IsAuthenticated() {
		return s.Cart(), apperr.ErrAuthRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persistence.Clear(ctx); err != nil {
		return s.cart.Clone(), apperr.Persistence("vidage panier", err)
	}
	s.cart = models.EmptyCart(s.cart.UserID)
	return s.cart.Clone(), nil
}

// ReplayPending rejoue l'article en attente après connexion.
// Le booléen indique qu'un article a été rejoué.
func (s *Store) ReplayPending(ctx context.Context) (models.Cart, bool, error) {
	item, err := s.pending.Take(ctx)
	if err != nil {
		return s.Cart(), false, apperr.Persistence("lecture article en attente", err)
	}
	if item == nil {
		return s.Cart(), false, nil
	}

	cart, err := s.AddItem(ctx, *item)
	if err != nil {
		// l'article reste en attente pour un prochain essai
		if errPut := s.pending.Put(ctx, *item); errPut != nil {
			log.Printf("⚠️ Article en attente perdu: %v", errPut)
		}
		return cart, false, err
	}
	log.Printf("🛒 Article en attente rejoué: %s", item.ProductID)
	return cart, true, nil
}

func (s *Store) onAuthChange(authenticated bool) {
	if !authenticated {
		s.mu.Lock()
		s.cart = models.EmptyCart("")
		s.mu.Unlock()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authReplayTimeout)
	defer cancel()

	s.Load(ctx)
	if _, _, err := s.ReplayPending(ctx); err != nil && !errors.Is(err, apperr.ErrAuthRequired) {
		log.Printf("❌ Rejeu article en attente échoué: %v", err)
	}
}

// Cart retourne une copie du panier courant
func (s *Store) Cart() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) TotalItemCount() int {
	return s.Cart().ItemCount()
}

// TotalPrice est le total au prix catalogue, hors remises
func (s *Store) TotalPrice() decimal.Decimal {
	return pricing.GrossSubtotal(s.Cart().Items)
}

func (s *Store) Subtotal() decimal.Decimal {
	return pricing.Subtotal(s.Cart().Items)
}

func (s *Store) TotalDiscount() decimal.Decimal {
	return pricing.TotalDiscount(s.Cart().Items)
}

func (s *Store) Summary() pricing.CartSummary {
	return pricing.Summarize(s.Cart(), s.rates)
}

// PendingItem retourne l'article en attente sans le consommer
func (s *Store) PendingItem(ctx context.Context) (*models.CartLineItem, error) {
	return s.pending.Peek(ctx)
}

type memoryStash struct {
	mu   sync.Mutex
	item *models.CartLineItem
}

func (m *memoryStash) Put(_ context.Context, item models.CartLineItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.item = &item
	return nil
}

func (m *memoryStash) Peek(context.Context) (*models.CartLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.item == nil {
		return nil, nil
	}
	item := *m.item
	return &item, nil
}

func (m *memoryStash) Take(context.Context) (*models.CartLineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.item
	m.item = nil
	return item, nil
}
