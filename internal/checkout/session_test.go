package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/orders"
	"cedra_storefront/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBook struct {
	mu        sync.RWMutex
	addresses []models.ShippingAddress
	failSave  bool
}

func (b *memoryBook) List(context.Context) ([]models.ShippingAddress, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.ShippingAddress{}, b.addresses...), nil
}

func (b *memoryBook) Save(_ context.Context, a models.ShippingAddress) (models.ShippingAddress, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSave {
		return models.ShippingAddress{}, errors.New("scylla indisponible")
	}
	b.addresses = append(b.addresses, a)
	return a, nil
}

type memoryCart struct {
	mu   sync.Mutex
	cart models.Cart
}

func (m *memoryCart) Cart() models.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone()
}

func (m *memoryCart) Clear(context.Context) (models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = models.EmptyCart(m.cart.UserID)
	return m.cart.Clone(), nil
}

var savedAddress = models.ShippingAddress{
	ID: "addr-1", UserID: "u1", Title: "Maison", Name: "Asha", Mobile: "9876543210",
	Address: "12 MG Road", CityState: "Pune, MH", PostalCode: "411001",
}

func filledCart() *memoryCart {
	return &memoryCart{cart: models.Cart{UserID: "u1", Items: []models.CartLineItem{
		{ProductID: "A", UnitPrice: decimal.NewFromInt(300), Quantity: 2, Seller: "S1"},
		{ProductID: "B", UnitPrice: decimal.NewFromInt(250), Quantity: 1, Seller: "S2"},
	}}}
}

func newTestSession(cart *memoryCart, book *memoryBook) (*Session, *orders.MemoryPersistence) {
	store := orders.NewMemoryPersistence()
	factory := orders.NewFactory(store, pricing.DefaultRates())
	return NewSession(cart, book, factory, pricing.DefaultRates()), store
}

func redirectOf(t *testing.T, err error) Stage {
	t.Helper()
	var pre *apperr.PreconditionError
	require.ErrorAs(t, err, &pre)
	return Stage(pre.RedirectTo)
}

func TestSession_EmptyCartCannotReachAddress(t *testing.T) {
	s, _ := newTestSession(&memoryCart{cart: models.EmptyCart("u1")}, &memoryBook{})
	ctx := context.Background()

	assert.False(t, s.CanAdvance(ctx))
	stage, err := s.Advance(ctx)
	assert.Equal(t, StageCart, redirectOf(t, err))
	assert.Equal(t, StageCart, stage)
}

func TestSession_ReviewNeedsPersistedAddress(t *testing.T) {
	s, _ := newTestSession(filledCart(), &memoryBook{})
	ctx := context.Background()

	_, err := s.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, StageAddress, s.CurrentStage())

	_, err = s.GoTo(ctx, StagePayment)
	assert.Equal(t, StageAddress, redirectOf(t, err))
	assert.Equal(t, StageAddress, s.CurrentStage())

	assert.True(t, apperr.IsValidation(s.SelectAddress(ctx, "inconnue")))
}

func TestSession_FullFlow(t *testing.T) {
	book := &memoryBook{addresses: []models.ShippingAddress{savedAddress}}
	cart := filledCart()
	s, store := newTestSession(cart, book)
	ctx := context.Background()

	_, err := s.Advance(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SelectAddress(ctx, "addr-1"))
	_, err = s.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, StageReview, s.CurrentStage())

	quote := s.Quote()
	assert.Len(t, quote.Packages, 2)

	_, err = s.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, StagePayment, s.CurrentStage())
	assert.False(t, s.CanAdvance(ctx))

	err = s.SelectPayment(models.PaymentUPI, map[string]string{models.FieldUPIID: "asha.okbank"})
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, s.SelectPayment(models.PaymentUPI, map[string]string{models.FieldUPIID: "asha@okbank"}))
	assert.True(t, s.CanAdvance(ctx))

	stage, err := s.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, StageConfirmation, stage)

	order, ok := s.Order()
	require.True(t, ok)
	assert.Equal(t, models.StatusConfirmed, order.Status)
	assert.Equal(t, "a***@okbank", order.Payment.Details)
	assert.Equal(t, 1, store.Len())
	assert.True(t, cart.Cart().IsEmpty())
}

func TestSession_BackKeepsSelections(t *testing.T) {
	book := &memoryBook{addresses: []models.ShippingAddress{savedAddress}}
	s, _ := newTestSession(filledCart(), book)
	ctx := context.Background()

	_, _ = s.GoTo(ctx, StageAddress)
	require.NoError(t, s.SelectAddress(ctx, "addr-1"))
	_, err := s.GoTo(ctx, StagePayment)
	require.NoError(t, err)
	require.NoError(t, s.SelectPayment(models.PaymentCOD, nil))

	assert.Equal(t, StageReview, s.Back())
	assert.Equal(t, StageAddress, s.Back())

	_, err = s.GoTo(ctx, StagePayment)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCOD, s.PaymentMethod())
	assert.True(t, s.CanAdvance(ctx))
}

func TestSession_NewAddressSubFlow(t *testing.T) {
	book := &memoryBook{}
	s, _ := newTestSession(filledCart(), book)
	ctx := context.Background()

	draft := savedAddress
	draft.ID = ""

	assert.True(t, apperr.IsPrecondition(s.BeginNewAddress(draft)))

	_, err := s.GoTo(ctx, StageAddress)
	require.NoError(t, err)

	bad := draft
	bad.PostalCode = "4110"
	err = s.BeginNewAddress(bad)
	var v *apperr.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "postalCode", v.Field)

	require.NoError(t, s.BeginNewAddress(draft))
	assert.Equal(t, StageAddressConfirm, s.CurrentStage())

	// le sous-état doit être terminé avant de continuer
	_, err = s.Advance(ctx)
	assert.Equal(t, StageAddressConfirm, redirectOf(t, err))
	_, err = s.GoTo(ctx, StageReview)
	assert.True(t, apperr.IsPrecondition(err))

	saved, err := s.ConfirmNewAddress(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, StageAddress, s.CurrentStage())
	assert.Len(t, book.addresses, 1)

	_, err = s.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, StageReview, s.CurrentStage())
}

func TestSession_CancelNewAddress(t *testing.T) {
	book := &memoryBook{}
	s, _ := newTestSession(filledCart(), book)
	ctx := context.Background()
	_, _ = s.GoTo(ctx, StageAddress)

	draft := savedAddress
	draft.ID = ""
	require.NoError(t, s.BeginNewAddress(draft))

	assert.Equal(t, StageAddress, s.Back())
	_, ok := s.Draft()
	assert.False(t, ok)
	assert.Empty(t, book.addresses)
}

func TestSession_ConfirmFailureStaysInSubFlow(t *testing.T) {
	book := &memoryBook{failSave: true}
	s, _ := newTestSession(filledCart(), book)
	ctx := context.Background()
	_, _ = s.GoTo(ctx, StageAddress)

	draft := savedAddress
	draft.ID = ""
	require.NoError(t, s.BeginNewAddress(draft))

	_, err := s.ConfirmNewAddress(ctx)
	assert.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Equal(t, StageAddressConfirm, s.CurrentStage())
}

func TestSession_ConfirmationOnlyThroughOrder(t *testing.T) {
	book := &memoryBook{addresses: []models.ShippingAddress{savedAddress}}
	s, _ := newTestSession(filledCart(), book)
	ctx := context.Background()

	_, err := s.GoTo(ctx, StageConfirmation)
	assert.Equal(t, StagePayment, redirectOf(t, err))
	assert.Equal(t, StageCart, s.CurrentStage())
}

func TestSession_CartEmptiedDuringPayment(t *testing.T) {
	book := &memoryBook{addresses: []models.ShippingAddress{savedAddress}}
	cart := filledCart()
	s, store := newTestSession(cart, book)
	ctx := context.Background()

	_, _ = s.GoTo(ctx, StageAddress)
	require.NoError(t, s.SelectAddress(ctx, "addr-1"))
	_, err := s.GoTo(ctx, StagePayment)
	require.NoError(t, err)
	require.NoError(t, s.SelectPayment(models.PaymentCOD, nil))

	_, _ = cart.Clear(ctx)

	_, err = s.PlaceOrder(ctx)
	assert.Equal(t, StageCart, redirectOf(t, err))
	assert.Equal(t, StageCart, s.CurrentStage())
	assert.Equal(t, 0, store.Len())
}

func TestSession_StateRoundTripDropsPaymentFields(t *testing.T) {
	book := &memoryBook{addresses: []models.ShippingAddress{savedAddress}}
	s, _ := newTestSession(filledCart(), book)
	ctx := context.Background()

	_, _ = s.GoTo(ctx, StageAddress)
	require.NoError(t, s.SelectAddress(ctx, "addr-1"))
	_, err := s.GoTo(ctx, StagePayment)
	require.NoError(t, err)
	require.NoError(t, s.SelectPayment(models.PaymentCard, map[string]string{
		models.FieldCardNumber: "4111-1111-1111-1111",
		models.FieldCardCVV:    "123",
		models.FieldCardExpiry: "12/29",
	}))

	st := s.State()
	assert.Equal(t, StagePayment, st.Stage)
	assert.Equal(t, models.PaymentCard, st.PaymentMethod)

	restored, _ := newTestSession(filledCart(), book)
	restored.Restore(st, nil)
	assert.Equal(t, StagePayment, restored.CurrentStage())

	// les champs de carte ne sont pas conservés : il faut les ressaisir
	_, err = restored.PlaceOrder(ctx)
	assert.True(t, apperr.IsValidation(err))
}

func TestSession_RestoreInvalidStates(t *testing.T) {
	s, _ := newTestSession(filledCart(), &memoryBook{})

	s.Restore(State{Stage: "nowhere"}, nil)
	assert.Equal(t, StageCart, s.CurrentStage())

	s.Restore(State{Stage: StageConfirmation, OrderID: "o1"}, nil)
	assert.Equal(t, StagePayment, s.CurrentStage())

	s.Restore(State{Stage: StageConfirmation, OrderID: "o1"}, &models.Order{ID: "o1"})
	assert.Equal(t, StageConfirmation, s.CurrentStage())

	s.Restore(State{Stage: StageAddressConfirm}, nil)
	assert.Equal(t, StageAddress, s.CurrentStage())
}
