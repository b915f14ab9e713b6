package checkout

import (
	"context"
	"errors"
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/delivery"
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/orders"
	"cedra_storefront/internal/pricing"

	"github.com/google/uuid"
)

type Stage string

const (
	StageCart           Stage = "cart"
	StageAddress        Stage = "address"
	StageAddressConfirm Stage = "address_confirm"
	StageReview         Stage = "review"
	StagePayment        Stage = "payment"
	StageConfirmation   Stage = "confirmation"
)

// ordre du parcours ; StageAddressConfirm est un sous-état de StageAddress
var flow = []Stage{StageCart, StageAddress, StageReview, StagePayment, StageConfirmation}

func position(stage Stage) int {
	if stage == StageAddressConfirm {
		stage = StageAddress
	}
	for i, s := range flow {
		if s == stage {
			return i
		}
	}
	return -1
}

func (s Stage) Valid() bool {
	return position(s) >= 0
}

// AddressBook est le carnet d'adresses de l'utilisateur
type AddressBook interface {
	List(ctx context.Context) ([]models.ShippingAddress, error)
	Save(ctx context.Context, address models.ShippingAddress) (models.ShippingAddress, error)
}

type OrderPlacer interface {
	CreateOrder(ctx context.Context, cart orders.CartSource, address models.ShippingAddress, payment models.PaymentSelection) (models.Order, error)
}

// State est la partie sérialisable de la session. Les champs du formulaire
// de paiement n'en font jamais partie.
type State struct {
	Stage         Stage                   `json:"stage"`
	AddressID     string                  `json:"addressId,omitempty"`
	Draft         *models.ShippingAddress `json:"draft,omitempty"`
	PaymentMethod models.PaymentMethod    `json:"paymentMethod,omitempty"`
	OrderID       string                  `json:"orderId,omitempty"`
}

// Session est l'automate du tunnel Cart → Address → Review → Payment →
// Confirmation. Revenir en arrière ne perd aucune sélection.
type Session struct {
	cart   orders.CartSource
	book   AddressBook
	placer OrderPlacer
	rates  pricing.Rates

	stage     Stage
	addressID string
	draft     *models.ShippingAddress
	payment   *models.PaymentSelection
	order     *models.Order
}

func NewSession(cart orders.CartSource, book AddressBook, placer OrderPlacer, rates pricing.Rates) *Session {
	return &Session{cart: cart, book: book, placer: placer, rates: rates, stage: StageCart}
}

func (s *Session) CurrentStage() Stage {
	return s.stage
}

// CanAdvance indique si Advance réussirait, sans changer d'étape
func (s *Session) CanAdvance(ctx context.Context) bool {
	switch s.stage {
	case StageAddressConfirm, StageConfirmation:
		return false
	case StagePayment:
		if s.payment == nil || ValidatePaymentData(s.payment.Method, s.payment.Fields) != nil {
			return false
		}
		return s.check(ctx, StagePayment) == nil
	}
	return s.check(ctx, flow[position(s.stage)+1]) == nil
}

// Advance passe à l'étape suivante. Depuis Payment, c'est la validation de la commande.
func (s *Session) Advance(ctx context.Context) (Stage, error) {
	switch s.stage {
	case StageConfirmation:
		return s.stage, nil
	case StageAddressConfirm:
		return s.stage, apperr.NewPrecondition("confirmez ou annulez la nouvelle adresse", string(StageAddressConfirm))
	case StagePayment:
		_, err := s.PlaceOrder(ctx)
		return s.stage, err
	}
	return s.GoTo(ctx, flow[position(s.stage)+1])
}

// Back recule d'une étape sans condition. Depuis la confirmation d'adresse,
// équivaut à CancelNewAddress.
func (s *Session) Back() Stage {
	switch s.stage {
	case StageAddressConfirm:
		s.CancelNewAddress()
	case StageCart, StageConfirmation:
	default:
		s.stage = flow[position(s.stage)-1]
	}
	return s.stage
}

// GoTo navigue vers target après vérification de ses prérequis. En cas
// d'échec la session se place sur l'étape de redirection.
func (s *Session) GoTo(ctx context.Context, target Stage) (Stage, error) {
	switch {
	case !target.Valid():
		return s.stage, apperr.NewValidation("stage", "étape inconnue: "+string(target))
	case target == StageAddressConfirm:
		return s.stage, apperr.NewPrecondition("ajoutez d'abord une nouvelle adresse", string(StageAddress))
	case s.stage == StageAddressConfirm:
		return s.stage, apperr.NewPrecondition("confirmez ou annulez la nouvelle adresse", string(StageAddressConfirm))
	case target == StageConfirmation:
		if s.order == nil {
			return s.stage, apperr.NewPrecondition("aucune commande validée", string(StagePayment))
		}
		s.stage = StageConfirmation
		return s.stage, nil
	}

	// la commande est passée : tout nouveau parcours repart de zéro
	if s.stage == StageConfirmation {
		s.reset()
	}

	if err := s.check(ctx, target); err != nil {
		s.redirect(err)
		return s.stage, err
	}
	s.stage = target
	return s.stage, nil
}

// redirect place la session sur l'étape portée par une PreconditionError
func (s *Session) redirect(err error) {
	var pre *apperr.PreconditionError
	if errors.As(err, &pre) && Stage(pre.RedirectTo).Valid() && Stage(pre.RedirectTo) != StageAddressConfirm {
		s.stage = Stage(pre.RedirectTo)
	}
}

// check vérifie les prérequis cumulés de target
func (s *Session) check(ctx context.Context, target Stage) error {
	pos := position(target)
	if pos >= position(StageAddress) && s.cart.Cart().ItemCount() == 0 {
		return apperr.NewPrecondition("panier vide", string(StageCart))
	}
	if pos >= position(StageReview) {
		if _, err := s.SelectedAddress(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) Addresses(ctx context.Context) ([]models.ShippingAddress, error) {
	list, err := s.book.List(ctx)
	if err != nil {
		return nil, apperr.Persistence("lecture carnet d'adresses", err)
	}
	return list, nil
}

// SelectedAddress relit l'adresse choisie dans le carnet : elle doit y exister
func (s *Session) SelectedAddress(ctx context.Context) (models.ShippingAddress, error) {
	if s.addressID == "" {
		return models.ShippingAddress{}, apperr.NewPrecondition("aucune adresse sélectionnée", string(StageAddress))
	}
	list, err := s.Addresses(ctx)
	if err != nil {
		return models.ShippingAddress{}, err
	}
	for _, a := range list {
		if a.ID == s.addressID {
			return a, nil
		}
	}
	return models.ShippingAddress{}, apperr.NewPrecondition("adresse introuvable", string(StageAddress))
}

func (s *Session) SelectAddress(ctx context.Context, addressID string) error {
	if s.stage == StageAddressConfirm || s.stage == StageConfirmation {
		return apperr.NewPrecondition("sélection d'adresse impossible à cette étape", string(s.stage))
	}
	list, err := s.Addresses(ctx)
	if err != nil {
		return err
	}
	for _, a := range list {
		if a.ID == addressID {
			s.addressID = addressID
			return nil
		}
	}
	return apperr.NewValidation("addressId", "adresse inconnue")
}

// BeginNewAddress ouvre le sous-état de confirmation avec un brouillon valide
func (s *Session) BeginNewAddress(draft models.ShippingAddress) error {
	if s.stage != StageAddress {
		return apperr.NewPrecondition("l'ajout d'adresse se fait à l'étape adresse", string(StageAddress))
	}
	if err := ValidateAddress(draft); err != nil {
		return err
	}
	s.draft = &draft
	s.stage = StageAddressConfirm
	return nil
}

func (s *Session) Draft() (models.ShippingAddress, bool) {
	if s.draft == nil {
		return models.ShippingAddress{}, false
	}
	return *s.draft, true
}

// ConfirmNewAddress enregistre le brouillon, le sélectionne et revient à l'étape adresse
func (s *Session) ConfirmNewAddress(ctx context.Context) (models.ShippingAddress, error) {
	if s.stage != StageAddressConfirm || s.draft == nil {
		return models.ShippingAddress{}, apperr.NewPrecondition("aucune adresse à confirmer", string(StageAddress))
	}

	address := *s.draft
	if address.ID == "" {
		address.ID = uuid.NewString()
	}
	if address.CreatedAt.IsZero() {
		address.CreatedAt = time.Now().UTC()
	}

	saved, err := s.book.Save(ctx, address)
	if err != nil {
		return models.ShippingAddress{}, apperr.Persistence("enregistrement adresse", err)
	}

	s.addressID = saved.ID
	s.draft = nil
	s.stage = StageAddress
	return saved, nil
}

func (s *Session) CancelNewAddress() {
	s.draft = nil
	if s.stage == StageAddressConfirm {
		s.stage = StageAddress
	}
}

// SelectPayment valide puis retient le moyen de paiement
func (s *Session) SelectPayment(method models.PaymentMethod, fields map[string]string) error {
	if s.stage != StagePayment {
		return apperr.NewPrecondition("le paiement se choisit à l'étape paiement", string(StagePayment))
	}
	if err := ValidatePaymentData(method, fields); err != nil {
		return err
	}
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.payment = &models.PaymentSelection{Method: method, Fields: copied}
	return nil
}

// PlaceOrder revalide le paiement et l'adresse puis crée la commande
func (s *Session) PlaceOrder(ctx context.Context) (models.Order, error) {
	if s.stage != StagePayment {
		return models.Order{}, apperr.NewPrecondition("la commande se valide à l'étape paiement", string(StagePayment))
	}
	if s.payment == nil {
		return models.Order{}, apperr.NewValidation("method", "choisissez un moyen de paiement")
	}
	if err := ValidatePaymentData(s.payment.Method, s.payment.Fields); err != nil {
		return models.Order{}, err
	}
	if err := s.check(ctx, StagePayment); err != nil {
		s.redirect(err)
		return models.Order{}, err
	}
	address, err := s.SelectedAddress(ctx)
	if err != nil {
		return models.Order{}, err
	}

	order, err := s.placer.CreateOrder(ctx, s.cart, address, *s.payment)
	if err != nil {
		s.redirect(err)
		return models.Order{}, err
	}

	s.order = &order
	s.payment = &models.PaymentSelection{Method: s.payment.Method}
	s.stage = StageConfirmation
	return order, nil
}

func (s *Session) Order() (models.Order, bool) {
	if s.order == nil {
		return models.Order{}, false
	}
	return *s.order, true
}

// Quote est le récapitulatif des étapes revue et paiement
func (s *Session) Quote() delivery.Quote {
	return delivery.NewQuote(s.cart.Cart().Items, s.rates)
}

func (s *Session) PaymentMethod() models.PaymentMethod {
	if s.payment == nil {
		return ""
	}
	return s.payment.Method
}

func (s *Session) State() State {
	st := State{Stage: s.stage, AddressID: s.addressID, PaymentMethod: s.PaymentMethod()}
	if s.draft != nil {
		draft := *s.draft
		st.Draft = &draft
	}
	if s.order != nil {
		st.OrderID = s.order.ID
	}
	return st
}

// Restore recharge un état exporté. La commande n'est connue que par son
// identifiant : l'étape de confirmation ne survit pas sans elle.
func (s *Session) Restore(st State, order *models.Order) {
	s.reset()
	s.addressID = st.AddressID
	if st.Draft != nil {
		draft := *st.Draft
		s.draft = &draft
	}
	if st.PaymentMethod.Valid() {
		s.payment = &models.PaymentSelection{Method: st.PaymentMethod}
	}
	if order != nil && order.ID == st.OrderID {
		o := *order
		s.order = &o
	}

	switch {
	case !st.Stage.Valid():
		s.stage = StageCart
	case st.Stage == StageConfirmation && s.order == nil:
		s.stage = StagePayment
	case st.Stage == StageAddressConfirm && s.draft == nil:
		s.stage = StageAddress
	default:
		s.stage = st.Stage
	}
}

func (s *Session) reset() {
	s.stage = StageCart
	s.addressID = ""
	s.draft = nil
	s.payment = nil
	s.order = nil
}
