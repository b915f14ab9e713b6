package orders

import (
	"context"
	"errors"
	"log"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"
)

// Service sert les lectures par rôle et les changements de statut
type Service struct {
	persistence Persistence
	notifier    Notifier
	recorder    Recorder
}

// NewService accepte notifier et recorder nil
func NewService(persistence Persistence, notifier Notifier, recorder Recorder) *Service {
	return &Service{persistence: persistence, notifier: notifier, recorder: recorder}
}

// FilterFor restreint la requête au périmètre du lecteur
func FilterFor(viewer models.Viewer) models.OrderFilter {
	switch {
	case viewer.IsAdmin():
		return models.OrderFilter{}
	case viewer.IsVendor():
		return models.OrderFilter{Seller: viewer.CompanyID}
	default:
		return models.OrderFilter{UserID: viewer.UserID}
	}
}

func (s *Service) List(ctx context.Context, viewer models.Viewer, status models.OrderStatus) ([]models.Order, error) {
	filter := FilterFor(viewer)
	filter.Status = status

	orders, err := s.persistence.List(ctx, filter)
	if err != nil {
		return nil, apperr.Persistence("liste commandes", err)
	}
	return VisibleTo(viewer, orders), nil
}

// Get ne révèle pas l'existence d'une commande hors du périmètre du lecteur
func (s *Service) Get(ctx context.Context, viewer models.Viewer, orderID string) (models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	view, ok := ViewFor(viewer, order)
	if !ok {
		return models.Order{}, apperr.ErrNotFound
	}
	return view, nil
}

// UpdateStatus est ouvert à l'admin et au vendeur dont la commande contient des lignes
func (s *Service) UpdateStatus(ctx context.Context, viewer models.Viewer, orderID, raw string) (models.Order, error) {
	next, err := ParseStatus(raw)
	if err != nil {
		return models.Order{}, err
	}

	current, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}

	if !viewer.IsAdmin() {
		if !viewer.IsVendor() {
			return models.Order{}, apperr.ErrForbidden
		}
		if _, ok := vendorView(viewer.CompanyID, current); !ok {
			return models.Order{}, apperr.ErrForbidden
		}
	}

	if !IsForward(current.Status, next) {
		log.Printf("⚠️ Commande %s: transition hors parcours %q → %q (par %s)", orderID, current.Status, next, viewer.UserID)
	}

	updated, err := s.persistence.UpdateStatus(ctx, orderID, next)
	if err != nil {
		return models.Order{}, apperr.Persistence("mise à jour statut", err)
	}
	log.Printf("✅ Commande %s mise à jour: %s", orderID, next)

	if s.recorder != nil {
		s.recorder.StatusChanged(next)
	}
	if s.notifier != nil && current.Status != next {
		s.notifier.StatusChanged(ctx, updated, current.Status)
	}

	view, _ := ViewFor(viewer, updated)
	return view, nil
}

func (s *Service) load(ctx context.Context, orderID string) (models.Order, error) {
	order, err := s.persistence.Get(ctx, orderID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Order{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Order{}, apperr.Persistence("lecture commande", err)
	}
	return order, nil
}
