package orders

import (
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"
)

const (
	FinalStage    = 5
	TerminalStage = -1
)

var stages = map[models.OrderStatus]int{
	models.StatusPendingPayment: 0,
	models.StatusConfirmed:      0,
	models.StatusProcessing:     1,
	models.StatusPacked:         2,
	models.StatusHandedCourier:  3,
	models.StatusInTransit:      4,
	models.StatusDelivered:      5,
	models.StatusCancelled:      TerminalStage,
	models.StatusReturned:       TerminalStage,
}

// Stage donne la position de la barre de progression ; -1 pour annulée/retournée
func Stage(status models.OrderStatus) int {
	if stage, ok := stages[status]; ok {
		return stage
	}
	return TerminalStage
}

// ParseStatus refuse tout statut hors de l'énumération
func ParseStatus(raw string) (models.OrderStatus, error) {
	status, ok := models.ParseOrderStatus(raw)
	if !ok {
		return "", apperr.NewValidation("status", "statut inconnu: "+raw)
	}
	return status, nil
}

// SetStatus accepte n'importe quel statut de l'énumération, quel que soit le
// statut courant. Seule la date de mise à jour change en plus du statut.
func SetStatus(order models.Order, next models.OrderStatus, now time.Time) (models.Order, error) {
	if _, ok := stages[next]; !ok {
		return order, apperr.NewValidation("status", "statut inconnu: "+string(next))
	}
	order.Status = next
	order.UpdatedAt = now.UTC()
	return order, nil
}

// forward est le graphe des transitions prévues. Il n'est pas imposé : une
// transition hors graphe est seulement signalée.
var forward = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPendingPayment: {models.StatusConfirmed, models.StatusProcessing},
	models.StatusConfirmed:      {models.StatusProcessing},
	models.StatusProcessing:     {models.StatusPacked},
	models.StatusPacked:         {models.StatusHandedCourier},
	models.StatusHandedCourier:  {models.StatusInTransit},
	models.StatusInTransit:      {models.StatusDelivered},
	models.StatusDelivered:      {models.StatusReturned},
}

func IsForward(from, to models.OrderStatus) bool {
	if to == models.StatusCancelled || to == models.StatusReturned {
		return !from.IsTerminal()
	}
	for _, next := range forward[from] {
		if next == to {
			return true
		}
	}
	return false
}

type TimelineStep struct {
	Stage   int                `json:"stage"`
	Status  models.OrderStatus `json:"status"`
	Reached bool               `json:"reached"`
	Current bool               `json:"current"`
}

var timelineStatuses = []models.OrderStatus{
	models.StatusConfirmed,
	models.StatusProcessing,
	models.StatusPacked,
	models.StatusHandedCourier,
	models.StatusInTransit,
	models.StatusDelivered,
}

// Timeline produit les étapes de la barre de progression. Les étapes
// atteintes forment toujours un préfixe ; aucune pour un statut terminal.
func Timeline(status models.OrderStatus) []TimelineStep {
	current := Stage(status)
	steps := make([]TimelineStep, 0, len(timelineStatuses))
	for i, s := range timelineStatuses {
		if i == 0 && status == models.StatusPendingPayment {
			s = models.StatusPendingPayment
		}
		steps = append(steps, TimelineStep{
			Stage:   i,
			Status:  s,
			Reached: current >= i,
			Current: current == i,
		})
	}
	return steps
}
