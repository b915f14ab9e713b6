package orders

import (
	"context"
	"errors"
	"sync"
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"
)

// MemoryPersistence garde l'historique en mémoire (tests et développement local)
type MemoryPersistence struct {
	mu     sync.RWMutex
	orders []models.Order
	// FailWrites simule une panne du service distant
	FailWrites bool
}

func NewMemoryPersistence(orders ...models.Order) *MemoryPersistence {
	return &MemoryPersistence{orders: append([]models.Order{}, orders...)}
}

var errUnavailable = errors.New("service de commandes indisponible")

func (m *MemoryPersistence) Create(_ context.Context, order models.Order) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return models.Order{}, errUnavailable
	}
	m.orders = append(m.orders, order)
	return order, nil
}

func (m *MemoryPersistence) Get(_ context.Context, orderID string) (models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.ID == orderID {
			return o, nil
		}
	}
	return models.Order{}, apperr.ErrNotFound
}

// List retourne les commandes les plus récentes en premier
func (m *MemoryPersistence) List(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if filter.Match(m.orders[i]) {
			out = append(out, m.orders[i])
		}
	}
	return out, nil
}

func (m *MemoryPersistence) UpdateStatus(_ context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return models.Order{}, errUnavailable
	}
	for i, o := range m.orders {
		if o.ID != orderID {
			continue
		}
		updated, err := SetStatus(o, status, time.Now())
		if err != nil {
			return models.Order{}, err
		}
		m.orders[i] = updated
		return updated, nil
	}
	return models.Order{}, apperr.ErrNotFound
}

func (m *MemoryPersistence) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
