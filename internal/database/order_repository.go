package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"cedra_storefront/internal/apperr"
	"cedra_storefront/internal/models"
	"cedra_storefront/internal/orders"

	"github.com/gocql/gocql"
)

// OrderRepository stocke chaque commande en JSON dans orders, indexée par
// utilisateur (orders_by_user) et par vendeur (orders_by_seller)
type OrderRepository struct {
	session *gocql.Session
}

func NewOrderRepository(session *gocql.Session) *OrderRepository {
	return &OrderRepository{session: session}
}

func (r *OrderRepository) Create(ctx context.Context, order models.Order) (models.Order, error) {
	id, err := gocql.ParseUUID(order.ID)
	if err != nil {
		return models.Order{}, fmt.Errorf("identifiant commande invalide %q: %w", order.ID, err)
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return models.Order{}, err
	}

	batch := r.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(stmtInsertOrder, id, order.UserID, string(order.Status), string(payload), order.CreatedAt, order.UpdatedAt)
	batch.Query(stmtInsertOrderByUser, order.UserID, id, string(order.Status), order.CreatedAt)
	for _, seller := range sellersOf(order) {
		batch.Query(stmtInsertOrderBySeller, seller, id, order.CreatedAt)
	}

	if err := r.session.ExecuteBatch(batch); err != nil {
		log.Printf("❌ Erreur insertion commande %s: %v", order.ID, err)
		return models.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) Get(ctx context.Context, orderID string) (models.Order, error) {
	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		return models.Order{}, apperr.ErrNotFound
	}
	return r.get(ctx, id)
}

func (r *OrderRepository) get(ctx context.Context, id gocql.UUID) (models.Order, error) {
	var (
		payload   string
		status    string
		updatedAt time.Time
	)
	err := r.session.Query(stmtGetOrder, id).WithContext(ctx).Scan(&payload, &status, &updatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return models.Order{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return decodeRow(payload, status, updatedAt)
}

// decodeRow : la colonne status fait foi sur le statut du JSON
func decodeRow(payload, status string, updatedAt time.Time) (models.Order, error) {
	order, err := models.NormalizeOrder([]byte(payload))
	if err != nil {
		return models.Order{}, err
	}
	if parsed, ok := models.ParseOrderStatus(status); ok {
		order.Status = parsed
	}
	if !updatedAt.IsZero() {
		order.UpdatedAt = updatedAt
	}
	return order, nil
}

// List passe par les tables d'index quand le filtre le permet ; sinon
// parcourt toute la table (tableau de bord admin)
func (r *OrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var (
		result []models.Order
		err    error
	)
	switch {
	case filter.UserID != "":
		result, err = r.listByIndex(ctx, stmtListOrderIDByUser, filter.UserID)
	case filter.Seller != "":
		result, err = r.listByIndex(ctx, stmtListOrderIDBySeller, filter.Seller)
	default:
		result, err = r.listAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(result))
	for _, o := range result {
		if filter.Match(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *OrderRepository) listByIndex(ctx context.Context, stmt, key string) ([]models.Order, error) {
	iter := r.session.Query(stmt, key).WithContext(ctx).Iter()
	var (
		id  gocql.UUID
		ids []gocql.UUID
	)
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	result := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		order, err := r.get(ctx, id)
		if errors.Is(err, apperr.ErrNotFound) {
			log.Printf("⚠️ Index commande orphelin: %s", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, nil
}

func (r *OrderRepository) listAll(ctx context.Context) ([]models.Order, error) {
	iter := r.session.Query(stmtListOrders).WithContext(ctx).Iter()
	var (
		payload, status string
		updatedAt       time.Time
		result          []models.Order
	)
	for iter.Scan(&payload, &status, &updatedAt) {
		order, err := decodeRow(payload, status, updatedAt)
		if err != nil {
			log.Printf("⚠️ Commande illisible ignorée: %v", err)
			continue
		}
		result = append(result, order)
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		return nil, err
	}
	return result, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (models.Order, error) {
	id, err := gocql.ParseUUID(orderID)
	if err != nil {
		return models.Order{}, apperr.ErrNotFound
	}
	current, err := r.get(ctx, id)
	if err != nil {
		return models.Order{}, err
	}

	updated, err := orders.SetStatus(current, status, time.Now())
	if err != nil {
		return models.Order{}, err
	}
	payload, err := json.Marshal(updated)
	if err != nil {
		return models.Order{}, err
	}

	if err := r.session.Query(stmtUpdateOrderStatus, string(status), string(payload), updated.UpdatedAt, id).WithContext(ctx).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour orders: %v", err)
		return models.Order{}, err
	}

	// index secondaire : un échec ne remet pas en cause la mise à jour
	if err := r.session.Query(stmtUpdateOrderByUser, string(status), updated.UserID, id).WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour orders_by_user: %v", err)
	}
	return updated, nil
}

// sellersOf retourne les vendeurs distincts, dans l'ordre des colis
func sellersOf(order models.Order) []string {
	seen := map[string]bool{}
	sellers := []string{}
	for _, item := range order.Items {
		if item.Seller != "" && !seen[item.Seller] {
			seen[item.Seller] = true
			sellers = append(sellers, item.Seller)
		}
	}
	return sellers
}
