package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cedra_storefront/internal/models"

	"github.com/redis/go-redis/v9"
)

// PendingTTL couvre le temps d'un aller-retour par la page de connexion
const PendingTTL = time.Hour

func pendingKey(sessionID string) string {
	return "pending_cart:" + sessionID
}

// PendingRepository garde l'article ajouté par un visiteur non connecté
type PendingRepository struct {
	client *redis.Client
}

func NewPendingRepository(client *redis.Client) *PendingRepository {
	return &PendingRepository{client: client}
}

// ForSession retourne l'emplacement unique du visiteur (X-Session-ID)
func (r *PendingRepository) ForSession(sessionID string) *PendingSlot {
	return &PendingSlot{client: r.client, sessionID: sessionID}
}

type PendingSlot struct {
	client    *redis.Client
	sessionID string
}

// Put remplace l'article en attente
func (p *PendingSlot) Put(ctx context.Context, item models.CartLineItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return p.client.Set(ctx, pendingKey(p.sessionID), data, PendingTTL).Err()
}

func (p *PendingSlot) Peek(ctx context.Context) (*models.CartLineItem, error) {
	data, err := p.client.Get(ctx, pendingKey(p.sessionID)).Bytes()
	return decodePending(data, err)
}

// Take lit et supprime l'article en attente ; nil si aucun
func (p *PendingSlot) Take(ctx context.Context) (*models.CartLineItem, error) {
	data, err := p.client.GetDel(ctx, pendingKey(p.sessionID)).Bytes()
	return decodePending(data, err)
}

func decodePending(data []byte, err error) (*models.CartLineItem, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture article en attente: %w", err)
	}

	var item models.CartLineItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("décodage article en attente: %w", err)
	}
	return &item, nil
}
