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

const (
	CartTTL = 30 * 24 * time.Hour // 30 jours

	CartUpdated = "updated"
	CartCleared = "cleared"

	maxCartTxRetries = 3
)

func CartKey(userID string) string {
	return "cart:" + userID
}

// CartChannel est le canal pub/sub qui signale les changements d'un panier
func CartChannel(userID string) string {
	return "cart:" + userID
}

// CartRepository stocke les paniers dans Redis sous forme JSON
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewCartRepository(client *redis.Client) *CartRepository {
	return &CartRepository{client: client, ttl: CartTTL, now: time.Now}
}

// ForUser retourne la persistance du panier d'un utilisateur
func (r *CartRepository) ForUser(userID string) *UserCart {
	return &UserCart{repo: r, userID: userID}
}

// Subscribe ouvre l'abonnement aux notifications du panier
func (r *CartRepository) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return r.client.Subscribe(ctx, CartChannel(userID))
}

type UserCart struct {
	repo   *CartRepository
	userID string
}

func (u *UserCart) Get(ctx context.Context) (models.Cart, error) {
	return u.read(ctx, u.repo.client)
}

func (u *UserCart) AddItem(ctx context.Context, item models.CartLineItem) (models.Cart, error) {
	return u.mutate(ctx, func(c models.Cart) models.Cart { return c.WithItem(item) })
}

func (u *UserCart) UpdateItem(ctx context.Context, key models.LineKey, quantity int) (models.Cart, error) {
	return u.mutate(ctx, func(c models.Cart) models.Cart { return c.WithQuantity(key, quantity) })
}

func (u *UserCart) RemoveItem(ctx context.Context, key models.LineKey) (models.Cart, error) {
	return u.mutate(ctx, func(c models.Cart) models.Cart { return c.Without(key) })
}

func (u *UserCart) Clear(ctx context.Context) error {
	pipe := u.repo.client.TxPipeline()
	pipe.Del(ctx, CartKey(u.userID))
	pipe.Publish(ctx, CartChannel(u.userID), CartCleared)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vidage panier %s: %w", u.userID, err)
	}
	return nil
}

func (u *UserCart) read(ctx context.Context, cmd redis.Cmdable) (models.Cart, error) {
	data, err := cmd.Get(ctx, CartKey(u.userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.EmptyCart(u.userID), nil
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("lecture panier %s: %w", u.userID, err)
	}

	// les anciennes entrées sont de simples tableaux de lignes
	items, err := models.NormalizeCartItems(data)
	if err != nil {
		return models.Cart{}, fmt.Errorf("décodage panier %s: %w", u.userID, err)
	}
	cart := models.Cart{UserID: u.userID, Items: items}

	var meta struct {
		UpdatedAt time.Time `json:"updatedAt"`
	}
	if json.Unmarshal(data, &meta) == nil {
		cart.UpdatedAt = meta.UpdatedAt
	}
	return cart, nil
}

// mutate applique fn dans une transaction optimiste (WATCH) puis notifie les abonnés
func (u *UserCart) mutate(ctx context.Context, fn func(models.Cart) models.Cart) (models.Cart, error) {
	key := CartKey(u.userID)
	var next models.Cart

	txf := func(tx *redis.Tx) error {
		current, err := u.read(ctx, tx)
		if err != nil {
			return err
		}
		next = fn(current)
		next.UserID = u.userID
		next.UpdatedAt = u.repo.now().UTC()

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next.IsEmpty() {
				pipe.Del(ctx, key)
			} else {
				data, err := json.Marshal(next)
				if err != nil {
					return err
				}
				pipe.Set(ctx, key, data, u.repo.ttl)
			}
			pipe.Publish(ctx, CartChannel(u.userID), CartUpdated)
			return nil
		})
		return err
	}

	for i := 0; i < maxCartTxRetries; i++ {
		err := u.repo.client.Watch(ctx, txf, key)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return models.Cart{}, fmt.Errorf("écriture panier %s: %w", u.userID, err)
		}
	}
	return models.Cart{}, fmt.Errorf("écriture panier %s: trop de conflits", u.userID)
}
