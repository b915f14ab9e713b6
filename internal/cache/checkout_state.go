package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	CheckoutStateTTL = 2 * time.Hour
	CheckoutLockTTL  = 30 * time.Second
)

// ErrCheckoutBusy : une autre requête du même utilisateur tient le tunnel
var ErrCheckoutBusy = errors.New("tunnel déjà en cours de traitement")

func checkoutKey(userID string) string {
	return "checkout:" + userID
}

func checkoutLockKey(userID string) string {
	return "checkout:lock:" + userID
}

// CheckoutStateRepository conserve l'état du tunnel entre deux requêtes
type CheckoutStateRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCheckoutStateRepository(client *redis.Client) *CheckoutStateRepository {
	return &CheckoutStateRepository{client: client, ttl: CheckoutStateTTL}
}

func (r *CheckoutStateRepository) Save(ctx context.Context, userID string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, checkoutKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("sauvegarde tunnel %s: %w", userID, err)
	}
	return nil
}

// Load remplit dst ; false si aucun état n'est enregistré
func (r *CheckoutStateRepository) Load(ctx context.Context, userID string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, checkoutKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lecture tunnel %s: %w", userID, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("décodage tunnel %s: %w", userID, err)
	}
	return true, nil
}

func (r *CheckoutStateRepository) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, checkoutKey(userID)).Err()
}

// Lock réserve le tunnel de l'utilisateur le temps d'une requête.
// Le verrou expire seul après CheckoutLockTTL ; release ne supprime que le sien.
func (r *CheckoutStateRepository) Lock(ctx context.Context, userID string) (release func(), err error) {
	key := checkoutLockKey(userID)
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, CheckoutLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("verrou tunnel %s: %w", userID, err)
	}
	if !ok {
		return nil, ErrCheckoutBusy
	}

	ctx = context.WithoutCancel(ctx)
	return func() {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}
			if current != token {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			return err
		}, key)
		if err != nil {
			log.Printf("⚠️ Verrou tunnel %s non libéré: %v", userID, err)
		}
	}, nil
}
