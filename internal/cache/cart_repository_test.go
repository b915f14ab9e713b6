package cache

import (
	"context"
	"testing"
	"time"

	"cedra_storefront/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func testItem(id string, qty int) models.CartLineItem {
	return models.CartLineItem{
		ProductID: id,
		Name:      "Produit " + id,
		UnitPrice: decimal.RequireFromString("199.50"),
		Quantity:  qty,
		Seller:    "S1",
	}
}

func TestUserCart_GetMissingIsEmpty(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCartRepository(client)

	cart, err := repo.ForUser("u1").Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.Empty(t, cart.Items)
}

func TestUserCart_AddPersistsWithTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewCartRepository(client)
	ctx := context.Background()

	cart, err := repo.ForUser("u1").AddItem(ctx, testItem("p1", 2))
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	assert.True(t, mr.Exists(CartKey("u1")))
	assert.Equal(t, CartTTL, mr.TTL(CartKey("u1")))

	reloaded, err := repo.ForUser("u1").Get(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("199.50")))
	assert.False(t, reloaded.UpdatedAt.IsZero())
}

func TestUserCart_AddAccumulatesAndUpdate(t *testing.T) {
	client, _ := setupTestRedis(t)
	userCart := NewCartRepository(client).ForUser("u1")
	ctx := context.Background()

	_, err := userCart.AddItem(ctx, testItem("p1", 1))
	require.NoError(t, err)
	cart, err := userCart.AddItem(ctx, testItem("p1", 2))
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	cart, err = userCart.UpdateItem(ctx, models.LineKey{ProductID: "p1"}, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestUserCart_RemoveLastLineDeletesKey(t *testing.T) {
	client, mr := setupTestRedis(t)
	userCart := NewCartRepository(client).ForUser("u1")
	ctx := context.Background()

	_, err := userCart.AddItem(ctx, testItem("p1", 1))
	require.NoError(t, err)
	cart, err := userCart.RemoveItem(ctx, models.LineKey{ProductID: "p1"})
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
	assert.False(t, mr.Exists(CartKey("u1")))
}

func TestUserCart_ReadsLegacyArray(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Set(CartKey("u1"), `[{"product_id":"p1","name":"Ancien","price":120,"quantity":2}]`)

	cart, err := NewCartRepository(client).ForUser("u1").Get(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ProductID)
	assert.True(t, cart.Items[0].UnitPrice.Equal(decimal.NewFromInt(120)))
}

func TestUserCart_InvalidJSON(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Set(CartKey("u1"), "pas du json")

	_, err := NewCartRepository(client).ForUser("u1").Get(context.Background())
	assert.Error(t, err)
}

func TestUserCart_PublishesChanges(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewCartRepository(client)
	ctx := context.Background()

	sub := repo.Subscribe(ctx, "u1")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	_, err = repo.ForUser("u1").AddItem(ctx, testItem("p1", 1))
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, CartUpdated, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("aucune notification reçue")
	}

	require.NoError(t, repo.ForUser("u1").Clear(ctx))
	select {
	case msg := <-sub.Channel():
		assert.Equal(t, CartCleared, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("aucune notification reçue")
	}
}

func TestUserCart_ServerDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()

	_, err := NewCartRepository(client).ForUser("u1").AddItem(context.Background(), testItem("p1", 1))
	assert.Error(t, err)
}
