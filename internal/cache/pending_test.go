package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingSlot_PutReplacesAndTakeConsumes(t *testing.T) {
	client, mr := setupTestRedis(t)
	slot := NewPendingRepository(client).ForSession("sess-1")
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, testItem("p1", 1)))
	require.NoError(t, slot.Put(ctx, testItem("p2", 3)))
	assert.Equal(t, PendingTTL, mr.TTL(pendingKey("sess-1")))

	item, err := slot.Take(ctx)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "p2", item.ProductID)
	assert.Equal(t, 3, item.Quantity)

	item, err = slot.Take(ctx)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestPendingSlot_SessionsAreIsolated(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewPendingRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.ForSession("a").Put(ctx, testItem("p1", 1)))

	item, err := repo.ForSession("b").Take(ctx)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestPendingSlot_PeekKeepsItem(t *testing.T) {
	client, _ := setupTestRedis(t)
	slot := NewPendingRepository(client).ForSession("sess-1")
	ctx := context.Background()

	require.NoError(t, slot.Put(ctx, testItem("p1", 1)))

	item, err := slot.Peek(ctx)
	require.NoError(t, err)
	require.NotNil(t, item)

	item, err = slot.Take(ctx)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "p1", item.ProductID)
}
