package database

import (
	"testing"
	"time"

	"cedra_storefront/internal/models"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScyllaConfigs(t *testing.T) {
	t.Setenv("SCYLLA_HOSTS", "10.0.0.1, 10.0.0.2,")
	t.Setenv("SCYLLA_KS_USERS_KEYSPACE", "cedra_users")
	t.Setenv("SCYLLA_KS_USERS_ROLE", "users_rw")
	t.Setenv("SCYLLA_KS_ORDERS_KEYSPACE", "")

	configs := LoadScyllaConfigs()

	require.Contains(t, configs, KeyspaceUsers)
	assert.NotContains(t, configs, KeyspaceOrders)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, configs[KeyspaceUsers].Hosts)
	assert.Equal(t, "cedra_users", configs[KeyspaceUsers].Keyspace)
	assert.Equal(t, gocql.Quorum, configs[KeyspaceUsers].Consistency)
}

func TestCreateScyllaCluster_RequiresHosts(t *testing.T) {
	_, err := createScyllaCluster(ScyllaKeyspaceConfig{Keyspace: "ks"})
	assert.Error(t, err)

	_, err = createScyllaCluster(ScyllaKeyspaceConfig{Hosts: []string{"h"}, Keyspace: "ks", SSLEnabled: true})
	assert.Error(t, err)

	cluster, err := createScyllaCluster(ScyllaKeyspaceConfig{Hosts: []string{"h"}, Keyspace: "ks", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "ks", cluster.Keyspace)
}

func TestSessionUnknownKeyspace(t *testing.T) {
	sm, err := NewScyllaManager(map[string]ScyllaKeyspaceConfig{})
	require.NoError(t, err)

	_, err = sm.Session(KeyspaceOrders)
	assert.Error(t, err)
}

func TestDecodeRow_StatusColumnWins(t *testing.T) {
	payload := `{"orderId":"o1","userId":"u1","status":"Confirmed","grandTotal":"890","items":[]}`
	updated := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	order, err := decodeRow(payload, "Packed", updated)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPacked, order.Status)
	assert.Equal(t, updated, order.UpdatedAt)
	assert.True(t, order.GrandTotal.Equal(decimal.NewFromInt(890)))
}

func TestDecodeRow_KeepsCustomerEmail(t *testing.T) {
	payload := `{"orderId":"o1","userId":"u1","customerEmail":"asha@example.com","status":"Confirmed","grandTotal":"890","items":[]}`

	order, err := decodeRow(payload, "Packed", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", order.CustomerEmail)
}

func TestSellersOf(t *testing.T) {
	order := models.Order{Items: []models.OrderLineItem{
		{CartLineItem: models.CartLineItem{Seller: "S2"}},
		{CartLineItem: models.CartLineItem{Seller: "S1"}},
		{CartLineItem: models.CartLineItem{Seller: "S2"}},
		{CartLineItem: models.CartLineItem{}},
	}}

	assert.Equal(t, []string{"S2", "S1"}, sellersOf(order))
}
