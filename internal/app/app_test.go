package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/storefront-backend/internal/config"
	"github.com/unclebandit/storefront-backend/internal/queue"
)

func TestBootstrapMemory(t *testing.T) {
	d, err := Bootstrap(context.Background(), config.Service{
		Name:        "customer-service",
		StoreDriver: config.DriverMemory,
	}, "customers")
	require.NoError(t, err)
	defer d.Close()

	assert.Nil(t, d.DB)
	require.IsType(t, &queue.InMemoryQueue{}, d.Events)
	assert.NoError(t, d.Events.Publish("customers.created", queue.NewEvent("customers.created", nil)))
}

func TestBootstrapBadDatabase(t *testing.T) {
	_, err := Bootstrap(context.Background(), config.Service{
		Name:        "order-service",
		StoreDriver: config.DriverPostgres,
		DatabaseURL: "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1",
	}, "orders")
	assert.Error(t, err)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, []string{"orders.*"}, Topics("orders"))
}

func TestCloseRunsInReverse(t *testing.T) {
	var order []int
	d := &Deps{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return nil },
	}}
	require.NoError(t, d.Close())
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, d.Close())
}
