package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	db := NewMockDB(t)
	require.NotNil(t, db.DB)
	db.ExpectationsWereMet(t)
}

func TestNewTestUUID_Deterministic(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	_, ok := ctx.Deadline()
	assert.True(t, ok)
}

func TestRequireEventually(t *testing.T) {
	n := 0
	RequireEventually(t, func() bool { n++; return n >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, 3, n)
}

func TestNewFixture_SeedsIsolatedDatabases(t *testing.T) {
	a := NewFixture(t)
	b := NewFixture(t)

	product := a.SeedProduct(t, "SKU-1")
	a.Replenish(t, product.ID, a.Warehouse.ID, 5, "2.00", 1)

	assert.Equal(t, int64(5), a.Ledger(t, product.ID, a.Warehouse.ID).AvailableStock)
	a.RequireConsistent(t, product.ID, a.Warehouse.ID)

	_, err := b.Repos.Inventory.FindByProductAndWarehouse(context.Background(), product.ID, a.Warehouse.ID)
	assert.Error(t, err)
}
