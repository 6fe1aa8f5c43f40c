package persistence

import (
	"context"
	"testing"

	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db := newSQLiteDatabase(t)

	assert.Equal(t, "sqlite", db.Driver)
	assert.Nil(t, db.Pool)
	require.NoError(t, db.Ping(context.Background()))

	t.Run("serializes on one connection", func(t *testing.T) {
		stats, err := db.Stats()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.MaxOpenConnections)
		assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
	})

	t.Run("migrates the schema", func(t *testing.T) {
		for _, table := range []string{"inventory_items", "purchase_batches", "stock_movements", "orders", "sales"} {
			assert.True(t, db.DB.Migrator().HasTable(table), table)
		}
	})

	t.Run("ignores row locking", func(t *testing.T) {
		var n int64
		err := db.DB.Table("inventory_items").Clauses(clause.Locking{Strength: "UPDATE"}).Count(&n).Error
		assert.NoError(t, err)
	})
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(context.Background(), &config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported database driver "oracle"`)
}

func TestNewDatabase_PostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDatabase(ctx, &config.DatabaseConfig{
		Driver:       "postgres",
		Host:         "127.0.0.1",
		Port:         1,
		User:         "nobody",
		DBName:       "none",
		SSLMode:      "disable",
		MaxOpenConns: 1,
	})
	assert.Error(t, err)
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(context.Background(), &config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file::memory:",
	})
	require.NoError(t, err)

	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}
