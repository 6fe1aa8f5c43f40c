//go:build integration

// Package integration runs the fulfillment core against a real PostgreSQL
// started with testcontainers. Run with: go test -tags integration ./tests/integration/...
package integration

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/erp/fulfillment/internal/infrastructure/config"
	"github.com/erp/fulfillment/internal/infrastructure/logger"
	"github.com/erp/fulfillment/internal/infrastructure/migration"
	"github.com/erp/fulfillment/internal/infrastructure/persistence"
	"github.com/erp/fulfillment/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

// Reference rows inserted by the seed migration
const (
	mainWarehouseID   = "01900000-0000-7000-8000-000000000001"
	generalCategoryID = "01900000-0000-7000-8000-000000000101"
)

// TestDB is a migrated PostgreSQL database in its own container
type TestDB struct {
	*persistence.Database
	Container testcontainers.Container
	Config    config.DatabaseConfig
}

// NewTestDB starts a fresh PostgreSQL container, opens it through the pgx
// pool and applies the embedded migrations. Everything is torn down when
// the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("fulfillment_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:          "postgres",
		Host:            host,
		Port:            portNum,
		User:            "postgres",
		Password:        "admin123",
		DBName:          "fulfillment_test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	}

	level := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	log := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	db, err := persistence.NewDatabase(ctx, &cfg,
		persistence.WithGormLogger(logger.NewGormLogger(log, level)))
	require.NoError(t, err, "Failed to connect to database")
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.SQL()
	require.NoError(t, err)
	migrator, err := migration.New(sqlDB, migrations.FS, log)
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, migrator.Up(), "Failed to run migrations")

	return &TestDB{Database: db, Container: container, Config: cfg}
}
