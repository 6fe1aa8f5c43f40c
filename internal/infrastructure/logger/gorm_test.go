package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_LogMode(t *testing.T) {
	gormLog := NewGormLogger(zap.NewNop(), gormlogger.Info)
	changed, ok := gormLog.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	query := func() (string, int64) { return "SELECT * FROM inventory_items FOR UPDATE", 1 }

	t.Run("errors are logged with request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Warn)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-1")

		gormLog.Trace(ctx, time.Now(), query, errors.New("deadlock detected"))

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Warn)

		gormLog.Trace(context.Background(), time.Now(), query, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gormLog.Trace(context.Background(), time.Now().Add(-time.Second), query, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		gormLog := NewGormLogger(zap.New(core), gormlogger.Silent)

		gormLog.Trace(context.Background(), time.Now(), query, errors.New("boom"))

		assert.Empty(t, recorded.All())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
