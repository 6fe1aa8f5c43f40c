package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBInstrumentationConfig selects the GORM instrumentation to install
type DBInstrumentationConfig struct {
	Tracing         bool
	LogFullSQL      bool // include bound variables in spans; never in production
	SlowQueryThresh time.Duration
	DBSystem        string
	Meter           metric.Meter // nil disables query metrics
}

type dbStartKey struct{}

// InstrumentDB registers otelgorm tracing plus slow-query marking and query
// metrics callbacks on db.
func InstrumentDB(db *gorm.DB, cfg DBInstrumentationConfig, logger *zap.Logger) error {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}

	if cfg.Tracing {
		opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}

	var rec *queryRecorder
	if cfg.Meter != nil {
		var err error
		if rec, err = newQueryRecorder(cfg.Meter); err != nil {
			return err
		}
	}
	if !cfg.Tracing && rec == nil {
		logger.Debug("Database instrumentation disabled")
		return nil
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, dbStartKey{}, time.Now())
		}
	}
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) { observeQuery(tx, op, cfg.SlowQueryThresh, rec) }
	}

	cb := db.Callback()
	for _, reg := range []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	} {
		if err := reg.before("fulfillment:before_"+reg.op, before); err != nil {
			return err
		}
		if err := reg.after("fulfillment:after_"+reg.op, after(reg.op)); err != nil {
			return err
		}
	}

	logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.Tracing),
		zap.Bool("metrics", rec != nil),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh))
	return nil
}

func observeQuery(tx *gorm.DB, op string, slow time.Duration, rec *queryRecorder) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(dbStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	failed := tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound)

	if op == "raw" || op == "row" {
		op = statementVerb(tx.Statement.SQL.String())
	}

	if rec != nil {
		rec.record(ctx, op, tx.Statement.Table, elapsed, failed)
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if elapsed > slow {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", slow.Milliseconds())))
	}
}

// statementVerb classifies raw SQL by its leading keyword
func statementVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "raw"
	}
	switch verb := strings.ToLower(fields[0]); verb {
	case "select", "insert", "update", "delete":
		return verb
	case "with":
		return "select"
	default:
		return "raw"
	}
}

type queryRecorder struct {
	total    *Counter
	errors   *Counter
	duration *Histogram
}

func newQueryRecorder(meter metric.Meter) (*queryRecorder, error) {
	total, err := NewCounter(meter, "db_queries_total", "Database queries by operation and table", "{queries}")
	if err != nil {
		return nil, err
	}
	errs, err := NewCounter(meter, "db_query_errors_total", "Failed database queries", "{queries}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database query latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return &queryRecorder{total: total, errors: errs, duration: duration}, nil
}

func (r *queryRecorder) record(ctx context.Context, op, table string, elapsed time.Duration, failed bool) {
	attrs := []attribute.KeyValue{AttrDBOperation.String(op), AttrDBTable.String(table)}
	r.total.Inc(ctx, attrs...)
	r.duration.RecordDuration(ctx, elapsed, attrs...)
	if failed {
		r.errors.Inc(ctx, attrs...)
	}
}

// RegisterPoolMetrics exports connection pool state as an observable gauge
func RegisterPoolMetrics(meter metric.Meter, sqlDB *sql.DB) error {
	gauge, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Database pool connections by state"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(gauge, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(gauge, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(gauge, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
		return nil
	}, gauge)
	return err
}
