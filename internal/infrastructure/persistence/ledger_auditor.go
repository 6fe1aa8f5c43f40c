package persistence

import (
	"context"
	"fmt"

	"github.com/erp/fulfillment/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool the auditor needs
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LedgerAuditor checks every ledger row against its batches in one pass,
// including batches whose pair has no ledger row at all.
type LedgerAuditor struct {
	db Querier
}

// NewLedgerAuditor creates a new LedgerAuditor over a pgx pool
func NewLedgerAuditor(db Querier) *LedgerAuditor {
	return &LedgerAuditor{db: db}
}

const auditQuery = `
WITH batch_totals AS (
	SELECT product_id, warehouse_id, COALESCE(SUM(quantity_available), 0) AS batch_available
	FROM purchase_batches
	WHERE status = 'active'
	GROUP BY product_id, warehouse_id
)
SELECT
	COALESCE(i.product_id, b.product_id)     AS product_id,
	COALESCE(i.warehouse_id, b.warehouse_id) AS warehouse_id,
	COALESCE(i.available_stock, 0)           AS available_stock,
	COALESCE(i.reserved_stock, 0)            AS reserved_stock,
	COALESCE(b.batch_available, 0)           AS batch_available
FROM inventory_items i
FULL OUTER JOIN batch_totals b
	ON b.product_id = i.product_id AND b.warehouse_id = i.warehouse_id
ORDER BY 1, 2`

// Audit returns a report for every pair. With onlyDrift set, consistent
// pairs are skipped.
func (a *LedgerAuditor) Audit(ctx context.Context, onlyDrift bool) ([]inventory.ConsistencyReport, error) {
	rows, err := a.db.Query(ctx, auditQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to run ledger audit: %w", err)
	}
	defer rows.Close()

	var reports []inventory.ConsistencyReport
	for rows.Next() {
		var (
			productID, warehouseID     uuid.UUID
			available, reserved, batch int64
		)
		if err := rows.Scan(&productID, &warehouseID, &available, &reserved, &batch); err != nil {
			return nil, fmt.Errorf("failed to scan audit row: %w", err)
		}
		item := &inventory.InventoryItem{
			ProductID:      productID,
			WarehouseID:    warehouseID,
			AvailableStock: available,
			ReservedStock:  reserved,
		}
		report := inventory.NewConsistencyReport(item, batch)
		if onlyDrift && report.Consistent {
			continue
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit rows: %w", err)
	}
	return reports, nil
}
