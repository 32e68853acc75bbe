package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertWorkOrderQuery = `
						INSERT INTO work_orders (customer_id, customer_name, reference_numbers, fee_data, fee_date, date_created, barcode_data, status, created_by, notes)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
						RETURNING id
`
	updateBarcodeQuery = `
						UPDATE work_orders
						SET barcode_data = $1
						WHERE id = $2
`
	workOrderColumns = `id, customer_id, customer_name, reference_numbers, fee_data, fee_date, date_created, barcode_data, status, veracore_synced, sync_date, created_by, notes`

	selectWorkOrderByIDQuery = `
						SELECT ` + workOrderColumns + ` FROM work_orders
						WHERE id = $1
`
	selectPendingQuery = `
						SELECT ` + workOrderColumns + ` FROM work_orders
						WHERE veracore_synced = FALSE
						ORDER BY date_created ASC
`
	markSyncedQuery = `
						UPDATE work_orders
						SET veracore_synced = $1, sync_date = $2, status = $3
						WHERE id = $4
`
	updateStatusQuery = `
						UPDATE work_orders
						SET status = $1
						WHERE id = $2
`
	selectSyncStatsQuery = `
						SELECT
							COUNT(*),
							COUNT(*) FILTER (WHERE veracore_synced = TRUE),
							COUNT(*) FILTER (WHERE veracore_synced = FALSE),
							COUNT(*) FILTER (WHERE date_created::date = CURRENT_DATE)
						FROM work_orders
`
	selectRecentSyncsQuery = `
						SELECT id, customer_name, sync_date FROM work_orders
						WHERE veracore_synced = TRUE AND sync_date IS NOT NULL
						ORDER BY sync_date DESC
						LIMIT $1
`
)

// SyncStats are the dashboard counters over all work orders.
type SyncStats struct {
	TotalOrders   int64
	SyncedOrders  int64
	PendingOrders int64
	CreatedToday  int64
}

// RecentSync is one entry of the recent sync activity list.
type RecentSync struct {
	OrderID      int64
	CustomerName string
	SyncDate     time.Time
}

// ListFilter narrows ListWorkOrders results. Zero values mean no filter.
type ListFilter struct {
	Status   string
	Customer string
	From     *time.Time
	To       *time.Time
}

// WorkOrderRepository persists work orders
type WorkOrderRepository struct {
	db *postgres.DB
}

// NewWorkOrderRepository creates new WorkOrderRepository instance
func NewWorkOrderRepository(db *postgres.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// CreateWorkOrder inserts a new work order and assigns its barcode from the
// generated id, mirroring the two-step insert the entry form performs.
func (wr *WorkOrderRepository) CreateWorkOrder(ctx context.Context, order *models.WorkOrder) (*models.WorkOrder, error) {
	refs, err := json.Marshal(order.ReferenceNumbers)
	if err != nil {
		return nil, fmt.Errorf("marshal reference numbers: %w", err)
	}
	fees, err := json.Marshal(order.FeeLines)
	if err != nil {
		return nil, fmt.Errorf("marshal fee lines: %w", err)
	}

	if order.Status == "" {
		order.Status = models.StatusPending
	}

	err = wr.db.QueryRow(ctx, insertWorkOrderQuery,
		order.CustomerID, order.CustomerName, string(refs), string(fees),
		order.FeeDate, order.DateCreated, order.Barcode, order.Status,
		order.CreatedBy, order.Notes,
	).Scan(&order.ID)
	if err != nil {
		return nil, err
	}

	order.Barcode = models.BarcodeFor(order.ID, order.DateCreated)
	if _, err := wr.db.Exec(ctx, updateBarcodeQuery, order.Barcode, order.ID); err != nil {
		return nil, err
	}

	return order, nil
}

// GetWorkOrder returns a work order by id
func (wr *WorkOrderRepository) GetWorkOrder(ctx context.Context, id int64) (*models.WorkOrder, error) {
	row := wr.db.QueryRow(ctx, selectWorkOrderByIDQuery, id)
	order, err := scanWorkOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}
	return order, nil
}

// ListPending returns unsynced work orders, oldest first.
func (wr *WorkOrderRepository) ListPending(ctx context.Context) ([]models.WorkOrder, error) {
	rows, err := wr.db.Query(ctx, selectPendingQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWorkOrders(rows)
}

// MarkSynced records the outcome of a sync run for the order. On success the
// order moves to completed; on failure it stays pending for the next run.
func (wr *WorkOrderRepository) MarkSynced(ctx context.Context, id int64, success bool) error {
	status := models.StatusPending
	if success {
		status = models.StatusCompleted
	}

	cmd, err := wr.db.Exec(ctx, markSyncedQuery, success, time.Now(), status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}
	return nil
}

// UpdateStatus sets the accounting status of a work order.
func (wr *WorkOrderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	cmd, err := wr.db.Exec(ctx, updateStatusQuery, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}
	return nil
}

// ListWorkOrders returns work orders matching the filter, newest first.
func (wr *WorkOrderRepository) ListWorkOrders(ctx context.Context, filter ListFilter) ([]models.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Customer != "" {
		args = append(args, filter.Customer)
		query += fmt.Sprintf(" AND (customer_id = $%d OR customer_name = $%d)", len(args), len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND date_created >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND date_created <= $%d", len(args))
	}
	query += " ORDER BY date_created DESC"

	rows, err := wr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectWorkOrders(rows)
}

// GetSyncStats returns the dashboard counters.
func (wr *WorkOrderRepository) GetSyncStats(ctx context.Context) (*SyncStats, error) {
	stats := SyncStats{}
	err := wr.db.QueryRow(ctx, selectSyncStatsQuery).Scan(
		&stats.TotalOrders, &stats.SyncedOrders, &stats.PendingOrders, &stats.CreatedToday)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetRecentSyncs returns the most recently synced orders, latest first.
func (wr *WorkOrderRepository) GetRecentSyncs(ctx context.Context, limit int) ([]RecentSync, error) {
	rows, err := wr.db.Query(ctx, selectRecentSyncsQuery, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	syncs := []RecentSync{}
	for rows.Next() {
		rs := RecentSync{}
		if err := rows.Scan(&rs.OrderID, &rs.CustomerName, &rs.SyncDate); err != nil {
			return nil, err
		}
		syncs = append(syncs, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return syncs, nil
}

func scanWorkOrder(row pgx.Row) (*models.WorkOrder, error) {
	order := models.WorkOrder{}
	var refs, fees string

	err := row.Scan(&order.ID, &order.CustomerID, &order.CustomerName, &refs, &fees,
		&order.FeeDate, &order.DateCreated, &order.Barcode, &order.Status,
		&order.Synced, &order.SyncDate, &order.CreatedBy, &order.Notes)
	if err != nil {
		return nil, err
	}

	// reference numbers and fee lines are stored as JSON text
	if err := json.Unmarshal([]byte(refs), &order.ReferenceNumbers); err != nil {
		return nil, fmt.Errorf("work order %d: parse reference numbers: %w", order.ID, err)
	}
	if err := json.Unmarshal([]byte(fees), &order.FeeLines); err != nil {
		return nil, fmt.Errorf("work order %d: parse fee lines: %w", order.ID, err)
	}

	return &order, nil
}

func collectWorkOrders(rows pgx.Rows) ([]models.WorkOrder, error) {
	orders := []models.WorkOrder{}
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
