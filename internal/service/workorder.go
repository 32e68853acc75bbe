package service

import (
	"context"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/repository"
)

// WorkOrderRepository is interface for interacting with work-order data
type WorkOrderRepository interface {
	CreateWorkOrder(ctx context.Context, order *models.WorkOrder) (*models.WorkOrder, error)
	GetWorkOrder(ctx context.Context, id int64) (*models.WorkOrder, error)
	ListWorkOrders(ctx context.Context, filter repository.ListFilter) ([]models.WorkOrder, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	GetSyncStats(ctx context.Context) (*repository.SyncStats, error)
	GetRecentSyncs(ctx context.Context, limit int) ([]repository.RecentSync, error)
}

// WorkOrderService implements work order entry and dashboard reads
type WorkOrderService struct {
	repo WorkOrderRepository
	now  func() time.Time
}

// NewWorkOrderService creates new WorkOrderService instance
func NewWorkOrderService(repo WorkOrderRepository) *WorkOrderService {
	return &WorkOrderService{repo: repo, now: time.Now}
}

// Create validates and stores a new work order in pending, unsynced state.
func (ws *WorkOrderService) Create(ctx context.Context, order *models.WorkOrder) (*models.WorkOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	order.DateCreated = ws.now()
	order.Status = models.StatusPending
	order.Synced = false

	return ws.repo.CreateWorkOrder(ctx, order)
}

// List returns work orders matching the filter, newest first.
func (ws *WorkOrderService) List(ctx context.Context, filter repository.ListFilter) ([]models.WorkOrder, error) {
	return ws.repo.ListWorkOrders(ctx, filter)
}

// UpdateStatus applies an accounting status override.
func (ws *WorkOrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !models.ValidStatus(status) {
		return models.ErrInvalidStatus
	}
	return ws.repo.UpdateStatus(ctx, id, status)
}

// Stats returns the dashboard counters.
func (ws *WorkOrderService) Stats(ctx context.Context) (*repository.SyncStats, error) {
	return ws.repo.GetSyncStats(ctx)
}

// RecentSyncs returns the latest successfully synced orders.
func (ws *WorkOrderService) RecentSyncs(ctx context.Context, limit int) ([]repository.RecentSync, error) {
	if limit <= 0 {
		limit = 5
	}
	return ws.repo.GetRecentSyncs(ctx, limit)
}
