package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/middleware"
	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/repository"
	"github.com/go-chi/chi/v5"
)

// WorkOrderService is interface for work order entry and dashboard reads
type WorkOrderService interface {
	Create(ctx context.Context, order *models.WorkOrder) (*models.WorkOrder, error)
	List(ctx context.Context, filter repository.ListFilter) ([]models.WorkOrder, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Stats(ctx context.Context) (*repository.SyncStats, error)
	RecentSyncs(ctx context.Context, limit int) ([]repository.RecentSync, error)
}

// WorkOrderHandler represents HTTP handler for work-order requests
type WorkOrderHandler struct {
	svc WorkOrderService
}

// NewWorkOrderHandler creates new WorkOrderHandler instance
func NewWorkOrderHandler(svc WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc}
}

type createWorkOrderRequest struct {
	CustomerID       string           `json:"customer_id"`
	CustomerName     string           `json:"customer_name"`
	ReferenceNumbers []string         `json:"reference_numbers"`
	FeeLines         []models.FeeLine `json:"fee_lines"`
	FeeDate          string           `json:"fee_date,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

type workOrderResponse struct {
	ID               int64            `json:"id"`
	CustomerID       string           `json:"customer_id"`
	CustomerName     string           `json:"customer_name"`
	ReferenceNumbers []string         `json:"reference_numbers"`
	FeeLines         []models.FeeLine `json:"fee_lines"`
	FeeDate          string           `json:"fee_date,omitempty"`
	DateCreated      time.Time        `json:"date_created"`
	Barcode          string           `json:"barcode"`
	Status           string           `json:"status"`
	Synced           bool             `json:"synced"`
	SyncDate         *time.Time       `json:"sync_date,omitempty"`
	CreatedBy        string           `json:"created_by"`
	Notes            string           `json:"notes,omitempty"`
}

func toResponse(order *models.WorkOrder) workOrderResponse {
	resp := workOrderResponse{
		ID:               order.ID,
		CustomerID:       order.CustomerID,
		CustomerName:     order.CustomerName,
		ReferenceNumbers: order.ReferenceNumbers,
		FeeLines:         order.FeeLines,
		DateCreated:      order.DateCreated,
		Barcode:          order.Barcode,
		Status:           order.Status,
		Synced:           order.Synced,
		SyncDate:         order.SyncDate,
		CreatedBy:        order.CreatedBy,
		Notes:            order.Notes,
	}
	if order.FeeDate != nil {
		resp.FeeDate = order.FeeDate.Format("2006-01-02")
	}
	return resp
}

// CreateWorkOrder creates a new work order
// 201 — work order created
// 400 — invalid request
// 401 — not authenticated
// 500 — internal error
func (wh *WorkOrderHandler) CreateWorkOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := middleware.AuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createWorkOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		order := models.WorkOrder{
			CustomerID:       req.CustomerID,
			CustomerName:     req.CustomerName,
			ReferenceNumbers: req.ReferenceNumbers,
			FeeLines:         req.FeeLines,
			CreatedBy:        payload.Username,
			Notes:            req.Notes,
		}

		if req.FeeDate != "" {
			fd, err := time.Parse("2006-01-02", req.FeeDate)
			if err != nil {
				http.Error(w, "invalid fee date", http.StatusBadRequest)
				return
			}
			order.FeeDate = &fd
		}

		created, err := wh.svc.Create(r.Context(), &order)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrMissingCustomer),
				errors.Is(err, models.ErrNoReferences),
				errors.Is(err, models.ErrNoFeeLines),
				errors.Is(err, models.ErrInvalidQuantity):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(toResponse(created))
	}
}

// ListWorkOrders lists work orders with optional status/customer/date filters
func (wh *WorkOrderHandler) ListWorkOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := repository.ListFilter{
			Status:   r.URL.Query().Get("status"),
			Customer: r.URL.Query().Get("customer"),
		}

		if from := r.URL.Query().Get("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				http.Error(w, "invalid from date", http.StatusBadRequest)
				return
			}
			filter.From = &t
		}
		if to := r.URL.Query().Get("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				http.Error(w, "invalid to date", http.StatusBadRequest)
				return
			}
			filter.To = &t
		}

		orders, err := wh.svc.List(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]workOrderResponse, 0, len(orders))
		for i := range orders {
			resp = append(resp, toResponse(&orders[i]))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// UpdateStatus applies an accounting status override
// 200 — status updated
// 400 — unknown status
// 404 — no such work order
func (wh *WorkOrderHandler) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := wh.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
			switch {
			case errors.Is(err, models.ErrInvalidStatus):
				http.Error(w, "unknown status", http.StatusBadRequest)
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// GetStats returns the dashboard counters
func (wh *WorkOrderHandler) GetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := wh.svc.Stats(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := struct {
			TotalOrders   int64 `json:"total_orders"`
			SyncedOrders  int64 `json:"synced_orders"`
			PendingOrders int64 `json:"pending_orders"`
			CreatedToday  int64 `json:"created_today"`
		}{stats.TotalOrders, stats.SyncedOrders, stats.PendingOrders, stats.CreatedToday}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

// GetRecentSyncs returns the latest successfully synced orders
func (wh *WorkOrderHandler) GetRecentSyncs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 5
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}
			limit = n
		}

		syncs, err := wh.svc.RecentSyncs(r.Context(), limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		type recentSync struct {
			OrderID      int64     `json:"order_id"`
			CustomerName string    `json:"customer_name"`
			SyncDate     time.Time `json:"sync_date"`
		}
		resp := make([]recentSync, 0, len(syncs))
		for _, s := range syncs {
			resp = append(resp, recentSync{s.OrderID, s.CustomerName, s.SyncDate})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
