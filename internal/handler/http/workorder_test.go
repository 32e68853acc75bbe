package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/middleware"
	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkOrderService struct {
	created    *models.WorkOrder
	listFilter repository.ListFilter
	listResult []models.WorkOrder
	statusID   int64
	statusSet  string
	statusErr  error
}

func (s *fakeWorkOrderService) Create(ctx context.Context, order *models.WorkOrder) (*models.WorkOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	order.ID = 1
	order.Status = models.StatusPending
	order.DateCreated = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	order.Barcode = models.BarcodeFor(order.ID, order.DateCreated)
	s.created = order
	return order, nil
}

func (s *fakeWorkOrderService) List(ctx context.Context, filter repository.ListFilter) ([]models.WorkOrder, error) {
	s.listFilter = filter
	return s.listResult, nil
}

func (s *fakeWorkOrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statusID, s.statusSet = id, status
	return nil
}

func (s *fakeWorkOrderService) Stats(ctx context.Context) (*repository.SyncStats, error) {
	return &repository.SyncStats{TotalOrders: 10, SyncedOrders: 7, PendingOrders: 3, CreatedToday: 2}, nil
}

func (s *fakeWorkOrderService) RecentSyncs(ctx context.Context, limit int) ([]repository.RecentSync, error) {
	return []repository.RecentSync{
		{OrderID: 9, CustomerName: "WidgetCo", SyncDate: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)},
	}, nil
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithAuthPayload(req.Context(), &models.TokenPayload{
		UserID: 1, Username: "alice", Role: models.RoleWorker,
	})
	return req.WithContext(ctx)
}

func TestCreateWorkOrder(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		authed   bool
		wantCode int
	}{
		{
			name: "created",
			body: `{"customer_id":"CUS530","customer_name":"WidgetCo",
				"reference_numbers":["REF-100"],
				"fee_lines":[{"type":"RCV - Sorting","quantity":3}],
				"fee_date":"2025-06-15"}`,
			authed:   true,
			wantCode: http.StatusCreated,
		},
		{
			name:     "missing customer",
			body:     `{"reference_numbers":["REF-100"],"fee_lines":[{"type":"RCV - Sorting","quantity":3}]}`,
			authed:   true,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero quantity",
			body:     `{"customer_id":"CUS530","reference_numbers":["REF-100"],"fee_lines":[{"type":"RCV - Sorting","quantity":0}]}`,
			authed:   true,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad fee date",
			body:     `{"customer_id":"CUS530","reference_numbers":["REF-100"],"fee_lines":[{"type":"RCV - Sorting","quantity":3}],"fee_date":"06/15/2025"}`,
			authed:   true,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed json",
			body:     `{"customer_id":`,
			authed:   true,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unauthenticated",
			body:     `{}`,
			authed:   false,
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWorkOrderService{}
			wh := NewWorkOrderHandler(svc)

			var req *http.Request
			if tt.authed {
				req = authedRequest(http.MethodPost, "/api/workorders", tt.body)
			} else {
				req = httptest.NewRequest(http.MethodPost, "/api/workorders", strings.NewReader(tt.body))
			}
			w := httptest.NewRecorder()

			wh.CreateWorkOrder()(w, req)
			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantCode == http.StatusCreated {
				var resp workOrderResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, int64(1), resp.ID)
				assert.Equal(t, "CUS530", resp.CustomerID)
				assert.Equal(t, "2025-06-15", resp.FeeDate)
				assert.Equal(t, models.StatusPending, resp.Status)
				assert.NotEmpty(t, resp.Barcode)
				// the creator is taken from the auth token, not the body
				assert.Equal(t, "alice", svc.created.CreatedBy)
			}
		})
	}
}

func TestListWorkOrders_Filters(t *testing.T) {
	svc := &fakeWorkOrderService{}
	wh := NewWorkOrderHandler(svc)

	req := authedRequest(http.MethodGet, "/api/workorders?status=pending&customer=CUS530&from=2025-06-01&to=2025-06-30", "")
	w := httptest.NewRecorder()
	wh.ListWorkOrders()(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusPending, svc.listFilter.Status)
	assert.Equal(t, "CUS530", svc.listFilter.Customer)
	require.NotNil(t, svc.listFilter.From)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), *svc.listFilter.From)
	require.NotNil(t, svc.listFilter.To)
}

func TestListWorkOrders_BadDate(t *testing.T) {
	wh := NewWorkOrderHandler(&fakeWorkOrderService{})

	req := authedRequest(http.MethodGet, "/api/workorders?from=June+1st", "")
	w := httptest.NewRecorder()
	wh.ListWorkOrders()(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		body     string
		err      error
		wantCode int
	}{
		{"updated", "5", `{"status":"billed"}`, nil, http.StatusOK},
		{"unknown status", "5", `{"status":"shipped"}`, models.ErrInvalidStatus, http.StatusBadRequest},
		{"not found", "99", `{"status":"billed"}`, models.ErrDataNotFound, http.StatusNotFound},
		{"bad id", "abc", `{"status":"billed"}`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeWorkOrderService{statusErr: tt.err}
			wh := NewWorkOrderHandler(svc)

			r := chi.NewRouter()
			r.Patch("/api/workorders/{id}/status", wh.UpdateStatus())

			req := authedRequest(http.MethodPatch, "/api/workorders/"+tt.id+"/status", tt.body)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, int64(5), svc.statusID)
				assert.Equal(t, models.StatusBilled, svc.statusSet)
			}
		})
	}
}

func TestGetStats(t *testing.T) {
	wh := NewWorkOrderHandler(&fakeWorkOrderService{})

	req := authedRequest(http.MethodGet, "/api/workorders/stats", "")
	w := httptest.NewRecorder()
	wh.GetStats()(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_orders":10,"synced_orders":7,"pending_orders":3,"created_today":2}`, w.Body.String())
}

func TestGetRecentSyncs(t *testing.T) {
	wh := NewWorkOrderHandler(&fakeWorkOrderService{})

	req := authedRequest(http.MethodGet, "/api/workorders/syncs", "")
	w := httptest.NewRecorder()
	wh.GetRecentSyncs()(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []struct {
		OrderID      int64  `json:"order_id"`
		CustomerName string `json:"customer_name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(9), resp[0].OrderID)
	assert.Equal(t, "WidgetCo", resp[0].CustomerName)

	badReq := authedRequest(http.MethodGet, "/api/workorders/syncs?limit=-1", "")
	badW := httptest.NewRecorder()
	wh.GetRecentSyncs()(badW, badReq)
	assert.Equal(t, http.StatusBadRequest, badW.Code)
}
