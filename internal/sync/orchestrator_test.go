package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/veracore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type markCall struct {
	id      int64
	success bool
}

// fakeStore keeps unsynced orders in memory. MarkSynced(true) removes the
// order from the pending set, matching the real repository behavior.
type fakeStore struct {
	pending   []models.WorkOrder
	marks     []markCall
	listErr   error
	markErr   error
	listCalls int
}

func (s *fakeStore) ListPending(ctx context.Context) ([]models.WorkOrder, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.WorkOrder, len(s.pending))
	copy(out, s.pending)
	return out, nil
}

func (s *fakeStore) MarkSynced(ctx context.Context, id int64, success bool) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.marks = append(s.marks, markCall{id: id, success: success})
	if success {
		kept := s.pending[:0]
		for _, o := range s.pending {
			if o.ID != id {
				kept = append(kept, o)
			}
		}
		s.pending = kept
	}
	return nil
}

// fakeSubmitter records every fee request and fails or degrades submissions
// keyed by fee type.
type fakeSubmitter struct {
	requests  []veracore.FeeRequest
	fail      map[string]error
	unverify  map[string]bool
	openCalls int
	openErr   error
}

func (f *fakeSubmitter) SubmitFee(ctx context.Context, req veracore.FeeRequest) (veracore.FeeOutcome, error) {
	f.requests = append(f.requests, req)
	if err := f.fail[req.FeeType]; err != nil {
		return veracore.FeeOutcome{}, err
	}
	out := veracore.FeeOutcome{MatchTier: veracore.MatchExact, Verified: true}
	if f.unverify[req.FeeType] {
		out.Verified = false
		out.VerifyErr = &veracore.VerificationMismatch{Field: "customer", Want: req.CustomerID, Got: "other"}
	}
	return out, nil
}

func (f *fakeSubmitter) OpenDialog(ctx context.Context) (string, error) {
	f.openCalls++
	if f.openErr != nil {
		return "", f.openErr
	}
	return "click", nil
}

func testOrder(id int64) models.WorkOrder {
	return models.WorkOrder{
		ID:               id,
		CustomerID:       "CUS530",
		CustomerName:     "WidgetCo",
		ReferenceNumbers: []string{"REF-100", "REF-101"},
		FeeLines: []models.FeeLine{
			{Type: "RCV - Sorting", Quantity: 3},
			{Type: "PP - Shrink Wrap", Quantity: 1},
		},
		DateCreated: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		Status:      models.StatusPending,
	}
}

func newTestOrchestrator(store Store, fees FeeSubmitter) *Orchestrator {
	o := NewOrchestrator(store, fees, nil, zap.NewNop())
	o.sleep = func(time.Duration) {}
	return o
}

func TestSyncOrder_AllLinesSucceed(t *testing.T) {
	order := testOrder(1)
	store := &fakeStore{pending: []models.WorkOrder{order}}
	fees := &fakeSubmitter{}
	o := newTestOrchestrator(store, fees)

	res, err := o.SyncOrder(context.Background(), &order)
	require.NoError(t, err)

	assert.True(t, res.FullySynced())
	assert.Equal(t, 2, res.Succeeded)
	assert.Zero(t, res.Unverified)

	// lines submitted in insertion order, all on the first reference number
	require.Len(t, fees.requests, 2)
	assert.Equal(t, "RCV - Sorting", fees.requests[0].FeeType)
	assert.Equal(t, 3, fees.requests[0].Quantity)
	assert.Equal(t, "PP - Shrink Wrap", fees.requests[1].FeeType)
	assert.Equal(t, 1, fees.requests[1].Quantity)
	for _, req := range fees.requests {
		assert.Equal(t, "REF-100", req.Reference)
		assert.Equal(t, "CUS530", req.CustomerID)
	}

	// the dialog is reopened between lines, not after the last one
	assert.Equal(t, 1, fees.openCalls)

	// exactly one MarkSynced, and it records full success
	assert.Equal(t, []markCall{{id: 1, success: true}}, store.marks)
	assert.Empty(t, store.pending)
}

func TestSyncOrder_PartialFailureStaysPending(t *testing.T) {
	order := testOrder(1)
	store := &fakeStore{pending: []models.WorkOrder{order}}
	fees := &fakeSubmitter{fail: map[string]error{
		"PP - Shrink Wrap": errors.New("fee window never closed"),
	}}
	o := newTestOrchestrator(store, fees)

	res, err := o.SyncOrder(context.Background(), &order)
	require.NoError(t, err)

	assert.False(t, res.FullySynced())
	assert.Equal(t, 1, res.Succeeded)
	// both lines were attempted despite the failure
	assert.Len(t, fees.requests, 2)

	assert.Equal(t, []markCall{{id: 1, success: false}}, store.marks)
	assert.Len(t, store.pending, 1)
}

func TestSyncOrder_UnverifiedStillCountsSynced(t *testing.T) {
	order := testOrder(1)
	store := &fakeStore{pending: []models.WorkOrder{order}}
	fees := &fakeSubmitter{unverify: map[string]bool{"RCV - Sorting": true}}
	o := newTestOrchestrator(store, fees)

	res, err := o.SyncOrder(context.Background(), &order)
	require.NoError(t, err)

	assert.True(t, res.FullySynced())
	assert.Equal(t, 1, res.Unverified)
	assert.Equal(t, []markCall{{id: 1, success: true}}, store.marks)
}

func TestSyncOrder_IneligibleOrderMarkedFailed(t *testing.T) {
	order := testOrder(1)
	order.FeeLines = nil
	store := &fakeStore{}
	fees := &fakeSubmitter{}
	o := newTestOrchestrator(store, fees)

	res, err := o.SyncOrder(context.Background(), &order)
	require.NoError(t, err)

	assert.False(t, res.FullySynced())
	assert.Empty(t, fees.requests)
	assert.Equal(t, []markCall{{id: 1, success: false}}, store.marks)
}

func TestSyncOrder_UsesFeeDateFallback(t *testing.T) {
	order := testOrder(1)
	feeDate := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	order.FeeDate = &feeDate
	store := &fakeStore{}
	fees := &fakeSubmitter{}
	o := newTestOrchestrator(store, fees)

	_, err := o.SyncOrder(context.Background(), &order)
	require.NoError(t, err)
	assert.Equal(t, feeDate, fees.requests[0].FeeDate)

	order2 := testOrder(2)
	fees2 := &fakeSubmitter{}
	o2 := newTestOrchestrator(&fakeStore{}, fees2)
	_, err = o2.SyncOrder(context.Background(), &order2)
	require.NoError(t, err)
	assert.Equal(t, order2.DateCreated, fees2.requests[0].FeeDate)
}

func TestSyncAllPending_RetryResubmitsAllLines(t *testing.T) {
	store := &fakeStore{pending: []models.WorkOrder{testOrder(1)}}
	fees := &fakeSubmitter{fail: map[string]error{
		"PP - Shrink Wrap": errors.New("fee window never closed"),
	}}
	o := newTestOrchestrator(store, fees)

	summary, err := o.SyncAllPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Orders: 1, Synced: 0}, summary)
	assert.Len(t, store.pending, 1)

	// the next run replays the whole order, including the line that
	// already went through
	fees.fail = nil
	summary, err = o.SyncAllPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Orders: 1, Synced: 1}, summary)
	assert.Empty(t, store.pending)

	types := make([]string, 0, len(fees.requests))
	for _, req := range fees.requests {
		types = append(types, req.FeeType)
	}
	assert.Equal(t, []string{
		"RCV - Sorting", "PP - Shrink Wrap",
		"RCV - Sorting", "PP - Shrink Wrap",
	}, types)
}

func TestSyncAllPending_SequentialOrderProcessing(t *testing.T) {
	store := &fakeStore{pending: []models.WorkOrder{testOrder(1), testOrder(2), testOrder(3)}}
	fees := &fakeSubmitter{}
	o := newTestOrchestrator(store, fees)

	summary, err := o.SyncAllPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, RunSummary{Orders: 3, Synced: 3}, summary)
	require.Len(t, store.marks, 3)
	assert.Equal(t, []markCall{
		{id: 1, success: true},
		{id: 2, success: true},
		{id: 3, success: true},
	}, store.marks)
}

func TestSyncAllPending_CancelledBetweenOrders(t *testing.T) {
	store := &fakeStore{pending: []models.WorkOrder{testOrder(1), testOrder(2)}}
	ctx, cancel := context.WithCancel(context.Background())
	fees := &fakeSubmitter{}
	o := newTestOrchestrator(store, fees)
	// cancel while the first order is in flight
	o.sleep = func(time.Duration) { cancel() }

	summary, err := o.SyncAllPending(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// the first order ran to completion, the second never started
	assert.Equal(t, 1, summary.Synced)
	assert.Len(t, store.marks, 1)
	assert.Len(t, fees.requests, 2)
}

func TestSyncAllPending_ListError(t *testing.T) {
	listErr := errors.New("connection refused")
	store := &fakeStore{listErr: listErr}
	o := newTestOrchestrator(store, &fakeSubmitter{})

	_, err := o.SyncAllPending(context.Background())
	assert.ErrorIs(t, err, listErr)
}

func TestSyncAllPending_MarkSyncedErrorContinues(t *testing.T) {
	store := &fakeStore{pending: []models.WorkOrder{testOrder(1), testOrder(2)}, markErr: errors.New("write failed")}
	fees := &fakeSubmitter{}
	o := newTestOrchestrator(store, fees)

	summary, err := o.SyncAllPending(context.Background())
	require.NoError(t, err)

	// write-back failed for both, so neither counts as synced, but both
	// orders were still attempted
	assert.Equal(t, RunSummary{Orders: 2, Synced: 0}, summary)
	assert.Len(t, fees.requests, 4)
}
