// Package sync replays pending work orders into Veracore, one order and one
// fee line at a time. The browser session is a single shared cursor of
// focus, so nothing here runs concurrently.
package sync

import (
	"context"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/metrics"
	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/veracore"
	"go.uber.org/zap"
)

const (
	interFeePause   = 1 * time.Second
	interOrderPause = 2 * time.Second
)

// Store is the work order persistence the orchestrator depends on.
type Store interface {
	// ListPending returns unsynced work orders, oldest first.
	ListPending(ctx context.Context) ([]models.WorkOrder, error)
	// MarkSynced records the sync outcome of the whole order.
	MarkSynced(ctx context.Context, id int64, success bool) error
}

// FeeSubmitter enters a single fee line into the external system.
type FeeSubmitter interface {
	SubmitFee(ctx context.Context, req veracore.FeeRequest) (veracore.FeeOutcome, error)
	OpenDialog(ctx context.Context) (string, error)
}

// OrderSyncResult aggregates the fee line outcomes of one order.
type OrderSyncResult struct {
	Attempted  int
	Succeeded  int
	Unverified int
}

// FullySynced reports whether every fee line of the order went through.
func (r OrderSyncResult) FullySynced() bool {
	return r.Attempted > 0 && r.Succeeded == r.Attempted
}

// RunSummary is the final count of a sync run.
type RunSummary struct {
	Orders int
	Synced int
}

// Orchestrator iterates pending work orders and drives the fee submitter
// once per fee line.
type Orchestrator struct {
	store  Store
	fees   FeeSubmitter
	events Events
	log    *zap.Logger
	sleep  func(time.Duration)
}

// NewOrchestrator creates new Orchestrator instance
func NewOrchestrator(store Store, fees FeeSubmitter, events Events, log *zap.Logger) *Orchestrator {
	if events == nil {
		events = NewLogEvents(log)
	}
	return &Orchestrator{
		store:  store,
		fees:   fees,
		events: events,
		log:    log,
		sleep:  time.Sleep,
	}
}

// SyncOrder replays every fee line of the order in insertion order, each
// using the order's first reference number, then records the outcome with
// exactly one MarkSynced call: true iff all lines succeeded. A partially
// failed order stays pending; a later run resubmits all of its fee lines,
// including ones that already went through.
func (o *Orchestrator) SyncOrder(ctx context.Context, order *models.WorkOrder) (OrderSyncResult, error) {
	res := OrderSyncResult{Attempted: len(order.FeeLines)}

	if err := order.SyncEligible(); err != nil {
		o.log.Error("work order not eligible for sync",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return res, o.store.MarkSynced(ctx, order.ID, false)
	}

	reference := order.ReferenceNumbers[0]
	feeDate := order.EffectiveFeeDate()
	total := len(order.FeeLines)

	for i, fl := range order.FeeLines {
		req := veracore.FeeRequest{
			FeeType:    fl.Type,
			Quantity:   fl.Quantity,
			Reference:  reference,
			FeeDate:    feeDate,
			CustomerID: order.CustomerID,
		}

		out, err := o.fees.SubmitFee(ctx, req)
		o.events.FeeAttempted(order, i+1, total, out, err)

		switch {
		case err != nil:
			metrics.FeeSubmissions.WithLabelValues(metrics.ResultFailed).Inc()
		case !out.Verified:
			res.Succeeded++
			res.Unverified++
			metrics.FeeSubmissions.WithLabelValues(metrics.ResultUnverified).Inc()
		default:
			res.Succeeded++
			metrics.FeeSubmissions.WithLabelValues(metrics.ResultSuccess).Inc()
		}

		o.sleep(interFeePause)

		// reopen the fee window so the next line starts from an open dialog
		if err == nil && i < total-1 {
			if _, reopenErr := o.fees.OpenDialog(ctx); reopenErr != nil {
				o.log.Warn("fee window reopen failed",
					zap.Int64("order_id", order.ID),
					zap.Error(reopenErr))
			}
		}
	}

	success := res.FullySynced()
	if success {
		metrics.OrdersSynced.WithLabelValues(metrics.OrderFull).Inc()
	} else {
		metrics.OrdersSynced.WithLabelValues(metrics.OrderPartial).Inc()
	}

	if err := o.store.MarkSynced(ctx, order.ID, success); err != nil {
		return res, err
	}

	o.events.OrderFinished(order, res)
	return res, nil
}

// SyncAllPending processes the pending set strictly sequentially with a
// pause between orders. Cancellation is honored between orders only; a fee
// submission in flight always runs to completion or failure.
func (o *Orchestrator) SyncAllPending(ctx context.Context) (RunSummary, error) {
	orders, err := o.store.ListPending(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{Orders: len(orders)}
	total := len(orders)

	for i := range orders {
		select {
		case <-ctx.Done():
			o.events.RunFinished(summary)
			return summary, ctx.Err()
		default:
		}

		order := &orders[i]
		o.events.OrderStarted(i+1, total, order)

		res, err := o.SyncOrder(ctx, order)
		if err != nil {
			o.log.Error("sync status write-back failed",
				zap.Int64("order_id", order.ID),
				zap.Error(err))
			continue
		}
		if res.FullySynced() {
			summary.Synced++
		}

		o.sleep(interOrderPause)
	}

	o.events.RunFinished(summary)
	return summary, nil
}
