package sync

import (
	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/veracore"
	"go.uber.org/zap"
)

// Events receives per-step progress of a sync run. Failure events carry the
// match tier and strategy provenance; that content is the only signal that a
// degraded first-row match occurred.
type Events interface {
	OrderStarted(index, total int, order *models.WorkOrder)
	FeeAttempted(order *models.WorkOrder, index, total int, outcome veracore.FeeOutcome, err error)
	OrderFinished(order *models.WorkOrder, result OrderSyncResult)
	RunFinished(summary RunSummary)
}

// LogEvents reports progress through the structured log.
type LogEvents struct {
	log *zap.Logger
}

var _ Events = (*LogEvents)(nil)

// NewLogEvents creates new LogEvents instance
func NewLogEvents(log *zap.Logger) *LogEvents {
	return &LogEvents{log: log}
}

func (e *LogEvents) OrderStarted(index, total int, order *models.WorkOrder) {
	e.log.Info("processing work order",
		zap.Int("order_index", index),
		zap.Int("order_total", total),
		zap.Int64("order_id", order.ID),
		zap.String("customer", order.CustomerName),
		zap.Int("fee_lines", len(order.FeeLines)))
}

func (e *LogEvents) FeeAttempted(order *models.WorkOrder, index, total int, outcome veracore.FeeOutcome, err error) {
	fields := []zap.Field{
		zap.Int64("order_id", order.ID),
		zap.Int("fee_index", index),
		zap.Int("fee_total", total),
		zap.String("match_tier", outcome.MatchTier.String()),
	}
	if outcome.OpenStrategy != "" {
		fields = append(fields, zap.String("open_strategy", outcome.OpenStrategy))
	}
	if outcome.QuantityStrategy != "" {
		fields = append(fields, zap.String("quantity_strategy", outcome.QuantityStrategy))
	}

	if err != nil {
		fields = append(fields, zap.Error(err))
		e.log.Error("fee line failed", fields...)
		return
	}
	if !outcome.Verified {
		fields = append(fields, zap.Error(outcome.VerifyErr))
		e.log.Warn("fee line submitted unverified", fields...)
		return
	}
	e.log.Info("fee line synced", fields...)
}

func (e *LogEvents) OrderFinished(order *models.WorkOrder, result OrderSyncResult) {
	if result.FullySynced() {
		e.log.Info("work order fully synced",
			zap.Int64("order_id", order.ID),
			zap.Int("fees", result.Succeeded),
			zap.Int("unverified", result.Unverified))
		return
	}
	e.log.Warn("work order partially synced, left pending",
		zap.Int64("order_id", order.ID),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("attempted", result.Attempted))
}

func (e *LogEvents) RunFinished(summary RunSummary) {
	e.log.Info("sync run complete",
		zap.Int("orders_attempted", summary.Orders),
		zap.Int("orders_synced", summary.Synced))
}
