package sync

import (
	"context"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/browser"
	"github.com/3PLWinner/veracore-sync/internal/veracore"
	"go.uber.org/zap"
)

// SessionFactory opens a fresh browser session for one sync run.
type SessionFactory func(ctx context.Context) (browser.Session, error)

// Runner executes full login-then-sync-all cycles. Each cycle owns its
// browser session exclusively and releases it on every exit path.
type Runner struct {
	store      Store
	newSession SessionFactory
	creds      veracore.Credentials
	logDir     string
	interval   time.Duration
	events     Events
	log        *zap.Logger
}

// NewRunner creates new Runner instance. A non-positive interval makes Run
// perform a single cycle.
func NewRunner(store Store, newSession SessionFactory, creds veracore.Credentials, logDir string, interval time.Duration, log *zap.Logger) *Runner {
	return &Runner{
		store:      store,
		newSession: newSession,
		creds:      creds,
		logDir:     logDir,
		interval:   interval,
		events:     NewLogEvents(log),
		log:        log,
	}
}

// Run executes sync cycles until the context is cancelled. In loop mode a
// failed cycle is logged and the next tick starts over with a new session.
func (r *Runner) Run(ctx context.Context) error {
	if r.interval <= 0 {
		return r.RunOnce(ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Error("sync cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			r.log.Info("sync runner stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs one full cycle: check for pending orders, open a browser
// session, authenticate, replay everything pending, tear the session down.
func (r *Runner) RunOnce(ctx context.Context) error {
	// skip the browser launch entirely when there is nothing to sync
	pending, err := r.store.ListPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		r.log.Info("no pending work orders to sync")
		return nil
	}
	r.log.Info("starting sync cycle", zap.Int("pending_orders", len(pending)))

	sess, err := r.newSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			r.log.Warn("browser session close failed", zap.Error(err))
		}
	}()

	ctrl := veracore.NewSessionController(sess, r.creds, r.log)
	if err := ctrl.Connect(ctx); err != nil {
		// no session, nothing downstream is attempted
		return err
	}

	fees := veracore.NewFeeEntry(sess, r.logDir, r.log)
	orch := NewOrchestrator(r.store, fees, r.events, r.log)

	_, err = orch.SyncAllPending(ctx)
	return err
}
