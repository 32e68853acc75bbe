package veracore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/browser"
	"github.com/3PLWinner/veracore-sync/internal/metrics"
	"go.uber.org/zap"
)

// The in-dialog delays below are a hard external timing constraint: the fee
// search widget filters server-side per keystroke and drops input that
// arrives too fast or is pasted atomically.
const (
	searchKeyDelay   = 150 * time.Millisecond
	searchSettle     = 1500 * time.Millisecond
	rowSettle        = 3 * time.Second
	customerKeyDelay = 100 * time.Millisecond
	customerSettle   = 2 * time.Second
	dialogSettle     = 3 * time.Second

	// the fee search widget only ever receives this many characters
	searchPrefixLen = 15
)

// MatchTier identifies which disambiguation tier selected the fee row.
type MatchTier int

const (
	MatchNone MatchTier = iota
	// MatchExact means the row label equaled the full fee type.
	MatchExact
	// MatchPrefix means the row label contained the typed search prefix.
	MatchPrefix
	// MatchFirstRow means the first grid row was taken unconditionally.
	// This can select the wrong fee; it is always logged and metered.
	MatchFirstRow
)

func (t MatchTier) String() string {
	switch t {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchFirstRow:
		return "first_row"
	default:
		return "none"
	}
}

// FeeRequest is one fee line to enter into the accessorial fee window.
type FeeRequest struct {
	FeeType    string
	Quantity   int
	Reference  string
	FeeDate    time.Time
	CustomerID string
}

// FeeOutcome reports how a submission went: which strategies fired, which
// match tier selected the fee row, and whether the customer field read-back
// verified. A nil error with Verified=false means the fee was submitted but
// the customer entry could not be confirmed.
type FeeOutcome struct {
	MatchTier        MatchTier
	Verified         bool
	OpenStrategy     string
	QuantityStrategy string
	VerifyErr        error
}

// FeeEntry drives the accessorial fee window. Field order is fixed and
// load-bearing: fee type, customer, date, quantity, reference. The window
// shifts focus depending on which fields are populated, and out-of-order
// entry lands text in the wrong control.
type FeeEntry struct {
	sess     browser.Session
	logDir   string
	timeouts Timeouts
	sleep    func(time.Duration)
	now      func() time.Time
	log      *zap.Logger
}

// NewFeeEntry creates new FeeEntry instance. Failure screenshots are written
// to logDir.
func NewFeeEntry(sess browser.Session, logDir string, log *zap.Logger) *FeeEntry {
	return &FeeEntry{
		sess:     sess,
		logDir:   logDir,
		timeouts: DefaultTimeouts(),
		sleep:    time.Sleep,
		now:      time.Now,
		log:      log,
	}
}

// SubmitFee enters one fee line and confirms the window closed. There is no
// automatic retry: a failure is reported to the caller and counted there.
// On any failure a diagnostic screenshot is saved before returning.
func (f *FeeEntry) SubmitFee(ctx context.Context, req FeeRequest) (FeeOutcome, error) {
	out := FeeOutcome{}

	err := f.submit(ctx, req, &out)
	if err != nil {
		f.log.Error("fee submission failed",
			zap.String("fee_type", req.FeeType),
			zap.String("customer", req.CustomerID),
			zap.Error(err))
		f.captureFailure(ctx)
		return out, err
	}

	f.log.Info("fee submitted",
		zap.String("fee_type", req.FeeType),
		zap.Int("quantity", req.Quantity),
		zap.String("customer", req.CustomerID),
		zap.String("match_tier", out.MatchTier.String()),
		zap.Bool("verified", out.Verified))

	return out, nil
}

func (f *FeeEntry) submit(ctx context.Context, req FeeRequest, out *FeeOutcome) error {
	if err := f.ensureDialog(ctx, out); err != nil {
		return err
	}

	if err := f.searchFeeType(ctx, req.FeeType); err != nil {
		return &FeeSubmissionError{Step: "search", Err: err}
	}

	if err := f.selectFeeRow(ctx, req.FeeType, out); err != nil {
		return &FeeSubmissionError{Step: "disambiguation", Err: err}
	}

	if err := f.fillCustomer(ctx, req.CustomerID, out); err != nil {
		return &FeeSubmissionError{Step: "customer", Err: err}
	}

	if err := f.fillDate(ctx, req.FeeDate); err != nil {
		return &FeeSubmissionError{Step: "date", Err: err}
	}

	if err := f.fillQuantity(ctx, req.Quantity, out); err != nil {
		return &FeeSubmissionError{Step: "quantity", Err: err}
	}

	if err := f.fillReference(ctx, req.Reference); err != nil {
		return &FeeSubmissionError{Step: "reference", Err: err}
	}

	return f.confirmSubmit(ctx)
}

// OpenDialog opens the accessorial fee window, reporting which click
// strategy succeeded. Used to reopen the window between fee lines.
func (f *FeeEntry) OpenDialog(ctx context.Context) (string, error) {
	return openFeeWindow(ctx, f.sess, f.log, f.sleep, f.timeouts)
}

// ensureDialog verifies the fee window is present and displayed, reopening
// it if not.
func (f *FeeEntry) ensureDialog(ctx context.Context, out *FeeOutcome) error {
	if err := f.sess.WaitVisible(ctx, selFeeWindow, 2*time.Second); err == nil {
		return nil
	}

	name, err := openFeeWindow(ctx, f.sess, f.log, f.sleep, f.timeouts)
	if err != nil {
		return err
	}
	out.OpenStrategy = name

	if err := f.sess.WaitVisible(ctx, selFeeWindow, f.timeouts.Dialog); err != nil {
		return &DialogOpenError{Err: err}
	}
	return nil
}

func openFeeWindow(ctx context.Context, sess browser.Session, log *zap.Logger, sleep func(time.Duration), timeouts Timeouts) (string, error) {
	// a loading mask that outlives its timeout blocks every click below
	if err := sess.WaitGone(ctx, selLoadingMask, timeouts.Dialog); err != nil {
		return "", &DialogOpenError{Err: fmt.Errorf("loading mask still present: %w", err)}
	}

	if err := sess.WaitVisible(ctx, selAccFeeBtn, timeouts.Landmark); err != nil {
		return "", &DialogOpenError{Err: err}
	}

	name, err := applyStrategies(ctx, log, "open fee window", []strategy{
		{name: "click", run: func(ctx context.Context) error {
			return sess.Click(ctx, selAccFeeBtn, timeouts.Dialog)
		}},
		{name: "script_click", run: func(ctx context.Context) error {
			return sess.ClickScript(ctx, selAccFeeBtn)
		}},
		{name: "pointer_click", run: func(ctx context.Context) error {
			return sess.ClickPointer(ctx, selAccFeeBtn)
		}},
	})
	if err != nil {
		return "", &DialogOpenError{Err: err}
	}

	sleep(dialogSettle)
	return name, nil
}

// searchPrefix truncates the fee type to the widget's search input length.
func searchPrefix(feeType string) string {
	r := []rune(feeType)
	if len(r) > searchPrefixLen {
		r = r[:searchPrefixLen]
	}
	return string(r)
}

func (f *FeeEntry) searchFeeType(ctx context.Context, feeType string) error {
	if err := f.sess.Click(ctx, selFeeSearchBox, f.timeouts.Dialog); err != nil {
		return err
	}
	if err := f.sess.Clear(ctx, selFeeSearchBox); err != nil {
		return err
	}

	// typed one character at a time; see the delay note at the top of the file
	for _, ch := range searchPrefix(feeType) {
		if err := f.sess.SendKeys(ctx, selFeeSearchBox, string(ch)); err != nil {
			return err
		}
		f.sleep(searchKeyDelay)
	}

	f.sleep(searchSettle)
	return nil
}

// selectFeeRow picks a row from the search results: exact label match, then
// prefix match, then the first row unconditionally. The first-row tier can
// pick the wrong fee, so it is logged at Warn and metered separately.
func (f *FeeEntry) selectFeeRow(ctx context.Context, feeType string, out *FeeOutcome) error {
	prefix := searchPrefix(feeType)

	tiers := []struct {
		tier MatchTier
		sel  string
	}{
		{MatchExact, selFeeRowExact(feeType)},
		{MatchPrefix, selFeeRowPrefix(prefix)},
		{MatchFirstRow, selFirstFeeRow},
	}

	var lastErr error
	for _, t := range tiers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := f.sess.Click(ctx, t.sel, f.timeouts.Dialog); err != nil {
			lastErr = err
			continue
		}

		out.MatchTier = t.tier
		metrics.FeeMatchTier.WithLabelValues(t.tier.String()).Inc()

		if t.tier == MatchFirstRow {
			f.log.Warn("fee type matched by first-row fallback, selection unchecked",
				zap.String("fee_type", feeType),
				zap.String("search_prefix", prefix))
		} else {
			f.log.Debug("fee type matched",
				zap.String("fee_type", feeType),
				zap.String("match_tier", t.tier.String()))
		}

		f.sleep(rowSettle)
		return nil
	}

	return fmt.Errorf("no fee row matched %q: %w", feeType, lastErr)
}

// fillCustomer types the customer id into the system combo and verifies it
// by reading the field back. A mismatch flags the outcome unverified but
// does not abort the submission.
func (f *FeeEntry) fillCustomer(ctx context.Context, customerID string, out *FeeOutcome) error {
	if err := f.sess.WaitVisible(ctx, selCustomerCombo, f.timeouts.Dialog); err != nil {
		return err
	}
	if err := f.sess.Clear(ctx, selCustomerCombo); err != nil {
		return err
	}

	for _, ch := range customerID {
		if err := f.sess.SendKeys(ctx, selCustomerCombo, string(ch)); err != nil {
			return err
		}
		f.sleep(customerKeyDelay)
	}
	f.sleep(customerSettle)

	// pick the top suggestion
	if err := f.sess.SendKeys(ctx, selCustomerCombo, browser.KeyDown); err != nil {
		return err
	}
	f.sleep(300 * time.Millisecond)
	if err := f.sess.SendKeys(ctx, selCustomerCombo, browser.KeyEnter); err != nil {
		return err
	}
	f.sleep(500 * time.Millisecond)

	val, err := f.sess.Value(ctx, selCustomerCombo)
	if err != nil {
		return err
	}
	if !strings.Contains(val, customerID) {
		out.Verified = false
		out.VerifyErr = &VerificationMismatch{Field: "customer", Want: customerID, Got: val}
		f.log.Warn("customer entry unverified",
			zap.String("customer", customerID),
			zap.String("field_value", val))
		return nil
	}

	out.Verified = true
	return nil
}

func (f *FeeEntry) fillDate(ctx context.Context, feeDate time.Time) error {
	dateStr := feeDate.Format("01/02/2006")

	if err := f.sess.WaitVisible(ctx, selDateField, f.timeouts.Dialog); err != nil {
		return err
	}
	if err := f.sess.Click(ctx, selDateField, f.timeouts.Dialog); err != nil {
		return err
	}
	if err := f.sess.Clear(ctx, selDateField); err != nil {
		return err
	}
	f.sleep(200 * time.Millisecond)
	if err := f.sess.SendKeys(ctx, selDateField, dateStr); err != nil {
		return err
	}
	if err := f.sess.SendKeys(ctx, selDateField, browser.KeyTab); err != nil {
		return err
	}
	f.sleep(200 * time.Millisecond)
	if err := f.sess.SendKeys(ctx, selDateField, browser.KeyTab); err != nil {
		return err
	}
	f.sleep(500 * time.Millisecond)
	return nil
}

// fillQuantity locates the quantity spinner, whose id is regenerated per
// dialog instance, via an ordered fallback: id pattern, ARIA role, then the
// currently focused element.
func (f *FeeEntry) fillQuantity(ctx context.Context, quantity int, out *FeeOutcome) error {
	name, sel, err := applyLocate(ctx, f.log, "quantity field", []locateStrategy{
		{name: "id_pattern", locate: func(ctx context.Context) (string, error) {
			if err := f.sess.Click(ctx, selQtyByID, f.timeouts.Dialog); err != nil {
				return "", err
			}
			return selQtyByID, nil
		}},
		{name: "spinbutton_role", locate: func(ctx context.Context) (string, error) {
			if err := f.sess.Click(ctx, selQtyByRole, f.timeouts.Dialog); err != nil {
				return "", err
			}
			return selQtyByRole, nil
		}},
		{name: "focused", locate: func(ctx context.Context) (string, error) {
			// focus lands on the quantity field after row selection
			return "", nil
		}},
	})
	if err != nil {
		return err
	}
	out.QuantityStrategy = name

	f.sleep(200 * time.Millisecond)

	qty := strconv.Itoa(quantity)
	if sel != "" {
		if err := f.sess.Clear(ctx, sel); err != nil {
			return err
		}
		f.sleep(100 * time.Millisecond)
		if err := f.sess.SendKeys(ctx, sel, qty); err != nil {
			return err
		}
		f.sleep(100 * time.Millisecond)
		if err := f.sess.SendKeys(ctx, sel, browser.KeyTab); err != nil {
			return err
		}
	} else {
		if err := f.sess.KeyActive(ctx, qty); err != nil {
			return err
		}
		f.sleep(100 * time.Millisecond)
		if err := f.sess.KeyActive(ctx, browser.KeyTab); err != nil {
			return err
		}
	}

	f.sleep(200 * time.Millisecond)
	return nil
}

// fillReference types into whatever control holds focus after the quantity
// tab transition.
func (f *FeeEntry) fillReference(ctx context.Context, reference string) error {
	if err := f.sess.KeyActive(ctx, reference); err != nil {
		return err
	}
	f.sleep(100 * time.Millisecond)
	return nil
}

// confirmSubmit tabs off the reference field, confirms with Enter on the
// focused control, then requires the fee window to disappear.
func (f *FeeEntry) confirmSubmit(ctx context.Context) error {
	if err := f.sess.KeyActive(ctx, browser.KeyTab); err != nil {
		return &FeeSubmissionError{Step: "submit", Err: err}
	}
	f.sleep(100 * time.Millisecond)
	if err := f.sess.KeyActive(ctx, browser.KeyEnter); err != nil {
		return &FeeSubmissionError{Step: "submit", Err: err}
	}

	if err := f.sess.WaitGone(ctx, selFeeWindow, f.timeouts.Confirm); err != nil {
		return &FeeSubmissionError{Step: "confirm", Err: err}
	}

	f.sleep(1 * time.Second)
	return nil
}

// captureFailure saves a diagnostic screenshot for manual inspection. It is
// a recovery aid, not a retry mechanism; capture errors are only logged.
func (f *FeeEntry) captureFailure(ctx context.Context) {
	png, err := f.sess.Screenshot(ctx)
	if err != nil {
		f.log.Warn("failure screenshot capture failed", zap.Error(err))
		return
	}

	if err := os.MkdirAll(f.logDir, 0o755); err != nil {
		f.log.Warn("create log dir", zap.Error(err))
		return
	}

	name := fmt.Sprintf("error_add_fee_%d.png", f.now().Unix())
	path := filepath.Join(f.logDir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		f.log.Warn("write failure screenshot", zap.Error(err))
		return
	}

	f.log.Info("failure screenshot saved", zap.String("path", path))
}
