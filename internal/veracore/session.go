package veracore

import (
	"context"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/browser"
	"go.uber.org/zap"
)

// Timeouts bound every wait against the Veracore UI.
type Timeouts struct {
	// Landmark covers page and session level waits: login fields, the
	// post-login URL signal, the system partition anchor.
	Landmark time.Duration
	// Dialog covers in-dialog element waits.
	Dialog time.Duration
	// Confirm covers the fee window disappearance after submission.
	Confirm time.Duration
}

// DefaultTimeouts matches the waits the workflow was tuned against.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Landmark: 30 * time.Second,
		Dialog:   5 * time.Second,
		Confirm:  10 * time.Second,
	}
}

// Credentials identify the Veracore account and system partition to operate in.
type Credentials struct {
	URL      string
	Username string
	Password string
	SystemID string
}

// SessionController establishes an authenticated Veracore session and
// selects the fixed system partition. A landmark that never appears within
// its timeout is an AuthError; nothing downstream is attempted after one.
type SessionController struct {
	sess     browser.Session
	creds    Credentials
	timeouts Timeouts
	sleep    func(time.Duration)
	log      *zap.Logger
}

// NewSessionController creates new SessionController instance
func NewSessionController(sess browser.Session, creds Credentials, log *zap.Logger) *SessionController {
	return &SessionController{
		sess:     sess,
		creds:    creds,
		timeouts: DefaultTimeouts(),
		sleep:    time.Sleep,
		log:      log,
	}
}

// Connect navigates to the login page, authenticates, selects the system
// partition and waits until the operating context is interactive. As a
// precondition for the first fee submission it also pre-opens the fee window.
func (sc *SessionController) Connect(ctx context.Context) error {
	if err := sc.sess.Navigate(ctx, sc.creds.URL); err != nil {
		return &AuthError{Step: "navigate", Err: err}
	}

	if err := sc.fillCredentials(ctx); err != nil {
		return &AuthError{Step: "credentials", Err: err}
	}

	if _, err := applyStrategies(ctx, sc.log, "login click", []strategy{
		{name: "click", run: func(ctx context.Context) error {
			return sc.sess.Click(ctx, selLoginBtn, sc.timeouts.Landmark)
		}},
		{name: "script_click", run: func(ctx context.Context) error {
			return sc.sess.ClickScript(ctx, selLoginBtn)
		}},
	}); err != nil {
		return &AuthError{Step: "login", Err: err}
	}

	// a login click that never produces the auth URL marker is fatal
	if err := sc.sess.WaitURLContains(ctx, urlAuthMarker, sc.timeouts.Landmark); err != nil {
		return &AuthError{Step: "login", Err: err}
	}

	if err := sc.selectSystem(ctx); err != nil {
		return err
	}

	sc.log.Info("veracore session ready",
		zap.String("system", sc.creds.SystemID))

	// pre-open the fee window so the first submission starts from DialogOpen;
	// SubmitFee reopens on demand, so a failure here is not fatal
	if _, err := openFeeWindow(ctx, sc.sess, sc.log, sc.sleep, sc.timeouts); err != nil {
		sc.log.Warn("fee window pre-open failed", zap.Error(err))
	}

	return nil
}

func (sc *SessionController) fillCredentials(ctx context.Context) error {
	if err := sc.sess.WaitVisible(ctx, selUsername, sc.timeouts.Landmark); err != nil {
		return err
	}
	if err := sc.sess.Clear(ctx, selUsername); err != nil {
		return err
	}
	if err := sc.sess.SendKeys(ctx, selUsername, sc.creds.Username); err != nil {
		return err
	}

	if err := sc.sess.WaitVisible(ctx, selPassword, sc.timeouts.Landmark); err != nil {
		return err
	}
	if err := sc.sess.Clear(ctx, selPassword); err != nil {
		return err
	}
	return sc.sess.SendKeys(ctx, selPassword, sc.creds.Password)
}

func (sc *SessionController) selectSystem(ctx context.Context) error {
	anchor := selSystemAnchor(sc.creds.SystemID)

	if err := sc.sess.WaitVisible(ctx, anchor, sc.timeouts.Landmark); err != nil {
		return &AuthError{Step: "system_select", Err: err}
	}

	if _, err := applyStrategies(ctx, sc.log, "system select", []strategy{
		{name: "click", run: func(ctx context.Context) error {
			return sc.sess.Click(ctx, anchor, sc.timeouts.Landmark)
		}},
		{name: "script_click", run: func(ctx context.Context) error {
			return sc.sess.ClickScript(ctx, anchor)
		}},
	}); err != nil {
		return &AuthError{Step: "system_select", Err: err}
	}

	// the fee entry point is the landmark confirming the partition is interactive
	if err := sc.sess.WaitVisible(ctx, selAccFeeBtn, sc.timeouts.Landmark); err != nil {
		return &AuthError{Step: "system_ready", Err: err}
	}

	sc.sleep(2 * time.Second)

	// a loading mask may cover the UI after partition switch
	if err := sc.sess.WaitGone(ctx, selLoadingMask, sc.timeouts.Dialog); err != nil {
		sc.log.Debug("loading mask still present after partition switch", zap.Error(err))
	}

	return nil
}
