package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/3PLWinner/veracore-sync/internal/browser"
	"github.com/3PLWinner/veracore-sync/internal/models"
	"github.com/3PLWinner/veracore-sync/internal/veracore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// deadSession fails every wait, so authentication can never complete.
type deadSession struct {
	closed bool
}

func (s *deadSession) Navigate(ctx context.Context, url string) error { return nil }

func (s *deadSession) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return &browser.ElementTimeoutError{Sel: sel, Timeout: timeout, Err: errors.New("not found")}
}

func (s *deadSession) WaitGone(ctx context.Context, sel string, timeout time.Duration) error {
	return nil
}

func (s *deadSession) WaitURLContains(ctx context.Context, substr string, timeout time.Duration) error {
	return errors.New("url never changed")
}

func (s *deadSession) Click(ctx context.Context, sel string, timeout time.Duration) error {
	return errors.New("not clickable")
}

func (s *deadSession) ClickScript(ctx context.Context, sel string) error  { return errors.New("no") }
func (s *deadSession) ClickPointer(ctx context.Context, sel string) error { return errors.New("no") }
func (s *deadSession) Clear(ctx context.Context, sel string) error        { return nil }
func (s *deadSession) SendKeys(ctx context.Context, sel, keys string) error {
	return nil
}
func (s *deadSession) KeyActive(ctx context.Context, keys string) error { return nil }
func (s *deadSession) Value(ctx context.Context, sel string) (string, error) {
	return "", nil
}
func (s *deadSession) Screenshot(ctx context.Context) ([]byte, error) { return nil, nil }
func (s *deadSession) Close() error {
	s.closed = true
	return nil
}

func TestRunOnce_SkipsBrowserWhenNothingPending(t *testing.T) {
	store := &fakeStore{}
	factoryCalled := false
	r := NewRunner(store, func(ctx context.Context) (browser.Session, error) {
		factoryCalled = true
		return &deadSession{}, nil
	}, veracore.Credentials{}, t.TempDir(), 0, zap.NewNop())

	err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, factoryCalled)
}

func TestRunOnce_AuthFailureClosesSession(t *testing.T) {
	store := &fakeStore{pending: []models.WorkOrder{testOrder(1)}}
	sess := &deadSession{}
	r := NewRunner(store, func(ctx context.Context) (browser.Session, error) {
		return sess, nil
	}, veracore.Credentials{SystemID: "3PLW"}, t.TempDir(), 0, zap.NewNop())

	err := r.RunOnce(context.Background())

	var authErr *veracore.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, sess.closed)
	// nothing was marked either way
	assert.Empty(t, store.marks)
}

func TestRunOnce_SessionFactoryError(t *testing.T) {
	store := &fakeStore{pending: []models.WorkOrder{testOrder(1)}}
	launchErr := errors.New("chrome not found")
	r := NewRunner(store, func(ctx context.Context) (browser.Session, error) {
		return nil, launchErr
	}, veracore.Credentials{}, t.TempDir(), 0, zap.NewNop())

	err := r.RunOnce(context.Background())
	assert.ErrorIs(t, err, launchErr)
}

func TestRun_OneShotWhenIntervalUnset(t *testing.T) {
	store := &fakeStore{}
	r := NewRunner(store, func(ctx context.Context) (browser.Session, error) {
		return &deadSession{}, nil
	}, veracore.Credentials{}, t.TempDir(), 0, zap.NewNop())

	err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.listCalls)
}

func TestRun_LoopStopsOnCancel(t *testing.T) {
	store := &fakeStore{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(store, func(ctx context.Context) (browser.Session, error) {
		return &deadSession{}, nil
	}, veracore.Credentials{}, t.TempDir(), time.Hour, zap.NewNop())

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
