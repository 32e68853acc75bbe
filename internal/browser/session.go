// Package browser is a thin capability wrapper around a controllable browser
// session. It exposes only the primitives the Veracore drivers need; it is
// not a general scraping API.
package browser

import (
	"context"
	"fmt"
	"time"
)

// Session is one exclusively-owned browser session. Elements are addressed
// by XPath. All waits are bounded; a wait that exceeds its timeout returns
// ElementTimeoutError.
type Session interface {
	// Navigate loads the given URL.
	Navigate(ctx context.Context, url string) error
	// WaitVisible blocks until the element is present and displayed.
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	// WaitGone blocks until no element matches the selector.
	WaitGone(ctx context.Context, sel string, timeout time.Duration) error
	// WaitURLContains blocks until the current URL contains substr.
	WaitURLContains(ctx context.Context, substr string, timeout time.Duration) error
	// Click performs a direct click on the element.
	Click(ctx context.Context, sel string, timeout time.Duration) error
	// ClickScript clicks the element through injected script.
	ClickScript(ctx context.Context, sel string) error
	// ClickPointer moves the pointer onto the element and clicks.
	ClickPointer(ctx context.Context, sel string) error
	// Clear empties the element's value.
	Clear(ctx context.Context, sel string) error
	// SendKeys types keys into the element.
	SendKeys(ctx context.Context, sel string, keys string) error
	// KeyActive sends keys to the currently focused element.
	KeyActive(ctx context.Context, keys string) error
	// Value reads the element's current value attribute.
	Value(ctx context.Context, sel string) (string, error)
	// Screenshot captures a full-page screenshot as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	// Close releases the session and its browser process.
	Close() error
}

// ElementTimeoutError is returned when a bounded wait for an element
// exceeds its timeout.
type ElementTimeoutError struct {
	Sel     string
	Timeout time.Duration
	Err     error
}

func (e *ElementTimeoutError) Error() string {
	return fmt.Sprintf("element %q not ready within %s: %v", e.Sel, e.Timeout, e.Err)
}

func (e *ElementTimeoutError) Unwrap() error { return e.Err }
