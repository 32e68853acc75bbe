package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// Options control the launched Chrome instance.
type Options struct {
	Headless bool
}

// Chrome is the chromedp-backed Session.
type Chrome struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

var _ Session = (*Chrome)(nil)

// Launch starts a Chrome process and attaches a fresh browser context to it.
func Launch(ctx context.Context, opts Options) (*Chrome, error) {
	flags := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	flags = append(flags,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, flags...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	c := &Chrome{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
	}

	// start the browser process now so launch failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	return c, nil
}

func (c *Chrome) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	runCtx := c.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(c.ctx, timeout)
		defer cancel()
	}

	return chromedp.Run(runCtx, actions...)
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	return c.run(ctx, 0, chromedp.Navigate(url))
}

func (c *Chrome) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	err := c.run(ctx, timeout, chromedp.WaitVisible(sel, chromedp.BySearch))
	if errors.Is(err, context.DeadlineExceeded) {
		return &ElementTimeoutError{Sel: sel, Timeout: timeout, Err: err}
	}
	return err
}

func (c *Chrome) WaitGone(ctx context.Context, sel string, timeout time.Duration) error {
	err := c.run(ctx, timeout, chromedp.WaitNotPresent(sel, chromedp.BySearch))
	if errors.Is(err, context.DeadlineExceeded) {
		return &ElementTimeoutError{Sel: sel, Timeout: timeout, Err: err}
	}
	return err
}

func (c *Chrome) WaitURLContains(ctx context.Context, substr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		var loc string
		if err := c.run(ctx, timeout, chromedp.Location(&loc)); err != nil {
			return err
		}
		if strings.Contains(loc, substr) {
			return nil
		}
		if time.Now().After(deadline) {
			return &ElementTimeoutError{Sel: "url ~ " + substr, Timeout: timeout, Err: context.DeadlineExceeded}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func (c *Chrome) Click(ctx context.Context, sel string, timeout time.Duration) error {
	err := c.run(ctx, timeout, chromedp.Click(sel, chromedp.BySearch))
	if errors.Is(err, context.DeadlineExceeded) {
		return &ElementTimeoutError{Sel: sel, Timeout: timeout, Err: err}
	}
	return err
}

func (c *Chrome) ClickScript(ctx context.Context, sel string) error {
	script := fmt.Sprintf(
		`(function(){var n=document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue; if(!n){throw new Error("element not found")}; n.click(); return true;})()`,
		strconv.Quote(sel))
	var ok bool
	return c.run(ctx, 5*time.Second, chromedp.Evaluate(script, &ok))
}

func (c *Chrome) ClickPointer(ctx context.Context, sel string) error {
	var nodes []*cdp.Node
	if err := c.run(ctx, 5*time.Second, chromedp.Nodes(sel, &nodes, chromedp.BySearch, chromedp.AtLeast(1))); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("no node matches %q", sel)
	}
	return c.run(ctx, 5*time.Second, chromedp.MouseClickNode(nodes[0]))
}

func (c *Chrome) Clear(ctx context.Context, sel string) error {
	return c.run(ctx, 5*time.Second, chromedp.SetValue(sel, "", chromedp.BySearch))
}

func (c *Chrome) SendKeys(ctx context.Context, sel string, keys string) error {
	return c.run(ctx, 5*time.Second, chromedp.SendKeys(sel, keys, chromedp.BySearch))
}

func (c *Chrome) KeyActive(ctx context.Context, keys string) error {
	return c.run(ctx, 5*time.Second, chromedp.KeyEvent(keys))
}

func (c *Chrome) Value(ctx context.Context, sel string) (string, error) {
	var val string
	err := c.run(ctx, 5*time.Second, chromedp.Value(sel, &val, chromedp.BySearch))
	return val, err
}

func (c *Chrome) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	err := c.run(ctx, 10*time.Second, chromedp.FullScreenshot(&buf, 90))
	return buf, err
}

// Close tears down the browser context and the Chrome process.
func (c *Chrome) Close() error {
	err := chromedp.Cancel(c.ctx)
	for _, cancel := range c.cancels {
		cancel()
	}
	return err
}
