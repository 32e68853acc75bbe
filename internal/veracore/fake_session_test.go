package veracore

import (
	"context"
	"fmt"
	"time"
)

// fakeSession is a scriptable browser.Session. Selectors present in the
// visible set satisfy WaitVisible; selectors in the clickable set satisfy
// Click. WaitGone succeeds unless the selector is in stuck.
type fakeSession struct {
	visible   map[string]bool
	clickable map[string]bool
	stuck     map[string]bool
	values    map[string]string

	typed  map[string][]string
	clicks []string
	active []string

	// onClick runs after a successful click on the keyed selector,
	// letting tests mutate visibility like the real UI would.
	onClick map[string]func()

	screenshotErr error
	closed        bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		visible:   map[string]bool{},
		clickable: map[string]bool{},
		stuck:     map[string]bool{},
		values:    map[string]string{},
		typed:     map[string][]string{},
		onClick:   map[string]func(){},
	}
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error { return nil }

func (s *fakeSession) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	if s.visible[sel] {
		return nil
	}
	return fmt.Errorf("not visible: %s", sel)
}

func (s *fakeSession) WaitGone(ctx context.Context, sel string, timeout time.Duration) error {
	if s.stuck[sel] {
		return fmt.Errorf("still present: %s", sel)
	}
	return nil
}

func (s *fakeSession) WaitURLContains(ctx context.Context, substr string, timeout time.Duration) error {
	if s.values["url"] == "" {
		return fmt.Errorf("url never contained %q", substr)
	}
	return nil
}

func (s *fakeSession) Click(ctx context.Context, sel string, timeout time.Duration) error {
	if !s.clickable[sel] {
		return fmt.Errorf("not clickable: %s", sel)
	}
	s.clicks = append(s.clicks, sel)
	if fn := s.onClick[sel]; fn != nil {
		fn()
	}
	return nil
}

func (s *fakeSession) ClickScript(ctx context.Context, sel string) error {
	if !s.clickable["script:"+sel] {
		return fmt.Errorf("script click failed: %s", sel)
	}
	s.clicks = append(s.clicks, "script:"+sel)
	if fn := s.onClick[sel]; fn != nil {
		fn()
	}
	return nil
}

func (s *fakeSession) ClickPointer(ctx context.Context, sel string) error {
	if !s.clickable["pointer:"+sel] {
		return fmt.Errorf("pointer click failed: %s", sel)
	}
	s.clicks = append(s.clicks, "pointer:"+sel)
	if fn := s.onClick[sel]; fn != nil {
		fn()
	}
	return nil
}

func (s *fakeSession) Clear(ctx context.Context, sel string) error {
	s.typed[sel] = nil
	return nil
}

func (s *fakeSession) SendKeys(ctx context.Context, sel string, keys string) error {
	s.typed[sel] = append(s.typed[sel], keys)
	return nil
}

func (s *fakeSession) KeyActive(ctx context.Context, keys string) error {
	s.active = append(s.active, keys)
	return nil
}

func (s *fakeSession) Value(ctx context.Context, sel string) (string, error) {
	return s.values[sel], nil
}

func (s *fakeSession) Screenshot(ctx context.Context) ([]byte, error) {
	if s.screenshotErr != nil {
		return nil, s.screenshotErr
	}
	return []byte("png"), nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}
