package browser

import "github.com/chromedp/chromedp/kb"

// Key sequences understood by Session implementations.
const (
	KeyTab   = kb.Tab
	KeyEnter = kb.Enter
	KeyDown  = kb.ArrowDown
)
