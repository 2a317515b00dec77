package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/pfrederiksen/hijri-month/internal/logger"
)

// DefaultBlockedURLs are resource patterns never loaded while rendering
var DefaultBlockedURLs = []string{
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp",
	"*.woff", "*.woff2", "*.ttf", "*.svg",
}

// Chrome renders pages in a fresh headless Chrome per snapshot
type Chrome struct {
	Headless    bool
	ExecPath    string
	UserAgent   string
	BlockedURLs []string
}

// NewChrome creates a headless Chrome browser using the Chrome found on PATH
func NewChrome() *Chrome {
	return &Chrome{
		Headless:    true,
		UserAgent:   UserAgent,
		BlockedURLs: DefaultBlockedURLs,
	}
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", c.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)
	if c.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.UserAgent))
	}
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}
	return opts
}

func (c *Chrome) navigateActions(url string) []chromedp.Action {
	var actions []chromedp.Action
	if len(c.BlockedURLs) > 0 {
		actions = append(actions, network.Enable(), network.SetBlockedURLS(c.BlockedURLs))
	}
	return append(actions, chromedp.Navigate(url))
}

// Snapshot navigates to req.URL, waits for req.ReadySelector if set, lets the
// page settle and returns the document's outer HTML.
func (c *Chrome) Snapshot(ctx context.Context, req Request) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	if err := chromedp.Run(tabCtx, c.navigateActions(req.URL)...); err != nil {
		return "", fmt.Errorf("navigating to %s: %w", req.URL, err)
	}

	if req.ReadySelector != "" {
		waitCtx, cancelWait := context.WithTimeout(tabCtx, req.ReadyTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(req.ReadySelector, chromedp.ByQuery))
		cancelWait()
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("waiting for %s: %w", req.ReadySelector, ctx.Err())
			}
			logger.Warn("Ready selector not found, continuing", logger.Fields{
				"selector": req.ReadySelector,
				"timeout":  req.ReadyTimeout.String(),
			})
		}
	}

	var html string
	actions := []chromedp.Action{}
	if req.Settle > 0 {
		actions = append(actions, chromedp.Sleep(req.Settle))
	}
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", fmt.Errorf("reading DOM of %s: %w", req.URL, err)
	}
	if strings.TrimSpace(html) == "" {
		return "", fmt.Errorf("%s: %w", req.URL, ErrEmptySnapshot)
	}
	return html, nil
}
