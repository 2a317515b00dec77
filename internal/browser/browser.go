// Package browser fetches DOM snapshots of the calendar page.
//
// Two implementations are provided: Chrome renders the page in headless Chrome
// through chromedp, HTTP downloads the served HTML with resty. Both return the
// page markup as a string for the scraper to parse.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	UserAgent = "hijri-month/1.0 (github.com/pfrederiksen/hijri-month)"

	KindChrome = "chrome"
	KindHTTP   = "http"
)

// ErrEmptySnapshot is returned when the page loaded but produced no markup
var ErrEmptySnapshot = errors.New("empty page snapshot")

// Request describes one snapshot.
// A ReadySelector that never appears within ReadyTimeout does not fail the snapshot.
type Request struct {
	URL           string
	ReadySelector string
	ReadyTimeout  time.Duration
	Settle        time.Duration
}

// Browser returns the DOM of a page
type Browser interface {
	Snapshot(ctx context.Context, req Request) (string, error)
}

// New returns the Browser implementation named by kind
func New(kind string) (Browser, error) {
	switch kind {
	case KindChrome, "":
		return NewChrome(), nil
	case KindHTTP:
		return NewHTTP(), nil
	default:
		return nil, fmt.Errorf("unknown fetcher %q (want %s or %s)", kind, KindChrome, KindHTTP)
	}
}
