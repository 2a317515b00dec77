package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Timeout bounds a single HTTP snapshot when the context has no deadline
const Timeout = 30 * time.Second

// HTTP fetches the HTML as served, without running scripts
type HTTP struct {
	client *resty.Client
}

// NewHTTP creates an HTTP browser
func NewHTTP() *HTTP {
	client := resty.New()
	client.SetHeader("User-Agent", UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetTimeout(Timeout)
	client.SetRetryCount(0)
	return &HTTP{client: client}
}

// Snapshot downloads req.URL. ReadySelector and Settle have no meaning for a
// static download and are ignored.
func (h *HTTP) Snapshot(ctx context.Context, req Request) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(req.URL)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", req.URL, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from %s: %d", req.URL, resp.StatusCode())
	}

	body := resp.String()
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("%s: %w", req.URL, ErrEmptySnapshot)
	}
	return body, nil
}
