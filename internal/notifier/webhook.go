package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookTimeout bounds a single delivery attempt
const WebhookTimeout = 15 * time.Second

// webhookPayload carries both a chat-compatible "text" field and the structured announcement
type webhookPayload struct {
	Text         string       `json:"text"`
	Announcement Announcement `json:"announcement"`
}

// WebhookNotifier posts announcements as JSON to an HTTP endpoint
type WebhookNotifier struct {
	url    string
	client *resty.Client
}

// NewWebhookNotifier creates a notifier posting to url
func NewWebhookNotifier(url string) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}

	client := resty.New().
		SetTimeout(WebhookTimeout).
		SetRetryCount(2).
		SetRetryWaitTime(time.Second).
		SetHeader("Content-Type", "application/json")

	return &WebhookNotifier{url: url, client: client}, nil
}

// Notify posts the announcement
func (n *WebhookNotifier) Notify(ctx context.Context, a Announcement) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(webhookPayload{Text: a.Text(), Announcement: a}).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to post announcement for %s: %w", a.Month, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook rejected announcement for %s: status %d", a.Month, resp.StatusCode())
	}
	return nil
}
