package notifier

import (
	"context"
	"fmt"
	"io"
)

// DryRunNotifier prints what would be sent without delivering it
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to w
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	return &DryRunNotifier{w: w}
}

// Notify prints the announcement
func (n *DryRunNotifier) Notify(ctx context.Context, a Announcement) error {
	_, err := fmt.Fprintf(n.w, "--- Announcement ---\n%s\n\n", a.Text())
	return err
}
