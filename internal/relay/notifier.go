package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SenderHeader identifies this relay on forwarded notifications.
const SenderHeader = "X-Relayed-By"

// ErrSelfTarget is returned when the destination resolves back to this
// service's own notification endpoint. Forwarding there would loop the
// webhook through the handler forever, so the call is skipped entirely.
var ErrSelfTarget = errors.New("relay target is this service's own webhook endpoint")

// Notifier forwards verified payment notifications to client webhook
// URLs. Delivery is best-effort, at most one attempt, bounded by the
// injected client's timeout.
type Notifier struct {
	httpc  *http.Client
	sender string
	self   *url.URL
}

// NewNotifier builds a Notifier. selfWebhookURL may be empty, in which
// case the loop guard only rejects literal empty targets.
func NewNotifier(httpc *http.Client, sender, selfWebhookURL string) *Notifier {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	var self *url.URL
	if selfWebhookURL != "" {
		if u, err := url.Parse(selfWebhookURL); err == nil {
			self = u
		}
	}
	return &Notifier{httpc: httpc, sender: sender, self: self}
}

// Forward POSTs body verbatim to target. Callers treat any returned error
// as a delivery failure to log and swallow; local state is already
// committed by the time a relay is attempted.
func (n *Notifier) Forward(ctx context.Context, target string, body []byte) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse relay target: %w", err)
	}
	if n.isSelf(u) {
		return ErrSelfTarget
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SenderHeader, n.sender)

	resp, err := n.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("relay post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay target returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *Notifier) isSelf(target *url.URL) bool {
	if n.self == nil {
		return false
	}
	return strings.EqualFold(target.Host, n.self.Host) &&
		strings.TrimSuffix(target.Path, "/") == strings.TrimSuffix(n.self.Path, "/")
}
