package notify

import (
	"context"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// SlackNotifier posts alerts to a Slack incoming webhook. The recipient is
// included in the message text; routing is decided by the webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewSlack builds a SlackNotifier for webhookURL.
func NewSlack(webhookURL string, timeout time.Duration) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// Channel implements Notifier.
func (s *SlackNotifier) Channel() string { return "slack" }

// Notify implements Notifier.
func (s *SlackNotifier) Notify(ctx context.Context, ticket domain.Ticket, recipient string) (bool, string) {
	if s.webhookURL == "" {
		return false, "slack webhook not configured"
	}
	text := Subject(ticket) + "\n" + Body(ticket)
	if recipient != "" {
		text += "Recipient: " + recipient + "\n"
	}
	msg := &slack.WebhookMessage{Text: text}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.client, msg); err != nil {
		return false, err.Error()
	}
	return true, "slack message posted"
}
