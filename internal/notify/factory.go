package notify

import "github.com/spec-kit/complaint-tickets/internal/config"

// New builds the notifier chain enabled by cfg: email when USE_EMAIL_ALERTS
// is set, Slack when a webhook URL is present.
func New(cfg config.NotificationConfig) Notifier {
	var chain Multi
	if cfg.EmailEnabled {
		chain = append(chain, NewEmail(cfg))
	}
	if cfg.SlackWebhookURL != "" {
		chain = append(chain, NewSlack(cfg.SlackWebhookURL, cfg.Timeout()))
	}
	switch len(chain) {
	case 0:
		return Disabled{}
	case 1:
		return chain[0]
	default:
		return chain
	}
}
