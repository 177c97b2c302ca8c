package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/domain"
	"github.com/spec-kit/complaint-tickets/internal/events"
	"github.com/spec-kit/complaint-tickets/internal/notify"
)

// NotificationService executes notification requests queued by a pipeline
// run. It never touches the ledger.
type NotificationService struct {
	notifier   notify.Notifier
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifier notify.Notifier, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if notifier == nil {
		notifier = notify.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Dispatch sends every request in order and reports one outcome per request.
func (n *NotificationService) Dispatch(ctx context.Context, runID string, requests []domain.NotificationRequest) []domain.NotificationOutcome {
	outcomes := make([]domain.NotificationOutcome, 0, len(requests))
	for _, req := range requests {
		ok, detail := n.send(ctx, req)
		outcome := domain.NotificationOutcome{
			RequestID: req.ID,
			TicketID:  req.Ticket.ID,
			Recipient: req.Recipient,
			Channel:   n.notifier.Channel(),
			Success:   ok,
			Detail:    detail,
		}
		if ok {
			n.logger.Info("notification sent",
				zap.String("ticket_id", req.Ticket.ID),
				zap.String("channel", outcome.Channel))
		} else {
			n.logger.Warn("notification failed",
				zap.String("ticket_id", req.Ticket.ID),
				zap.String("channel", outcome.Channel),
				zap.String("detail", detail))
		}
		publish(ctx, n.dispatcher, runID, events.EventNotificationResult, events.NotificationResultPayload{Outcome: outcome})
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (n *NotificationService) send(ctx context.Context, req domain.NotificationRequest) (ok bool, detail string) {
	defer func() {
		if r := recover(); r != nil {
			ok, detail = false, fmt.Sprintf("%v: panic: %v", domain.ErrNotification, r)
		}
	}()
	if err := ctx.Err(); err != nil {
		return false, fmt.Sprintf("%v: %v", domain.ErrNotification, err)
	}
	return n.notifier.Notify(ctx, req.Ticket, req.Recipient)
}
