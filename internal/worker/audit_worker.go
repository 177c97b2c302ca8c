package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/events"
	"github.com/spec-kit/complaint-tickets/internal/observability"
)

// StartAuditWorker registers the event handlers that run alongside the
// pipeline: metrics collection and an audit trail of ledger failures and
// finished batches.
func StartAuditWorker(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Subscribe(dispatcher)

	audit := logger.Named("audit")
	dispatcher.Subscribe(events.EventLedgerAppendFailed, func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.LedgerAppendFailedPayload); ok {
			audit.Warn("ticket lost",
				zap.String("run_id", e.RunID),
				zap.String("ticket_id", p.TicketID),
				zap.String("error", p.Error))
		}
		return nil
	})
	dispatcher.Subscribe(events.EventBatchProcessed, func(_ context.Context, e events.Event) error {
		if p, ok := e.Payload.(events.BatchProcessedPayload); ok {
			audit.Info("batch processed",
				zap.String("run_id", e.RunID),
				zap.Int("rows", p.Rows),
				zap.Int("tickets", p.Tickets),
				zap.Int("failed_appends", p.FailedAppends),
				zap.Int("notifications", p.Notifications),
				zap.Duration("duration", p.Duration))
		}
		return nil
	})
}
