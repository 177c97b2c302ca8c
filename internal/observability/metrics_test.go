package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/spec-kit/complaint-tickets/internal/domain"
	"github.com/spec-kit/complaint-tickets/internal/events"
)

func TestMetricsFollowEvents(t *testing.T) {
	m := NewMetrics()
	d := events.NewInMemoryDispatcher(nil)
	m.Subscribe(d)
	ctx := context.Background()

	_ = d.Publish(ctx, events.Event{Type: events.EventTicketCreated, Payload: events.TicketCreatedPayload{Kind: domain.TicketKindAggregate}})
	_ = d.Publish(ctx, events.Event{Type: events.EventTicketCreated, Payload: events.TicketCreatedPayload{Kind: domain.TicketKindAggregate}})
	_ = d.Publish(ctx, events.Event{Type: events.EventLedgerAppendFailed})
	_ = d.Publish(ctx, events.Event{Type: events.EventNotificationResult, Payload: events.NotificationResultPayload{
		Outcome: domain.NotificationOutcome{Channel: "email", Success: false},
	}})

	if got := testutil.ToFloat64(m.tickets.WithLabelValues("aggregate")); got != 2 {
		t.Fatalf("aggregate tickets = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.appendFailures); got != 1 {
		t.Fatalf("append failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("email", "failure")); got != 1 {
		t.Fatalf("email failures = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, 0)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
	m.Subscribe(events.NewInMemoryDispatcher(nil))
}
