package worker

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/complaint-tickets/internal/events"
	"github.com/spec-kit/complaint-tickets/internal/observability"
)

func TestAuditWorkerLogsLedgerFailures(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	metrics := observability.NewMetrics()
	StartAuditWorker(dispatcher, metrics, zap.New(core))

	ctx := context.Background()
	_ = dispatcher.Publish(ctx, events.Event{
		Type:    events.EventLedgerAppendFailed,
		RunID:   "run-1",
		Payload: events.LedgerAppendFailedPayload{TicketID: "T1", Error: "disk full"},
	})
	_ = dispatcher.Publish(ctx, events.Event{
		Type:    events.EventBatchProcessed,
		RunID:   "run-1",
		Payload: events.BatchProcessedPayload{Rows: 2, FailedAppends: 1},
	})

	if got := logs.FilterMessage("ticket lost").Len(); got != 1 {
		t.Fatalf("ticket lost entries = %d, want 1", got)
	}
	if got := logs.FilterMessage("batch processed").Len(); got != 1 {
		t.Fatalf("batch processed entries = %d, want 1", got)
	}
	families, err := metrics.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	var failures float64
	for _, mf := range families {
		if mf.GetName() == "ledger_append_failures_total" {
			failures = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	if failures != 1 {
		t.Fatalf("ledger_append_failures_total = %v, want 1", failures)
	}
}

func TestAuditWorkerNilDispatcher(t *testing.T) {
	StartAuditWorker(nil, nil, nil)
}
