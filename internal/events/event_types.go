package events

import (
	"time"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintClassified EventType = "complaint_classified"
	EventTicketCreated       EventType = "ticket_created"
	EventLedgerAppendFailed  EventType = "ledger_append_failed"
	EventNotificationResult  EventType = "notification_result"
	EventBatchProcessed      EventType = "batch_processed"
)

// Event represents a pipeline event.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RunID     string      `json:"run_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintClassifiedPayload payload.
type ComplaintClassifiedPayload struct {
	ComplaintID string          `json:"complaint_id"`
	Category    domain.Category `json:"category"`
	Degraded    bool            `json:"degraded"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Ticket domain.Ticket     `json:"ticket"`
	Kind   domain.TicketKind `json:"kind"`
}

// LedgerAppendFailedPayload payload.
type LedgerAppendFailedPayload struct {
	TicketID string `json:"ticket_id"`
	Error    string `json:"error"`
}

// NotificationResultPayload payload.
type NotificationResultPayload struct {
	Outcome domain.NotificationOutcome `json:"outcome"`
}

// BatchProcessedPayload payload.
type BatchProcessedPayload struct {
	Rows          int           `json:"rows"`
	Tickets       int           `json:"tickets"`
	FailedAppends int           `json:"failed_appends"`
	Notifications int           `json:"notifications"`
	Duration      time.Duration `json:"duration"`
}
