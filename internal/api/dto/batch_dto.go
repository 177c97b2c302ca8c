package dto

import "github.com/spec-kit/complaint-tickets/internal/domain"

// BatchOptions overrides the configured run defaults. Nil fields keep the default.
type BatchOptions struct {
	AggregateThreshold *int    `json:"aggregate_threshold"`
	NotifyPerTicket    *bool   `json:"notify_per_ticket"`
	Recipient          *string `json:"recipient"`
	Policy             *string `json:"policy"`
}

// SubmitBatchRequest is a tabular batch posted as JSON.
type SubmitBatchRequest struct {
	Columns []string     `json:"columns"`
	Rows    [][]string   `json:"rows"`
	Options BatchOptions `json:"options"`
}

// BatchResponse reports a finished run.
type BatchResponse struct {
	RunID             string                       `json:"run_id"`
	Policy            domain.CountingPolicy        `json:"policy"`
	Threshold         int                          `json:"threshold"`
	TicketsCreated    int                          `json:"tickets_created"`
	NotificationsSent int                          `json:"notifications_sent"`
	FailedAppends     int                          `json:"failed_appends"`
	Tickets           []TicketResponse             `json:"tickets"`
	Aggregates        []domain.SupplierAggregate   `json:"aggregates"`
	Rows              []domain.RowOutcome          `json:"rows"`
	Notifications     []domain.NotificationOutcome `json:"notifications"`
	AppendErrors      []string                     `json:"append_errors,omitempty"`
	Warnings          []string                     `json:"warnings,omitempty"`
	Cancelled         bool                         `json:"cancelled,omitempty"`
}
