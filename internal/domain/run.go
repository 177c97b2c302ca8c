package domain

import (
	"fmt"
	"time"
)

// CountingPolicy selects which rows contribute to a supplier's aggregate count.
type CountingPolicy string

const (
	// PolicySupplierIssues counts only rows classified as supplier issues.
	PolicySupplierIssues CountingPolicy = "supplier_issues"
	// PolicyAllRows counts every row of the supplier regardless of category.
	PolicyAllRows CountingPolicy = "all_rows"
)

// Valid reports whether p is a known policy.
func (p CountingPolicy) Valid() bool {
	return p == PolicySupplierIssues || p == PolicyAllRows
}

// AggregateIssue renders the issue text of an aggregate ticket.
func (p CountingPolicy) AggregateIssue(count int) string {
	if p == PolicyAllRows {
		return fmt.Sprintf("Aggregate alert: %d complaints in upload", count)
	}
	return fmt.Sprintf("Aggregate alert: %d supplier issues in upload", count)
}

// SupplierAggregate is the per-supplier count for one batch.
type SupplierAggregate struct {
	Supplier string `json:"supplier"`
	Count    int    `json:"count"`
}

// RowOutcome reports what happened to one input row.
type RowOutcome struct {
	Index       int      `json:"index"`
	ComplaintID string   `json:"complaint_id"`
	Supplier    string   `json:"supplier"`
	Category    Category `json:"category"`
	TicketID    string   `json:"ticket_id,omitempty"`
	Skipped     bool     `json:"skipped"`
	Reason      string   `json:"reason,omitempty"`
}

// CreatedTicket is a ticket persisted during a run.
type CreatedTicket struct {
	Ticket
	Kind TicketKind `json:"kind"`
}

// RunResult summarises a pipeline run.
type RunResult struct {
	RunID         string                `json:"run_id"`
	Policy        CountingPolicy        `json:"policy"`
	Threshold     int                   `json:"threshold"`
	StartedAt     time.Time             `json:"started_at"`
	FinishedAt    time.Time             `json:"finished_at"`
	Tickets       []CreatedTicket       `json:"tickets"`
	Aggregates    []SupplierAggregate   `json:"aggregates"`
	Rows          []RowOutcome          `json:"rows"`
	Notifications []NotificationOutcome `json:"notifications"`
	FailedAppends int                   `json:"failed_appends"`
	AppendErrors  []string              `json:"append_errors,omitempty"`
	Warnings      []string              `json:"warnings,omitempty"`
}

// NotificationsSent counts successful notification outcomes.
func (r *RunResult) NotificationsSent() int {
	n := 0
	for _, o := range r.Notifications {
		if o.Success {
			n++
		}
	}
	return n
}
