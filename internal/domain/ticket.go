package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	// TicketStatusOpen is the only status assigned at creation. Later
	// transitions belong to whoever works the ledger.
	TicketStatusOpen TicketStatus = "Open"
)

// TicketKind distinguishes per-complaint tickets from supplier aggregates.
type TicketKind string

const (
	TicketKindComplaint TicketKind = "complaint"
	TicketKindAggregate TicketKind = "aggregate"
)

// CreatedAtLayout is the ledger representation of Ticket.CreatedAt.
const CreatedAtLayout = "2006-01-02 15:04:05"

// Issue texts written to the ledger.
const (
	IssueSupplierComplaint = "Supplier Issue detected from complaint text"
)

// Ticket is an append-only work item raised for a supplier-attributable complaint
// or for a supplier crossing the aggregate threshold in one upload.
type Ticket struct {
	ID          string       `json:"ticket_id"`
	ComplaintID string       `json:"complaint_id"`
	Supplier    string       `json:"supplier"`
	Product     string       `json:"product"`
	OrderID     string       `json:"order_id"`
	Issue       string       `json:"issue"`
	CreatedAt   time.Time    `json:"created_at"`
	Status      TicketStatus `json:"status"`
	Notes       string       `json:"notes"`
}

// CreatedAtString renders CreatedAt in local time at second precision.
func (t Ticket) CreatedAtString() string {
	return t.CreatedAt.Local().Format(CreatedAtLayout)
}
