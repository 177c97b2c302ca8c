package dto

import "github.com/spec-kit/complaint-tickets/internal/domain"

// TicketResponse is a ledger ticket as rendered by the API.
type TicketResponse struct {
	ID          string              `json:"ticket_id"`
	Kind        domain.TicketKind   `json:"kind,omitempty"`
	ComplaintID string              `json:"complaint_id"`
	Supplier    string              `json:"supplier"`
	Product     string              `json:"product"`
	OrderID     string              `json:"order_id"`
	Issue       string              `json:"issue"`
	CreatedAt   string              `json:"created_at"`
	Status      domain.TicketStatus `json:"status"`
	Notes       string              `json:"notes"`
}

// TicketListResponse wraps a ledger listing.
type TicketListResponse struct {
	Data     []TicketResponse `json:"data"`
	Warnings []string         `json:"warnings,omitempty"`
}

// NewTicketResponse converts a domain ticket.
func NewTicketResponse(t domain.Ticket, kind domain.TicketKind) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Kind:        kind,
		ComplaintID: t.ComplaintID,
		Supplier:    t.Supplier,
		Product:     t.Product,
		OrderID:     t.OrderID,
		Issue:       t.Issue,
		CreatedAt:   t.CreatedAtString(),
		Status:      t.Status,
		Notes:       t.Notes,
	}
}
