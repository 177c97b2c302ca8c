// Package ledger persists tickets in an append-only store.
package ledger

import (
	"context"
	"sort"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// Columns is the fixed column order of the ledger.
var Columns = []string{
	"Ticket_ID", "Complaint_ID", "Supplier", "Product", "Order_ID",
	"Issue", "Created_At", "Status", "Notes",
}

// Ledger is an append-only ticket store.
//
// ReadAll never fails hard: a missing or unreadable store yields an empty
// slice together with an error wrapping domain.ErrLedgerRead, which callers
// treat as a warning.
type Ledger interface {
	EnsureInitialized(ctx context.Context) error
	Append(ctx context.Context, ticket domain.Ticket) error
	ReadAll(ctx context.Context) ([]domain.Ticket, error)
}

// Recent returns up to limit tickets, newest first. limit <= 0 returns all.
func Recent(tickets []domain.Ticket, limit int) []domain.Ticket {
	out := make([]domain.Ticket, len(tickets))
	for i := range tickets {
		out[len(tickets)-1-i] = tickets[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
