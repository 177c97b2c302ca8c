// Package notify delivers ticket alerts to human recipients.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

// Notifier sends a ticket alert. Implementations never return errors or
// panic; every failure is reported as (false, reason).
type Notifier interface {
	Notify(ctx context.Context, ticket domain.Ticket, recipient string) (bool, string)
	Channel() string
}

// Subject is the alert subject line for ticket.
func Subject(ticket domain.Ticket) string {
	return fmt.Sprintf("[Supplier Quality] New Supplier Ticket %s", ticket.ID)
}

// Body is the plain-text alert body for ticket.
func Body(ticket domain.Ticket) string {
	var b strings.Builder
	b.WriteString("New Supplier Ticket Created\n\n")
	fmt.Fprintf(&b, "Ticket ID: %s\n", ticket.ID)
	fmt.Fprintf(&b, "Supplier: %s\n", ticket.Supplier)
	fmt.Fprintf(&b, "Complaint ID: %s\n", ticket.ComplaintID)
	fmt.Fprintf(&b, "Product: %s\n", ticket.Product)
	fmt.Fprintf(&b, "Issue: %s\n", ticket.Issue)
	fmt.Fprintf(&b, "Created At: %s\n", ticket.CreatedAtString())
	return b.String()
}

// Disabled reports every notification as skipped.
type Disabled struct{}

// Notify implements Notifier.
func (Disabled) Notify(context.Context, domain.Ticket, string) (bool, string) {
	return false, "notifications disabled"
}

// Channel implements Notifier.
func (Disabled) Channel() string { return "none" }

// Multi fans a notification out to several notifiers. It succeeds when at
// least one of them does.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, ticket domain.Ticket, recipient string) (bool, string) {
	if len(m) == 0 {
		return Disabled{}.Notify(ctx, ticket, recipient)
	}
	ok := false
	details := make([]string, 0, len(m))
	for _, n := range m {
		sent, detail := n.Notify(ctx, ticket, recipient)
		ok = ok || sent
		details = append(details, n.Channel()+": "+detail)
	}
	return ok, strings.Join(details, "; ")
}

// Channel implements Notifier.
func (m Multi) Channel() string {
	names := make([]string, 0, len(m))
	for _, n := range m {
		names = append(names, n.Channel())
	}
	return strings.Join(names, "+")
}
