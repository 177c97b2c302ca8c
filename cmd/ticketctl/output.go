package main

import (
	"encoding/json"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/spec-kit/complaint-tickets/internal/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTickets(w io.Writer, tickets []domain.Ticket) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Ticket", "Complaint", "Supplier", "Product", "Order", "Issue", "Created", "Status"})
	for _, t := range tickets {
		tw.AppendRow(table.Row{t.ID, t.ComplaintID, t.Supplier, t.Product, t.OrderID, t.Issue, t.CreatedAtString(), t.Status})
	}
	tw.Render()
}

func renderRun(w io.Writer, r *domain.RunResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle("Run " + r.RunID)
	tw.AppendHeader(table.Row{"Ticket", "Kind", "Supplier", "Complaint", "Issue"})
	for _, t := range r.Tickets {
		tw.AppendRow(table.Row{t.ID, t.Kind, t.Supplier, t.ComplaintID, t.Issue})
	}
	tw.AppendFooter(table.Row{"tickets", len(r.Tickets), "notified", r.NotificationsSent(), ""})
	tw.Render()

	if len(r.Aggregates) > 0 {
		at := table.NewWriter()
		at.SetOutputMirror(w)
		at.AppendHeader(table.Row{"Supplier", "Count", "Alert"})
		for _, a := range r.Aggregates {
			alert := ""
			if a.Count >= r.Threshold {
				alert = "yes"
			}
			at.AppendRow(table.Row{a.Supplier, a.Count, alert})
		}
		at.Render()
	}
}
