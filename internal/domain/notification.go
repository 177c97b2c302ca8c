package domain

// NotificationRequest asks the dispatcher to alert a recipient about a ticket.
type NotificationRequest struct {
	ID        string
	Ticket    Ticket
	Recipient string
}

// NotificationOutcome is the dispatcher's report for one request.
type NotificationOutcome struct {
	RequestID string `json:"request_id"`
	TicketID  string `json:"ticket_id"`
	Recipient string `json:"recipient"`
	Channel   string `json:"channel"`
	Success   bool   `json:"success"`
	Detail    string `json:"detail"`
}
