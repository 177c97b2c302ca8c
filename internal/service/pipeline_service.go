package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/classifier"
	"github.com/spec-kit/complaint-tickets/internal/config"
	"github.com/spec-kit/complaint-tickets/internal/domain"
	"github.com/spec-kit/complaint-tickets/internal/events"
	"github.com/spec-kit/complaint-tickets/internal/ledger"
	"github.com/spec-kit/complaint-tickets/internal/ticketid"
)

// PipelineService turns complaint batches into ledger tickets and alerts.
type PipelineService struct {
	classifier    classifier.Classifier
	ledger        ledger.Ledger
	notifications *NotificationService
	dispatcher    events.Dispatcher
	ids           *ticketid.Generator
	logger        *zap.Logger
	now           func() time.Time
}

// PipelineDependencies bundles collaborators for the pipeline service.
type PipelineDependencies struct {
	Classifier    classifier.Classifier
	Ledger        ledger.Ledger
	Notifications *NotificationService
	Dispatcher    events.Dispatcher
	IDs           *ticketid.Generator
	Logger        *zap.Logger
}

// RunOptions configures one run.
type RunOptions struct {
	AggregateThreshold int
	NotifyPerTicket    bool
	Recipient          string
	Policy             domain.CountingPolicy
}

// DefaultRunOptions returns the configured run defaults.
func DefaultRunOptions(cfg config.PipelineConfig) RunOptions {
	return RunOptions{
		AggregateThreshold: cfg.AggregateThreshold,
		NotifyPerTicket:    cfg.NotifyPerTicket,
		Recipient:          cfg.Recipient,
		Policy:             cfg.Policy,
	}
}

// Validate checks the options against the run preconditions. A missing
// recipient is not one: the notifier reports it per ticket and the tickets
// are still written.
func (o RunOptions) Validate() error {
	if o.AggregateThreshold < 1 {
		return fmt.Errorf("%w: aggregate threshold must be >= 1, got %d", domain.ErrPrecondition, o.AggregateThreshold)
	}
	if !o.Policy.Valid() {
		return fmt.Errorf("%w: unknown counting policy %q", domain.ErrPrecondition, o.Policy)
	}
	return nil
}

// NewPipelineService constructs the service. A classifier that is not
// already failure-safe is wrapped with classifier.Safe.
func NewPipelineService(deps PipelineDependencies) *PipelineService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := deps.Classifier
	if _, ok := c.(*classifier.SafeClassifier); !ok {
		c = classifier.Safe(c, logger)
	}
	ids := deps.IDs
	if ids == nil {
		ids = ticketid.New()
	}
	notifications := deps.Notifications
	if notifications == nil {
		notifications = NewNotificationService(nil, deps.Dispatcher, logger)
	}
	return &PipelineService{
		classifier:    c,
		ledger:        deps.Ledger,
		notifications: notifications,
		dispatcher:    deps.Dispatcher,
		ids:           ids,
		logger:        logger,
		now:           time.Now,
	}
}

// Run processes rows in input order. Only invalid options abort the run, and
// they do so before any side effect. Row and ticket failures are recorded in
// the result. When ctx is cancelled the remaining rows and suppliers are
// abandoned; the partial result is returned together with ctx.Err().
//
// Runs are not deduplicated: submitting the same batch twice creates new
// tickets both times.
func (s *PipelineService) Run(ctx context.Context, rows []domain.ComplaintRow, opts RunOptions) (*domain.RunResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		svc:  s,
		opts: opts,
		result: &domain.RunResult{
			RunID:         uuid.NewString(),
			Policy:        opts.Policy,
			Threshold:     opts.AggregateThreshold,
			StartedAt:     s.now(),
			Tickets:       []domain.CreatedTicket{},
			Aggregates:    []domain.SupplierAggregate{},
			Rows:          make([]domain.RowOutcome, len(rows)),
			Notifications: []domain.NotificationOutcome{},
		},
	}
	logger := s.logger.With(zap.String("run_id", r.result.RunID))
	logger.Info("pipeline run started",
		zap.Int("rows", len(rows)),
		zap.Int("threshold", opts.AggregateThreshold),
		zap.String("policy", string(opts.Policy)))

	classified := r.classify(ctx, rows)
	r.createComplaintTickets(ctx, classified)
	r.createAggregateTickets(ctx, classified)

	if len(r.requests) > 0 {
		r.result.Notifications = s.notifications.Dispatch(ctx, r.result.RunID, r.requests)
	}

	r.result.FinishedAt = s.now()
	publish(ctx, s.dispatcher, r.result.RunID, events.EventBatchProcessed, events.BatchProcessedPayload{
		Rows:          len(rows),
		Tickets:       len(r.result.Tickets),
		FailedAppends: r.result.FailedAppends,
		Notifications: len(r.result.Notifications),
		Duration:      r.result.FinishedAt.Sub(r.result.StartedAt),
	})
	logger.Info("pipeline run finished",
		zap.Int("tickets", len(r.result.Tickets)),
		zap.Int("failed_appends", r.result.FailedAppends),
		zap.Int("notifications_sent", r.result.NotificationsSent()),
		zap.Int("warnings", len(r.result.Warnings)))

	if err := ctx.Err(); err != nil {
		return r.result, err
	}
	return r.result, nil
}

// run carries the state of a single invocation.
type run struct {
	svc       *PipelineService
	opts      RunOptions
	result    *domain.RunResult
	requests  []domain.NotificationRequest
	cancelled bool
}

func (r *run) checkCancelled(ctx context.Context) bool {
	if r.cancelled {
		return true
	}
	if err := ctx.Err(); err != nil {
		r.cancelled = true
		r.warn(fmt.Sprintf("run cancelled: %v", err))
		return true
	}
	return false
}

func (r *run) warn(msg string) {
	r.result.Warnings = append(r.result.Warnings, msg)
}

// classify returns the classified prefix of rows; rows after a cancellation
// are marked skipped.
func (r *run) classify(ctx context.Context, rows []domain.ComplaintRow) []domain.ClassifiedRow {
	classified := make([]domain.ClassifiedRow, 0, len(rows))
	for i, row := range rows {
		outcome := &r.result.Rows[i]
		outcome.Index = i
		outcome.ComplaintID = row.ComplaintID
		outcome.Supplier = row.Supplier

		if r.checkCancelled(ctx) {
			outcome.Category = domain.CategoryUnknown
			outcome.Skipped = true
			outcome.Reason = "run cancelled"
			continue
		}

		category, warning := r.svc.classifier.Classify(ctx, row.Message)
		outcome.Category = category
		if warning != nil {
			outcome.Skipped = true
			outcome.Reason = warning.Error()
			r.warn(fmt.Sprintf("row %d (%s): %v", i, row.ComplaintID, warning))
		}
		publish(ctx, r.svc.dispatcher, r.result.RunID, events.EventComplaintClassified, events.ComplaintClassifiedPayload{
			ComplaintID: row.ComplaintID,
			Category:    category,
			Degraded:    warning != nil,
		})
		classified = append(classified, domain.ClassifiedRow{Row: row, Category: category})
	}
	return classified
}

func (r *run) createComplaintTickets(ctx context.Context, classified []domain.ClassifiedRow) {
	for i, c := range classified {
		if c.Category != domain.CategorySupplierIssue {
			continue
		}
		if r.checkCancelled(ctx) {
			return
		}
		outcome := &r.result.Rows[i]
		ticket, err := r.createTicket(ctx, c.Row, domain.IssueSupplierComplaint, domain.TicketKindComplaint)
		if err != nil {
			outcome.Skipped = true
			outcome.Reason = err.Error()
			continue
		}
		outcome.TicketID = ticket.ID
	}
}

func (r *run) createAggregateTickets(ctx context.Context, classified []domain.ClassifiedRow) {
	aggregates, representatives := Aggregate(classified, r.opts.Policy)
	r.result.Aggregates = aggregates

	for _, agg := range aggregates {
		if agg.Count < r.opts.AggregateThreshold {
			continue
		}
		if r.checkCancelled(ctx) {
			return
		}
		issue := r.opts.Policy.AggregateIssue(agg.Count)
		_, _ = r.createTicket(ctx, representatives[agg.Supplier], issue, domain.TicketKindAggregate)
	}
}

// createTicket appends a new ticket and queues its notification. Append
// failures are counted and reported, never propagated further.
func (r *run) createTicket(ctx context.Context, row domain.ComplaintRow, issue string, kind domain.TicketKind) (domain.Ticket, error) {
	id, at := r.svc.ids.Next()
	ticket := domain.Ticket{
		ID:          id,
		ComplaintID: row.ComplaintID,
		Supplier:    row.Supplier,
		Product:     row.Product,
		OrderID:     row.OrderID,
		Issue:       issue,
		CreatedAt:   at.Truncate(time.Second),
		Status:      domain.TicketStatusOpen,
	}

	if err := r.svc.ledger.Append(ctx, ticket); err != nil {
		r.result.FailedAppends++
		msg := fmt.Sprintf("ticket %s (%s): %v", ticket.ID, row.ComplaintID, err)
		r.result.AppendErrors = append(r.result.AppendErrors, msg)
		r.svc.logger.Error("ledger append failed",
			zap.String("run_id", r.result.RunID),
			zap.String("ticket_id", ticket.ID),
			zap.Error(err))
		publish(ctx, r.svc.dispatcher, r.result.RunID, events.EventLedgerAppendFailed, events.LedgerAppendFailedPayload{
			TicketID: ticket.ID,
			Error:    err.Error(),
		})
		return domain.Ticket{}, err
	}

	r.result.Tickets = append(r.result.Tickets, domain.CreatedTicket{Ticket: ticket, Kind: kind})
	publish(ctx, r.svc.dispatcher, r.result.RunID, events.EventTicketCreated, events.TicketCreatedPayload{
		Ticket: ticket,
		Kind:   kind,
	})
	if r.opts.NotifyPerTicket {
		r.requests = append(r.requests, domain.NotificationRequest{
			ID:        uuid.NewString(),
			Ticket:    ticket,
			Recipient: r.opts.Recipient,
		})
	}
	return ticket, nil
}

// Aggregate counts rows per supplier under policy, in first-seen supplier
// order. It also returns, per supplier, the first row that contributed to
// the count.
func Aggregate(classified []domain.ClassifiedRow, policy domain.CountingPolicy) ([]domain.SupplierAggregate, map[string]domain.ComplaintRow) {
	aggregates := []domain.SupplierAggregate{}
	position := map[string]int{}
	representatives := map[string]domain.ComplaintRow{}

	for _, c := range classified {
		if policy == domain.PolicySupplierIssues && c.Category != domain.CategorySupplierIssue {
			continue
		}
		i, seen := position[c.Row.Supplier]
		if !seen {
			i = len(aggregates)
			position[c.Row.Supplier] = i
			aggregates = append(aggregates, domain.SupplierAggregate{Supplier: c.Row.Supplier})
			representatives[c.Row.Supplier] = c.Row
		}
		aggregates[i].Count++
	}
	return aggregates, representatives
}

func publish(ctx context.Context, dispatcher events.Dispatcher, runID string, eventType events.EventType, payload interface{}) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RunID:     runID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
