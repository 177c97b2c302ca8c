package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-tickets/internal/api/dto"
	"github.com/spec-kit/complaint-tickets/internal/domain"
	"github.com/spec-kit/complaint-tickets/internal/intake"
	"github.com/spec-kit/complaint-tickets/internal/service"
	apperrors "github.com/spec-kit/complaint-tickets/pkg/util"
)

// BatchesHandler accepts complaint batches and runs the pipeline on them.
type BatchesHandler struct {
	pipeline *service.PipelineService
	defaults service.RunOptions
}

// NewBatchesHandler constructs handler.
func NewBatchesHandler(pipeline *service.PipelineService, defaults service.RunOptions) *BatchesHandler {
	return &BatchesHandler{pipeline: pipeline, defaults: defaults}
}

// Submit POST /batches.
func (h *BatchesHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.Columns) == 0 {
		return apperrors.NewValidationError("columns required", nil)
	}
	rows, err := intake.FromRecords(req.Columns, req.Rows)
	if err != nil {
		return intakeError(err)
	}
	return h.run(c, rows, req.Options)
}

// SubmitCSV POST /batches/csv with a multipart "file" field.
func (h *BatchesHandler) SubmitCSV(c *fiber.Ctx) error {
	opts, err := optionsFromQuery(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("multipart field \"file\" required", nil)
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	rows, err := intake.FromCSV(file)
	if err != nil {
		return intakeError(err)
	}
	return h.run(c, rows, opts)
}

func (h *BatchesHandler) run(c *fiber.Ctx, rows []domain.ComplaintRow, overrides dto.BatchOptions) error {
	opts := applyOptions(h.defaults, overrides)
	result, err := h.pipeline.Run(c.UserContext(), rows, opts)
	if result == nil {
		return err
	}
	resp := batchResponse(result)
	resp.Cancelled = err != nil
	return c.JSON(fiber.Map{"data": resp})
}

func applyOptions(opts service.RunOptions, o dto.BatchOptions) service.RunOptions {
	if o.AggregateThreshold != nil {
		opts.AggregateThreshold = *o.AggregateThreshold
	}
	if o.NotifyPerTicket != nil {
		opts.NotifyPerTicket = *o.NotifyPerTicket
	}
	if o.Recipient != nil {
		opts.Recipient = *o.Recipient
	}
	if o.Policy != nil {
		opts.Policy = domain.CountingPolicy(*o.Policy)
	}
	return opts
}

func optionsFromQuery(c *fiber.Ctx) (dto.BatchOptions, error) {
	var opts dto.BatchOptions
	if v := c.Query("aggregate_threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, apperrors.NewValidationError("aggregate_threshold must be an integer", nil)
		}
		opts.AggregateThreshold = &n
	}
	if v := c.Query("notify_per_ticket"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, apperrors.NewValidationError("notify_per_ticket must be a boolean", nil)
		}
		opts.NotifyPerTicket = &b
	}
	if v, ok := queryValue(c, "recipient"); ok {
		opts.Recipient = &v
	}
	if v, ok := queryValue(c, "policy"); ok {
		opts.Policy = &v
	}
	return opts, nil
}

func queryValue(c *fiber.Ctx, key string) (string, bool) {
	if !c.Context().QueryArgs().Has(key) {
		return "", false
	}
	return strings.TrimSpace(c.Query(key)), true
}

func intakeError(err error) error {
	var missing *intake.MissingColumnsError
	if errors.As(err, &missing) {
		return apperrors.NewPreconditionError(err, map[string]any{"missing_columns": missing.Missing})
	}
	if errors.Is(err, domain.ErrPrecondition) {
		return apperrors.NewPreconditionError(err, nil)
	}
	return apperrors.NewValidationError("malformed batch", map[string]any{"reason": err.Error()})
}

func batchResponse(r *domain.RunResult) dto.BatchResponse {
	tickets := make([]dto.TicketResponse, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		tickets = append(tickets, dto.NewTicketResponse(t.Ticket, t.Kind))
	}
	return dto.BatchResponse{
		RunID:             r.RunID,
		Policy:            r.Policy,
		Threshold:         r.Threshold,
		TicketsCreated:    len(r.Tickets),
		NotificationsSent: r.NotificationsSent(),
		FailedAppends:     r.FailedAppends,
		Tickets:           tickets,
		Aggregates:        r.Aggregates,
		Rows:              r.Rows,
		Notifications:     r.Notifications,
		AppendErrors:      r.AppendErrors,
		Warnings:          r.Warnings,
	}
}
