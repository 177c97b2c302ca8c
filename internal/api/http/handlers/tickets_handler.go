package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-tickets/internal/api/dto"
	"github.com/spec-kit/complaint-tickets/internal/domain"
	"github.com/spec-kit/complaint-tickets/internal/ledger"
	apperrors "github.com/spec-kit/complaint-tickets/pkg/util"
)

const defaultTicketLimit = 50

// TicketsHandler exposes the ledger read side.
type TicketsHandler struct {
	ledger ledger.Ledger
	logger *zap.Logger
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(l ledger.Ledger, logger *zap.Logger) *TicketsHandler {
	return &TicketsHandler{ledger: l, logger: logger}
}

// ListTickets GET /tickets?limit=N, newest first.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	limit := defaultTicketLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return apperrors.NewValidationError("limit must be a positive integer", nil)
		}
		limit = n
	}

	resp := dto.TicketListResponse{Data: []dto.TicketResponse{}}
	tickets, err := h.ledger.ReadAll(c.UserContext())
	if err != nil {
		if !errors.Is(err, domain.ErrLedgerRead) {
			return err
		}
		h.logger.Warn("ledger unreadable", zap.Error(err))
		resp.Warnings = append(resp.Warnings, err.Error())
	}
	for _, t := range ledger.Recent(tickets, limit) {
		resp.Data = append(resp.Data, dto.NewTicketResponse(t, ""))
	}
	return c.JSON(resp)
}
